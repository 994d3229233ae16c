package parser

import (
	"fmt"

	"github.com/biocommander/engine/internal/util"
)

// ParseNewMatch parses [scenario?, turnTimeLimit?].
func (p *Parser) ParseNewMatch(data []string) (NewMatchCommand, error) {
	var cmd NewMatchCommand
	data = clean(data)

	cmd.Scenario = util.ArgOr(data, 0, p.defaultScenario)
	if limit := util.ArgOr(data, 1, ""); limit != "" {
		v, err := parseUintFromFloat(limit)
		if err != nil {
			return cmd, fmt.Errorf("error converting turnTimeLimit to uint: %w", err)
		}
		cmd.TurnTimeLimit = v
	}

	p.logger.Debug("Parsed new match", "scenario", cmd.Scenario, "turnTimeLimit", cmd.TurnTimeLimit)
	return cmd, nil
}

// ParseGameRef parses [gameID].
func (p *Parser) ParseGameRef(data []string) (GameRef, error) {
	var ref GameRef
	data = clean(data)
	if err := requireArgs(data, 1, "game ref"); err != nil {
		return ref, err
	}
	id, err := parseUint32(data[0], "gameID")
	if err != nil {
		return ref, err
	}
	ref.GameID = id
	return ref, nil
}
