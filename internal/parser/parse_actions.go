package parser

import (
	"fmt"
	"strconv"
)

// ParseJoin parses [gameID, faction, withStartingZone?]. The starting zone is
// claimed unless the third argument is false.
func (p *Parser) ParseJoin(data []string) (JoinCommand, error) {
	var cmd JoinCommand
	data = clean(data)
	if err := requireArgs(data, 2, "join"); err != nil {
		return cmd, err
	}

	var err error
	if cmd.GameID, err = parseUint32(data[0], "gameID"); err != nil {
		return cmd, err
	}
	if cmd.Args.Faction, err = parseUint8(data[1], "faction"); err != nil {
		return cmd, err
	}
	cmd.StartingZone = true
	if len(data) > 2 && data[2] != "" {
		cmd.StartingZone, err = strconv.ParseBool(data[2])
		if err != nil {
			return cmd, fmt.Errorf("error converting withStartingZone to bool: %w", err)
		}
	}
	return cmd, nil
}

// ParseExpand parses [gameID, expansion, sourceZoneID, targetZoneID, newZoneType?].
func (p *Parser) ParseExpand(data []string) (ExpandCommand, error) {
	var cmd ExpandCommand
	data = clean(data)
	if err := requireArgs(data, 4, "expand"); err != nil {
		return cmd, err
	}

	var err error
	if cmd.GameID, err = parseUint32(data[0], "gameID"); err != nil {
		return cmd, err
	}
	if cmd.Args.Expansion, err = parseUint8(data[1], "expansion"); err != nil {
		return cmd, err
	}
	if cmd.SourceZoneID, err = parseUint32(data[2], "sourceZoneID"); err != nil {
		return cmd, err
	}
	if cmd.TargetZoneID, err = parseUint32(data[3], "targetZoneID"); err != nil {
		return cmd, err
	}
	if len(data) > 4 && data[4] != "" {
		if cmd.Args.NewZoneType, err = parseUint8(data[4], "newZoneType"); err != nil {
			return cmd, err
		}
	}
	return cmd, nil
}

// ParsePlay parses [gameID, action, zoneID, unitID, x, y, unitType, abilityIndex].
// An empty unitID means no acting unit; trailing arguments default to 0.
func (p *Parser) ParsePlay(data []string) (PlayCommand, error) {
	var cmd PlayCommand
	data = clean(data)
	if err := requireArgs(data, 3, "play"); err != nil {
		return cmd, err
	}

	var err error
	if cmd.GameID, err = parseUint32(data[0], "gameID"); err != nil {
		return cmd, err
	}
	if cmd.Args.Action, err = parseUint8(data[1], "action"); err != nil {
		return cmd, err
	}
	if cmd.ZoneID, err = parseUint32(data[2], "zoneID"); err != nil {
		return cmd, err
	}
	if len(data) > 3 && data[3] != "" {
		id, err := parseUint32(data[3], "unitID")
		if err != nil {
			return cmd, err
		}
		cmd.UnitID = &id
	}

	fields := []struct {
		dst  *uint8
		name string
	}{
		{&cmd.Args.X, "x"},
		{&cmd.Args.Y, "y"},
		{&cmd.Args.UnitType, "unitType"},
		{&cmd.Args.AbilityIndex, "abilityIndex"},
	}
	for i, f := range fields {
		idx := 4 + i
		if idx >= len(data) || data[idx] == "" {
			continue
		}
		if *f.dst, err = parseUint8(data[idx], f.name); err != nil {
			return cmd, err
		}
	}

	p.logger.Debug("Parsed play", "gameID", cmd.GameID, "action", cmd.Args.Action, "zoneID", cmd.ZoneID)
	return cmd, nil
}
