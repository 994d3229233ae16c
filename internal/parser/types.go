package parser

import "github.com/biocommander/engine/pkg/rules"

// NewMatchCommand opens a match on a scenario map.
type NewMatchCommand struct {
	Scenario string
	// TurnTimeLimit overrides the game default when non-zero (seconds).
	TurnTimeLimit uint64
}

// GameRef addresses an existing match.
type GameRef struct {
	GameID uint32
}

// JoinCommand seats the acting identity in a match.
type JoinCommand struct {
	GameID uint32
	Args   rules.JoinArgs
	// StartingZone requests that the seat's starting zone be claimed.
	StartingZone bool
}

// ExpandCommand carries a zone expansion.
type ExpandCommand struct {
	GameID       uint32
	SourceZoneID uint32
	TargetZoneID uint32
	Args         rules.ExpandArgs
}

// PlayCommand carries a tactical action. UnitID is nil when no unit acts.
type PlayCommand struct {
	GameID uint32
	ZoneID uint32
	UnitID *uint32
	Args   rules.PlayArgs
}
