// pkg/core/events.go
package core

import (
	"time"
)

// ActionKind names the entry point an action went through.
type ActionKind string

const (
	ActionJoin   ActionKind = "join"
	ActionExpand ActionKind = "expand"
	ActionPlay   ActionKind = "play"
)

// ActionRecord is one entry of a match's action history, accepted or rejected.
type ActionRecord struct {
	ID         string
	GameID     uint32
	TurnNumber uint32
	Authority  Identity
	Kind       ActionKind
	Args       []string
	Accepted   bool
	// Code is the rejection reason; empty when accepted.
	Code     string
	Time     time.Time
	Duration time.Duration
}

// MatchSummary describes a finished or exported match.
type MatchSummary struct {
	GameID              uint32
	Scenario            string
	StartTime           time.Time
	EndTime             time.Time
	State               GameState
	Result              GameWinner
	Winner              Owner
	TurnNumber          uint32
	InfectionLevel      uint8
	ImmuneResponseLevel uint8
}

// UploadMetadata accompanies an exported match file sent to the web frontend.
type UploadMetadata struct {
	GameID        uint32
	Scenario      string
	MatchDuration float64
	Result        string
	Tag           string
}
