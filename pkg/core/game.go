// pkg/core/game.go
package core

import "fmt"

// GameState is the phase of a match.
type GameState uint8

const (
	StateWaitingForPlayers GameState = iota
	StateActive
	// StatePaused is declared but nothing in the rules enters or leaves it.
	StatePaused
	StateFinished
)

func (s GameState) String() string {
	switch s {
	case StateWaitingForPlayers:
		return "WaitingForPlayers"
	case StateActive:
		return "Active"
	case StatePaused:
		return "Paused"
	case StateFinished:
		return "Finished"
	default:
		return fmt.Sprintf("GameState(%d)", uint8(s))
	}
}

// GameWinner is the resolution carried by a finished game.
type GameWinner uint8

const (
	WinnerNone GameWinner = iota
	WinnerPlayer1
	WinnerPlayer2
	WinnerDraw
	WinnerImmuneSystem
	WinnerInfection
)

func (w GameWinner) String() string {
	switch w {
	case WinnerNone:
		return "None"
	case WinnerPlayer1:
		return "Player1"
	case WinnerPlayer2:
		return "Player2"
	case WinnerDraw:
		return "Draw"
	case WinnerImmuneSystem:
		return "ImmuneSystem"
	case WinnerInfection:
		return "Infection"
	default:
		return fmt.Sprintf("GameWinner(%d)", uint8(w))
	}
}

// Game defaults.
const (
	DefaultMapWidth            = 4
	DefaultMapHeight           = 4
	DefaultTotalZones          = 16
	DefaultInfectionLevel      = 20
	DefaultImmuneResponseLevel = 30
	DefaultTurnTimeLimit       = 300
	MaxZones                   = 64
	maxLevel                   = 100
)

// Game is one match.
type Game struct {
	GameID      uint32
	Player1     Owner
	Player2     Owner
	CurrentTurn uint8
	TurnNumber  uint32
	MapWidth    uint8
	MapHeight   uint8
	TotalZones  uint32
	State       GameState
	// Result is meaningful only when State is StateFinished.
	Result              GameWinner
	Winner              Owner
	InfectionLevel      uint8
	ImmuneResponseLevel uint8
	TurnTimeLimit       uint64
	LastTurnTimestamp   int64
}

// NewGame returns a game waiting for players with default settings.
func NewGame(id uint32) *Game {
	return &Game{
		GameID:              id,
		CurrentTurn:         1,
		MapWidth:            DefaultMapWidth,
		MapHeight:           DefaultMapHeight,
		TotalZones:          DefaultTotalZones,
		State:               StateWaitingForPlayers,
		InfectionLevel:      DefaultInfectionLevel,
		ImmuneResponseLevel: DefaultImmuneResponseLevel,
		TurnTimeLimit:       DefaultTurnTimeLimit,
	}
}

// Seat returns the owner of seat 1 or 2. Any other seat is unset.
func (g *Game) Seat(seat uint8) Owner {
	switch seat {
	case 1:
		return g.Player1
	case 2:
		return g.Player2
	default:
		return Owner{}
	}
}

// SeatOf returns the seat id holds, or 0.
func (g *Game) SeatOf(id Identity) uint8 {
	switch {
	case g.Player1.Is(id):
		return 1
	case g.Player2.Is(id):
		return 2
	default:
		return 0
	}
}

// IsPlayerTurn reports whether id holds the seat whose turn it is.
func (g *Game) IsPlayerTurn(id Identity) bool {
	return g.Seat(g.CurrentTurn).Is(id)
}

// Opponent returns the other seat's owner, or false when id is not seated.
func (g *Game) Opponent(id Identity) (Owner, bool) {
	switch {
	case g.Player1.Is(id):
		return g.Player2, true
	case g.Player2.Is(id):
		return g.Player1, true
	default:
		return Owner{}, false
	}
}

// CurrentPlayer returns the owner of the seat to move.
func (g *Game) CurrentPlayer() Owner {
	if g.CurrentTurn == 1 {
		return g.Player1
	}
	return g.Player2
}

func (g *Game) IsActive() bool {
	return g.State == StateActive
}

func (g *Game) IsFinished() bool {
	return g.State == StateFinished
}

// SwitchTurn passes the turn to the other seat and advances the turn counter.
func (g *Game) SwitchTurn() {
	if g.CurrentTurn == 1 {
		g.CurrentTurn = 2
	} else {
		g.CurrentTurn = 1
	}
	g.TurnNumber++
}

// EndGame finishes the match. Only seat outcomes name a winner identity.
func (g *Game) EndGame(w GameWinner) {
	switch w {
	case WinnerPlayer1:
		g.Winner = g.Player1
	case WinnerPlayer2:
		g.Winner = g.Player2
	default:
		g.Winner = Owner{}
	}
	g.State = StateFinished
	g.Result = w
}

// UpdateInfectionLevel applies a signed delta clamped to [0,100].
func (g *Game) UpdateInfectionLevel(delta int8) {
	g.InfectionLevel = clampLevel(g.InfectionLevel, delta)
}

// UpdateImmuneResponseLevel applies a signed delta clamped to [0,100].
func (g *Game) UpdateImmuneResponseLevel(delta int8) {
	g.ImmuneResponseLevel = clampLevel(g.ImmuneResponseLevel, delta)
}

func clampLevel(level uint8, delta int8) uint8 {
	v := int16(level) + int16(delta)
	if v < 0 {
		return 0
	}
	if v > maxLevel {
		return maxLevel
	}
	return uint8(v)
}

// LatticeZoneID is the row-major zone id of map coordinate (x, y).
func (g *Game) LatticeZoneID(x, y uint8) uint32 {
	return uint32(y)*uint32(g.MapWidth) + uint32(x)
}
