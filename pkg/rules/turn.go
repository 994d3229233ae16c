// Package rules is the BioCommander state-transition engine. Every entry point
// validates all of its preconditions before it mutates any entity, so a
// returned error always means the entities are exactly as they were passed in.
package rules

import "github.com/biocommander/engine/pkg/core"

// Authorize checks that authority may act in game through player right now.
func Authorize(authority core.Identity, game *core.Game, player *core.Player) error {
	if !game.IsPlayerTurn(authority) {
		return ErrNotPlayersTurn
	}
	if !game.IsActive() {
		return ErrNotActive
	}
	if player.Key != authority {
		return ErrNotInGame
	}
	return nil
}

// NextSeat returns the seat the next join would take, or 0 when both are held.
func NextSeat(game *core.Game) uint8 {
	switch {
	case !game.Player1.IsSet():
		return 1
	case !game.Player2.IsSet():
		return 2
	default:
		return 0
	}
}

// StartingPosition is the map coordinate of the starting zone for seat.
// Seat 2 starts at the map centre, seat 1 one column west of it.
func StartingPosition(game *core.Game, seat uint8) (x, y uint8) {
	x, y = game.MapWidth/2, game.MapHeight/2
	if seat == 1 && x > 0 {
		x--
	}
	return x, y
}

// StartingZoneID is the lattice id of the starting zone for seat.
func StartingZoneID(game *core.Game, seat uint8) uint32 {
	return game.LatticeZoneID(StartingPosition(game, seat))
}
