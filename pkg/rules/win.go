package rules

import "github.com/biocommander/engine/pkg/core"

// WinThreshold is the controlled-zone count that wins a game of totalZones.
func WinThreshold(totalZones uint32) uint32 {
	return totalZones * 3 / 4
}

// checkWin finishes the game when player controls at least three quarters of
// all zones, and reports whether it did.
func checkWin(game *core.Game, player *core.Player) bool {
	if uint32(player.ControlledZones) < WinThreshold(game.TotalZones) {
		return false
	}
	switch player.PlayerID {
	case 1:
		game.EndGame(core.WinnerPlayer1)
	case 2:
		game.EndGame(core.WinnerPlayer2)
	default:
		game.EndGame(core.WinnerDraw)
	}
	return true
}
