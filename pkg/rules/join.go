package rules

import "github.com/biocommander/engine/pkg/core"

// JoinArgs is the argument record of Join.
type JoinArgs struct {
	Faction uint8
}

var startingReserves = map[core.Faction]core.Resources{
	core.FactionImmuneSystem: {Energy: 1200, Antibodies: 800, StemCells: 150, Nutrients: 900},
	core.FactionPathogen:     {Energy: 1500, Antibodies: 200, StemCells: 50, Nutrients: 1200},
}

var startingUnlocks = map[core.Faction][]core.UnitType{
	core.FactionImmuneSystem: {core.UnitTCell, core.UnitBCell, core.UnitMacrophage},
	core.FactionPathogen:     {core.UnitVirus, core.UnitBacteria, core.UnitFungus},
}

// Join seats authority in game and sets player up for the chosen faction.
// When startingZone is not nil it is claimed for the joining player at the
// seat's starting position. The second join activates the game.
func Join(authority core.Identity, game *core.Game, player *core.Player, startingZone *core.Zone, args JoinArgs) error {
	if game.State != core.StateWaitingForPlayers {
		return ErrGameAlreadyStarted
	}
	if game.Player1.Is(authority) || game.Player2.Is(authority) {
		return ErrPlayerAlreadyInGame
	}
	seat := NextSeat(game)
	if seat == 0 {
		return ErrGameFull
	}
	faction, ok := core.FactionFromSelector(args.Faction)
	if !ok {
		return ErrInvalidFaction
	}
	if startingZone != nil && startingZone.Owner.IsSet() {
		return ErrZoneAlreadyControlled
	}

	if seat == 1 {
		game.Player1 = core.OwnedBy(authority)
	} else {
		game.Player2 = core.OwnedBy(authority)
	}

	player.GameID = game.GameID
	player.PlayerID = seat
	player.Key = authority
	player.Faction = faction
	player.Reserves = startingReserves[faction]
	for _, t := range startingUnlocks[faction] {
		player.UnlockUnit(int(t))
	}

	if startingZone != nil {
		claimStartingZone(game, player, startingZone, seat)
	}

	if game.Player1.IsSet() && game.Player2.IsSet() {
		game.State = core.StateActive
		game.CurrentTurn = 1
	}
	return nil
}

func claimStartingZone(game *core.Game, player *core.Player, zone *core.Zone, seat uint8) {
	x, y := StartingPosition(game, seat)
	zone.GameID = game.GameID
	zone.ZoneID = game.LatticeZoneID(x, y)
	zone.X, zone.Y = x, y
	zone.Owner = player.Owner()
	zone.IsControlled = true
	if player.Faction == core.FactionImmuneSystem {
		zone.Type = core.ZoneLymphatic
	} else {
		zone.Type = core.ZoneTissue
	}
	player.ControlledZones = 1
}
