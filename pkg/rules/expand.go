package rules

import (
	"fmt"

	"github.com/biocommander/engine/pkg/core"
)

// Expansion selects an ExpandZone variant.
type Expansion uint8

const (
	InfectionSpread Expansion = iota
	ImmuneResponse
	CreateNewZone
	ConquerZone
)

func (e Expansion) String() string {
	switch e {
	case InfectionSpread:
		return "InfectionSpread"
	case ImmuneResponse:
		return "ImmuneResponse"
	case CreateNewZone:
		return "CreateNewZone"
	case ConquerZone:
		return "ConquerZone"
	default:
		return fmt.Sprintf("Expansion(%d)", uint8(e))
	}
}

// ExpandArgs is the argument record of ExpandZone. NewZoneType is read by
// CreateNewZone only.
type ExpandArgs struct {
	Expansion   uint8
	NewZoneType uint8
}

// ExpandZone claims, creates or takes over target. source is the player's
// launching zone and is ignored by CreateNewZone.
func ExpandZone(authority core.Identity, game *core.Game, player *core.Player, source, target *core.Zone, args ExpandArgs) error {
	if err := Authorize(authority, game, player); err != nil {
		return err
	}

	var err error
	switch Expansion(args.Expansion) {
	case InfectionSpread:
		err = infectionSpread(game, player, source, target)
	case ImmuneResponse:
		err = immuneResponse(game, player, source, target)
	case CreateNewZone:
		err = createNewZone(game, player, target, args.NewZoneType)
	case ConquerZone:
		err = conquerZone(game, player, source, target)
	default:
		return withMetadata(ErrInvalidExpansionType, "expansion", fmt.Sprint(args.Expansion))
	}
	if err != nil {
		return err
	}

	checkWin(game, player)
	return nil
}

func infectionSpread(game *core.Game, player *core.Player, source, target *core.Zone) error {
	if player.Faction != core.FactionPathogen {
		return ErrExpansionNotPossible
	}
	if err := checkLaunch(player, source, target); err != nil {
		return err
	}
	cost := InfectionSpreadCost(target.Type)
	if !player.Spend(cost) {
		return ErrInsufficientResources
	}

	if !target.Owner.IsSet() {
		claim(player, target)
		target.Type = core.ZoneTissue
	} else {
		target.Energy = core.SubSat32(target.Energy, 50)
		target.Nutrients = core.SubSat32(target.Nutrients, 30)
	}
	game.UpdateInfectionLevel(5)
	return nil
}

func immuneResponse(game *core.Game, player *core.Player, source, target *core.Zone) error {
	if player.Faction != core.FactionImmuneSystem {
		return ErrExpansionNotPossible
	}
	if err := checkLaunch(player, source, target); err != nil {
		return err
	}
	cost := ImmuneResponseCost(target.Type)
	if !player.Spend(cost) {
		return ErrInsufficientResources
	}

	if !target.Owner.IsSet() {
		claim(player, target)
		target.Type = core.ZoneLymphatic
	} else {
		target.Antibodies = core.AddCapped32(target.Antibodies, 100, core.ZoneResourceCap)
		target.Energy = core.AddCapped32(target.Energy, 50, core.ZoneResourceCap)
	}
	game.UpdateImmuneResponseLevel(5)
	return nil
}

func createNewZone(game *core.Game, player *core.Player, target *core.Zone, typeSelector uint8) error {
	if game.TotalZones >= core.MaxZones {
		return ErrMaxZonesReached
	}
	if target.Owner.IsSet() {
		return ErrZoneAlreadyControlled
	}
	zoneType, ok := core.ZoneTypeFromSelector(typeSelector)
	if !ok {
		return withMetadata(ErrInvalidZoneType, "zone_type", fmt.Sprint(typeSelector))
	}
	cost := ZoneCreationCost(zoneType, player.Faction)
	if !player.Spend(cost) {
		return ErrInsufficientResources
	}

	target.GameID = game.GameID
	target.ZoneID = game.TotalZones
	target.Type = zoneType
	target.Owner = player.Owner()
	target.IsControlled = true
	target.IsBorderZone = true
	y := zoneType.Yield()
	target.Energy = uint32(y.Energy * 5)
	target.Antibodies = uint32(y.Antibodies * 5)
	target.StemCells = uint32(y.StemCells * 5)
	target.Nutrients = uint32(y.Nutrients * 5)

	game.TotalZones++
	player.ControlledZones = core.AddSat16(player.ControlledZones, 1)
	return nil
}

func conquerZone(game *core.Game, player *core.Player, source, target *core.Zone) error {
	if source == nil || !source.Owner.Is(player.Key) {
		return ErrNotInGame
	}
	if !target.Owner.IsSet() || target.Owner.Is(player.Key) {
		return ErrZoneAlreadyControlled
	}
	if !source.IsAdjacent(target) {
		return ErrZoneNotAdjacent
	}
	cost := ConquestCost(target.Type)
	if !player.Spend(cost) {
		return ErrInsufficientResources
	}

	target.Owner = player.Owner()
	target.IsControlled = true
	player.ControlledZones = core.AddSat16(player.ControlledZones, 1)
	target.Energy /= 2
	target.Nutrients /= 2
	target.UnitCount /= 2

	if player.Faction == core.FactionPathogen {
		game.UpdateInfectionLevel(3)
	} else {
		game.UpdateImmuneResponseLevel(3)
	}
	return nil
}

// checkLaunch validates the source/target pair shared by spread and response.
func checkLaunch(player *core.Player, source, target *core.Zone) error {
	if source == nil || !source.Owner.Is(player.Key) {
		return ErrNotInGame
	}
	if !source.IsAdjacent(target) {
		return ErrZoneNotAdjacent
	}
	return nil
}

func claim(player *core.Player, target *core.Zone) {
	target.Owner = player.Owner()
	target.IsControlled = true
	player.ControlledZones = core.AddSat16(player.ControlledZones, 1)
}

// InfectionSpreadCost is (200, 0, 0, 100) scaled by the target's resistance.
func InfectionSpreadCost(target core.ZoneType) core.Resources {
	var resistance uint64 = 1
	switch target {
	case core.ZoneBarrier:
		resistance = 3
	case core.ZoneLymphatic:
		resistance = 2
	}
	return core.PathogenSplit(100 * resistance)
}

// ImmuneResponseCost is (d, 2d, d/4, d/2) for d = 80 scaled by the target's difficulty.
func ImmuneResponseCost(target core.ZoneType) core.Resources {
	var difficulty uint64 = 1
	switch target {
	case core.ZoneTissue:
		difficulty = 2
	case core.ZoneOrgan:
		difficulty = 3
	}
	d := 80 * difficulty
	return core.Resources{Energy: d, Antibodies: d * 2, StemCells: d / 4, Nutrients: d / 2}
}

var zoneCreationBase = [...]uint64{
	core.ZoneCirculatory: 200,
	core.ZoneTissue:      150,
	core.ZoneLymphatic:   300,
	core.ZoneBarrier:     400,
	core.ZoneOrgan:       500,
}

// ZoneCreationCost is the type's base cost times the faction modifier,
// truncated, then split as (c, c/2, c/10, c/3).
func ZoneCreationCost(t core.ZoneType, faction core.Faction) core.Resources {
	if int(t) >= len(zoneCreationBase) {
		return core.Resources{}
	}
	modifier := 1.0
	if faction == core.FactionPathogen {
		modifier = 1.2
	}
	c := uint64(float64(zoneCreationBase[t]) * modifier)
	return core.ImmuneSplit(c)
}

// ConquestCost is (3a, a, a/5, 2a) for a = 250 scaled by the target's defense.
func ConquestCost(target core.ZoneType) core.Resources {
	var defense uint64 = 1
	switch target {
	case core.ZoneOrgan:
		defense = 3
	case core.ZoneBarrier, core.ZoneLymphatic:
		defense = 2
	}
	a := 250 * defense
	return core.Resources{Energy: a * 3, Antibodies: a, StemCells: a / 5, Nutrients: a * 2}
}
