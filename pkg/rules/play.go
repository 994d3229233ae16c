package rules

import (
	"fmt"

	"github.com/biocommander/engine/pkg/core"
)

// Action selects a tactical action.
type Action uint8

const (
	SpawnUnit Action = iota
	MoveUnit
	AttackPosition
	UseSpecialAbility
	EndTurn
)

func (a Action) String() string {
	switch a {
	case SpawnUnit:
		return "SpawnUnit"
	case MoveUnit:
		return "MoveUnit"
	case AttackPosition:
		return "AttackPosition"
	case UseSpecialAbility:
		return "UseSpecialAbility"
	case EndTurn:
		return "EndTurn"
	default:
		return fmt.Sprintf("Action(%d)", uint8(a))
	}
}

// PlayArgs is the argument record of Play. X and Y address the target cell of
// spawn, move and attack; UnitType is read by spawn, AbilityIndex by abilities.
type PlayArgs struct {
	Action       uint8
	X            uint8
	Y            uint8
	UnitType     uint8
	AbilityIndex uint8
}

// Damage describes the combatant hit by an attack.
type Damage struct {
	UnitID    uint32
	X         uint8
	Y         uint8
	Health    uint16
	Destroyed bool
}

// Outcome reports what an accepted Play produced beyond the mutated entities.
type Outcome struct {
	// Spawned is the record of a unit created by SpawnUnit.
	Spawned *core.Unit
	// Damaged is set when an attack hit a combatant.
	Damaged *Damage
	// Finished is true when the action ended the game.
	Finished bool
}

// Play executes one tactical action in zone. unit is the acting unit for
// move, attack and ability actions and may be nil otherwise.
func Play(authority core.Identity, game *core.Game, player *core.Player, zone *core.Zone, unit *core.Unit, args PlayArgs) (Outcome, error) {
	var out Outcome
	if err := Authorize(authority, game, player); err != nil {
		return out, err
	}

	var err error
	switch Action(args.Action) {
	case SpawnUnit:
		out.Spawned, err = spawnUnit(game, player, zone, args.UnitType, args.X, args.Y)
	case MoveUnit:
		err = moveUnit(player, zone, unit, args.X, args.Y)
	case AttackPosition:
		out.Damaged, err = attackPosition(player, zone, unit, args.X, args.Y)
	case UseSpecialAbility:
		err = useSpecialAbility(player, zone, unit, args.AbilityIndex)
	case EndTurn:
		endTurn(game, player, zone)
	default:
		return out, withMetadata(ErrInvalidAction, "action", fmt.Sprint(args.Action))
	}
	if err != nil {
		return Outcome{}, err
	}

	out.Finished = checkWin(game, player)
	return out, nil
}

func spawnUnit(game *core.Game, player *core.Player, zone *core.Zone, typeSelector, x, y uint8) (*core.Unit, error) {
	cell, ok := zone.Cell(x, y)
	if !ok {
		return nil, ErrPositionOutOfBounds
	}
	if !cell.IsEmpty() {
		return nil, ErrPositionOccupied
	}
	if !zone.Owner.Is(player.Key) {
		return nil, ErrZoneNotControlled
	}
	if !player.IsUnitUnlocked(int(typeSelector)) {
		return nil, ErrUnitTypeNotUnlocked
	}
	unitType, ok := core.UnitTypeFromSelector(typeSelector)
	if !ok {
		return nil, withMetadata(ErrInvalidAction, "unit_type", fmt.Sprint(typeSelector))
	}
	cost := SpawnCost(unitType, zone.Type)
	if !player.Spend(cost) {
		return nil, ErrInsufficientResources
	}

	u := core.NewUnit(unitType)
	u.GameID = game.GameID
	u.UnitID = uint32(zone.UnitCount) + zone.ZoneID*1000
	u.ZoneID = zone.ZoneID
	u.X, u.Y = x, y
	u.Owner = player.Owner()

	// cell verified empty above
	_ = zone.PlaceUnit(x, y, core.UnitCell(unitType, u.UnitID, u.Health))
	player.TotalUnits = core.AddSat16(player.TotalUnits, 1)
	return u, nil
}

func moveUnit(player *core.Player, zone *core.Zone, unit *core.Unit, x, y uint8) error {
	if err := checkActor(player, zone, unit); err != nil {
		return err
	}
	cell, ok := zone.Cell(x, y)
	if !ok {
		return ErrPositionOutOfBounds
	}
	if !cell.IsEmpty() {
		return ErrPositionOccupied
	}
	if manhattan(unit.X, unit.Y, x, y) > int(unit.MovementRange) {
		return ErrInvalidMove
	}

	if err := zone.RelocateUnit(unit.Position(), core.Position{X: x, Y: y}); err != nil {
		return fmt.Errorf("move unit %d: %w", unit.UnitID, err)
	}
	zone.SetUnitHealth(x, y, unit.Health)
	unit.X, unit.Y = x, y
	return nil
}

func attackPosition(player *core.Player, zone *core.Zone, unit *core.Unit, x, y uint8) (*Damage, error) {
	if err := checkActor(player, zone, unit); err != nil {
		return nil, err
	}
	target, ok := zone.Cell(x, y)
	if !ok {
		return nil, ErrPositionOutOfBounds
	}
	switch target.Kind {
	case core.CellEmpty:
		return nil, nil
	case core.CellResource, core.CellObstacle:
		return nil, withMetadata(ErrInvalidAction, "target", target.Kind.String())
	}

	damage := core.SubSat16(unit.Attack, zone.Type.DefenseBonus())
	health := core.SubSat16(target.Health, damage)
	hit := &Damage{UnitID: target.UnitID, X: x, Y: y, Health: health}
	if health == 0 {
		_ = zone.RemoveUnit(x, y)
		hit.Destroyed = true
	} else {
		zone.SetUnitHealth(x, y, health)
	}
	return hit, nil
}

func useSpecialAbility(player *core.Player, zone *core.Zone, unit *core.Unit, index uint8) error {
	if err := checkActor(player, zone, unit); err != nil {
		return err
	}
	if int(index) >= core.AbilitySlots {
		return withMetadata(ErrInvalidAction, "ability_index", fmt.Sprint(index))
	}
	ability := unit.Ability(int(index))
	if ability == nil {
		return nil
	}

	switch *ability {
	case core.AbilityAntibodyProduction:
		player.Earn(core.Resources{Antibodies: 50})
	case core.AbilityPhagocytosis:
		unit.Health = min(core.AddSat16(unit.Health, 20), unit.MaxHealth)
		zone.SetUnitHealth(unit.X, unit.Y, unit.Health)
		player.Earn(core.Resources{Energy: 10, Nutrients: 5})
	case core.AbilityReplication:
		zone.UnitCount = core.AddSat16(zone.UnitCount, 1)
		player.TotalUnits = core.AddSat16(player.TotalUnits, 1)
	case core.AbilityZoneHealing:
		zone.Energy = core.AddCapped32(zone.Energy, 50, core.ZoneResourceCap)
		zone.Nutrients = core.AddCapped32(zone.Nutrients, 30, core.ZoneResourceCap)
	case core.AbilityCytokineRelease, core.AbilityMemoryResponse, core.AbilityInfiltration,
		core.AbilityMutation, core.AbilityToxinRelease, core.AbilityImmuneEvasion,
		core.AbilityMetastasis, core.AbilityResourceDrain:
		// accepted without effect
	}
	return nil
}

func endTurn(game *core.Game, player *core.Player, zone *core.Zone) {
	if zone.Owner.Is(player.Key) {
		y := zone.Type.Yield()
		player.Earn(y)
		zone.Replenish(y)
	}
	game.SwitchTurn()
}

// checkActor verifies that unit belongs to player and stands in zone.
func checkActor(player *core.Player, zone *core.Zone, unit *core.Unit) error {
	if unit == nil || !unit.Owner.Is(player.Key) || unit.ZoneID != zone.ZoneID {
		return ErrUnitNotFound
	}
	cell, ok := zone.Cell(unit.X, unit.Y)
	if !ok || !cell.IsCombatant() || cell.UnitID != unit.UnitID {
		return ErrUnitNotFound
	}
	return nil
}

// SpawnCost is the unit's energy cost scaled by the zone multiplier,
// truncated, then split by the unit's class.
func SpawnCost(t core.UnitType, zone core.ZoneType) core.Resources {
	multiplier := 1.0
	switch zone {
	case core.ZoneLymphatic:
		multiplier = 0.8
	case core.ZoneBarrier:
		multiplier = 1.5
	}
	c := uint64(float64(t.BaseStats().EnergyCost) * multiplier)
	if t.IsImmuneCell() {
		return core.ImmuneSplit(c)
	}
	return core.PathogenSplit(c)
}

func manhattan(x1, y1, x2, y2 uint8) int {
	return absDiff(x1, x2) + absDiff(y1, y2)
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
