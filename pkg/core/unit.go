// pkg/core/unit.go
package core

import "fmt"

// UnitType is one of the twelve unit kinds. Indices 0-5 are immune cells, 6-11 pathogens.
type UnitType uint8

const (
	UnitTCell UnitType = iota
	UnitBCell
	UnitMacrophage
	UnitNeutrophil
	UnitDendritic
	UnitNaturalKiller
	UnitVirus
	UnitBacteria
	UnitFungus
	UnitParasite
	UnitCancer
	UnitToxin
)

// SpecialAbility is an activatable unit power.
type SpecialAbility uint8

const (
	AbilityAntibodyProduction SpecialAbility = iota
	AbilityPhagocytosis
	AbilityCytokineRelease
	AbilityMemoryResponse
	AbilityInfiltration
	AbilityZoneHealing
	AbilityReplication
	AbilityMutation
	AbilityToxinRelease
	AbilityImmuneEvasion
	AbilityMetastasis
	AbilityResourceDrain
)

var abilityNames = [...]string{
	"AntibodyProduction", "Phagocytosis", "CytokineRelease", "MemoryResponse",
	"Infiltration", "ZoneHealing", "Replication", "Mutation",
	"ToxinRelease", "ImmuneEvasion", "Metastasis", "ResourceDrain",
}

func (a SpecialAbility) String() string {
	if int(a) < len(abilityNames) {
		return abilityNames[a]
	}
	return fmt.Sprintf("SpecialAbility(%d)", uint8(a))
}

// AbilitySlots is the number of ability slots on a unit.
const AbilitySlots = 3

// UnitStats are the base statistics of a unit type.
type UnitStats struct {
	Health        uint16
	Attack        uint16
	Defense       uint16
	MovementRange uint8
	EnergyCost    uint16
}

type unitSpec struct {
	name      string
	stats     UnitStats
	abilities [2]SpecialAbility
}

var unitTable = [UnitTypeCount]unitSpec{
	UnitTCell:         {"TCell", UnitStats{80, 15, 10, 3, 20}, [2]SpecialAbility{AbilityCytokineRelease, AbilityMemoryResponse}},
	UnitBCell:         {"BCell", UnitStats{60, 8, 8, 2, 25}, [2]SpecialAbility{AbilityAntibodyProduction, AbilityMemoryResponse}},
	UnitMacrophage:    {"Macrophage", UnitStats{120, 20, 15, 2, 30}, [2]SpecialAbility{AbilityPhagocytosis, AbilityCytokineRelease}},
	UnitNeutrophil:    {"Neutrophil", UnitStats{70, 18, 8, 4, 15}, [2]SpecialAbility{AbilityPhagocytosis, AbilityInfiltration}},
	UnitDendritic:     {"Dendritic", UnitStats{50, 5, 12, 3, 35}, [2]SpecialAbility{AbilityCytokineRelease, AbilityInfiltration}},
	UnitNaturalKiller: {"NaturalKiller", UnitStats{90, 25, 10, 3, 40}, [2]SpecialAbility{AbilityCytokineRelease, AbilityZoneHealing}},
	UnitVirus:         {"Virus", UnitStats{40, 12, 5, 4, 10}, [2]SpecialAbility{AbilityReplication, AbilityImmuneEvasion}},
	UnitBacteria:      {"Bacteria", UnitStats{60, 15, 8, 2, 15}, [2]SpecialAbility{AbilityReplication, AbilityToxinRelease}},
	UnitFungus:        {"Fungus", UnitStats{80, 10, 12, 1, 20}, [2]SpecialAbility{AbilityReplication, AbilityResourceDrain}},
	UnitParasite:      {"Parasite", UnitStats{70, 18, 6, 3, 25}, [2]SpecialAbility{AbilityImmuneEvasion, AbilityResourceDrain}},
	UnitCancer:        {"Cancer", UnitStats{100, 20, 10, 2, 30}, [2]SpecialAbility{AbilityReplication, AbilityMetastasis}},
	UnitToxin:         {"Toxin", UnitStats{30, 30, 2, 5, 5}, [2]SpecialAbility{AbilityToxinRelease, AbilityResourceDrain}},
}

// UnitTypeFromSelector maps the wire selector 0..11 to a unit type.
func UnitTypeFromSelector(sel uint8) (UnitType, bool) {
	if int(sel) >= UnitTypeCount {
		return 0, false
	}
	return UnitType(sel), true
}

func (t UnitType) String() string {
	if int(t) < UnitTypeCount {
		return unitTable[t].name
	}
	return fmt.Sprintf("UnitType(%d)", uint8(t))
}

func (t UnitType) Valid() bool {
	return int(t) < UnitTypeCount
}

// BaseStats returns the stat line of the type. Invalid types have zero stats.
func (t UnitType) BaseStats() UnitStats {
	if !t.Valid() {
		return UnitStats{}
	}
	return unitTable[t].stats
}

// DefaultAbilities fills the first two slots; the third stays empty.
func (t UnitType) DefaultAbilities() [AbilitySlots]*SpecialAbility {
	var out [AbilitySlots]*SpecialAbility
	if !t.Valid() {
		return out
	}
	for i, a := range unitTable[t].abilities {
		a := a
		out[i] = &a
	}
	return out
}

func (t UnitType) IsImmuneCell() bool {
	return t <= UnitNaturalKiller
}

func (t UnitType) IsPathogen() bool {
	return t >= UnitVirus && t.Valid()
}

// Unit is a placed combatant, mirrored by a cell in its zone's grid.
type Unit struct {
	GameID        uint32
	UnitID        uint32
	Type          UnitType
	ZoneID        uint32
	X             uint8
	Y             uint8
	Health        uint16
	MaxHealth     uint16
	Attack        uint16
	Defense       uint16
	MovementRange uint8
	Owner         Owner
	Abilities     [AbilitySlots]*SpecialAbility
	IsActive      bool
	EnergyCost    uint16
}

// NewUnit returns an active unit of type t with base stats and default abilities.
func NewUnit(t UnitType) *Unit {
	s := t.BaseStats()
	return &Unit{
		Type:          t,
		Health:        s.Health,
		MaxHealth:     s.Health,
		Attack:        s.Attack,
		Defense:       s.Defense,
		MovementRange: s.MovementRange,
		Abilities:     t.DefaultAbilities(),
		IsActive:      true,
		EnergyCost:    s.EnergyCost,
	}
}

// Position returns the unit's grid coordinate.
func (u *Unit) Position() Position {
	return Position{X: u.X, Y: u.Y}
}

// Ability returns the ability in slot i, or nil for an empty or out-of-range slot.
func (u *Unit) Ability(i int) *SpecialAbility {
	if i < 0 || i >= AbilitySlots {
		return nil
	}
	return u.Abilities[i]
}
