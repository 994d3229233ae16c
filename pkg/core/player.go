// pkg/core/player.go
package core

import "fmt"

// Faction is the side a player fights for.
type Faction uint8

const (
	FactionImmuneSystem Faction = iota
	FactionPathogen
)

func (f Faction) String() string {
	switch f {
	case FactionImmuneSystem:
		return "ImmuneSystem"
	case FactionPathogen:
		return "Pathogen"
	default:
		return fmt.Sprintf("Faction(%d)", uint8(f))
	}
}

// FactionFromSelector maps the wire selector 0|1 to a faction.
func FactionFromSelector(sel uint8) (Faction, bool) {
	switch sel {
	case 0:
		return FactionImmuneSystem, true
	case 1:
		return FactionPathogen, true
	default:
		return 0, false
	}
}

// SpecialBonus is a passive player upgrade.
type SpecialBonus uint8

const (
	BonusIncreasedProduction SpecialBonus = iota
	BonusFasterMovement
	BonusStrongerUnits
	BonusBetterDefense
	BonusResourceEfficiency
	BonusZoneControl
)

const (
	UnitTypeCount = 12
	BonusSlots    = 3
)

// Player is one seat of a match.
type Player struct {
	GameID          uint32
	PlayerID        uint8
	Key             Identity
	Reserves        Resources
	ControlledZones uint16
	TotalUnits      uint16
	ResearchPoints  uint32
	Faction         Faction
	UnlockedUnits   [UnitTypeCount]bool
	SpecialBonuses  [BonusSlots]*SpecialBonus
}

// NewPlayer returns an unseated player with default reserves.
func NewPlayer(gameID uint32) *Player {
	p := &Player{
		GameID:   gameID,
		PlayerID: 1,
		Reserves: Resources{Energy: 1000, Antibodies: 500, StemCells: 100, Nutrients: 750},
	}
	p.UnlockedUnits[UnitTCell] = true
	p.UnlockedUnits[UnitVirus] = true
	return p
}

func (p *Player) CanAfford(cost Resources) bool {
	return p.Reserves.Covers(cost)
}

// Spend deducts cost when affordable and reports whether it did.
func (p *Player) Spend(cost Resources) bool {
	return p.Reserves.Sub(cost)
}

// Earn adds gain with saturation.
func (p *Player) Earn(gain Resources) {
	p.Reserves.Add(gain)
}

// IsUnitUnlocked reports whether unit type index i is unlocked. Out-of-range indices are locked.
func (p *Player) IsUnitUnlocked(i int) bool {
	if i < 0 || i >= UnitTypeCount {
		return false
	}
	return p.UnlockedUnits[i]
}

// UnlockUnit unlocks index i; out-of-range indices are ignored.
func (p *Player) UnlockUnit(i int) {
	if i < 0 || i >= UnitTypeCount {
		return
	}
	p.UnlockedUnits[i] = true
}

// FactionBonus returns the (attack, defense, movement) bonus of the player's faction.
func (p *Player) FactionBonus() (attack, defense, movement uint16) {
	switch p.Faction {
	case FactionImmuneSystem:
		return 2, 3, 0
	case FactionPathogen:
		return 3, 0, 1
	default:
		return 0, 0, 0
	}
}

// Owner returns the player's key as an Owner.
func (p *Player) Owner() Owner {
	return OwnedBy(p.Key)
}
