// pkg/core/zone.go
package core

import "fmt"

// GridSize is the side length of a zone's tactical grid.
const GridSize = 16

// Zone resource caps.
const (
	ZoneResourceCap  = 1000
	ZoneStemCellsCap = 100
)

// ZoneType is the tissue kind of a zone.
type ZoneType uint8

const (
	ZoneCirculatory ZoneType = iota
	ZoneTissue
	ZoneLymphatic
	ZoneBarrier
	ZoneOrgan
)

var zoneTypeNames = [...]string{"Circulatory", "Tissue", "Lymphatic", "Barrier", "Organ"}

func (t ZoneType) String() string {
	if int(t) < len(zoneTypeNames) {
		return zoneTypeNames[t]
	}
	return fmt.Sprintf("ZoneType(%d)", uint8(t))
}

// ZoneTypeFromSelector maps the wire selector 0..4 to a zone type.
func ZoneTypeFromSelector(sel uint8) (ZoneType, bool) {
	if int(sel) >= len(zoneTypeNames) {
		return 0, false
	}
	return ZoneType(sel), true
}

// MovementCost is the cost of moving through a zone of this type.
func (t ZoneType) MovementCost() uint8 {
	switch t {
	case ZoneCirculatory:
		return 1
	case ZoneTissue:
		return 3
	case ZoneLymphatic:
		return 2
	case ZoneBarrier:
		return 4
	case ZoneOrgan:
		return 2
	default:
		return 0
	}
}

// Yield is the per-turn resource production of this type.
func (t ZoneType) Yield() Resources {
	switch t {
	case ZoneCirculatory:
		return Resources{Energy: 10, Antibodies: 5, StemCells: 2, Nutrients: 8}
	case ZoneTissue:
		return Resources{Energy: 5, Antibodies: 15, StemCells: 1, Nutrients: 10}
	case ZoneLymphatic:
		return Resources{Energy: 8, Antibodies: 20, StemCells: 5, Nutrients: 5}
	case ZoneBarrier:
		return Resources{Energy: 3, Antibodies: 25, StemCells: 1, Nutrients: 3}
	case ZoneOrgan:
		return Resources{Energy: 15, Antibodies: 10, StemCells: 3, Nutrients: 15}
	default:
		return Resources{}
	}
}

// DefenseBonus is subtracted from incoming attack damage.
func (t ZoneType) DefenseBonus() uint16 {
	switch t {
	case ZoneTissue:
		return 2
	case ZoneLymphatic:
		return 3
	case ZoneBarrier:
		return 5
	case ZoneOrgan:
		return 1
	default:
		return 0
	}
}

// Direction indexes a zone's neighbor table.
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
)

// Position is a cell coordinate inside a zone grid.
type Position struct {
	X uint8
	Y uint8
}

// Zone is one map region with its own tactical grid and resource pool.
type Zone struct {
	GameID       uint32
	ZoneID       uint32
	Type         ZoneType
	X            uint8
	Y            uint8
	Owner        Owner
	Grid         [GridSize][GridSize]Cell
	Energy       uint32
	Antibodies   uint32
	StemCells    uint32
	Nutrients    uint32
	UnitCount    uint16
	IsBorderZone bool
	IsControlled bool
	// Neighbors is layout metadata; adjacency rules use map coordinates.
	Neighbors [4]*uint32
}

// NewZone returns an unowned Tissue zone with default resources.
func NewZone(gameID, zoneID uint32, x, y uint8) *Zone {
	return &Zone{
		GameID:     gameID,
		ZoneID:     zoneID,
		Type:       ZoneTissue,
		X:          x,
		Y:          y,
		Energy:     100,
		Antibodies: 50,
		StemCells:  10,
		Nutrients:  75,
	}
}

// InBounds reports whether (x, y) lies on the grid.
func InBounds(x, y uint8) bool {
	return x < GridSize && y < GridSize
}

// IsAdjacent reports whether other is exactly one step away on the map.
func (z *Zone) IsAdjacent(other *Zone) bool {
	dx := absDiff(z.X, other.X)
	dy := absDiff(z.Y, other.Y)
	return dx+dy == 1
}

// Cell returns the content at (x, y). ok is false out of bounds.
func (z *Zone) Cell(x, y uint8) (c Cell, ok bool) {
	if !InBounds(x, y) {
		return Cell{}, false
	}
	return z.Grid[x][y], true
}

// PlaceUnit writes a combatant into an empty cell and counts it.
func (z *Zone) PlaceUnit(x, y uint8, c Cell) error {
	if !InBounds(x, y) {
		return fmt.Errorf("place unit: (%d,%d) out of bounds", x, y)
	}
	if !c.IsCombatant() {
		return fmt.Errorf("place unit: %s is not a combatant", c.Kind)
	}
	if !z.Grid[x][y].IsEmpty() {
		return fmt.Errorf("place unit: (%d,%d) occupied", x, y)
	}
	z.Grid[x][y] = c
	z.UnitCount = AddSat16(z.UnitCount, 1)
	return nil
}

// RemoveUnit clears a combatant cell and uncounts it.
func (z *Zone) RemoveUnit(x, y uint8) error {
	if !InBounds(x, y) {
		return fmt.Errorf("remove unit: (%d,%d) out of bounds", x, y)
	}
	if !z.Grid[x][y].IsCombatant() {
		return fmt.Errorf("remove unit: (%d,%d) holds no unit", x, y)
	}
	z.Grid[x][y] = Cell{}
	z.UnitCount = SubSat16(z.UnitCount, 1)
	return nil
}

// RelocateUnit moves a combatant to an empty cell. The unit count is unchanged.
func (z *Zone) RelocateUnit(from, to Position) error {
	if !InBounds(from.X, from.Y) || !InBounds(to.X, to.Y) {
		return fmt.Errorf("relocate unit: out of bounds")
	}
	c := z.Grid[from.X][from.Y]
	if !c.IsCombatant() {
		return fmt.Errorf("relocate unit: (%d,%d) holds no unit", from.X, from.Y)
	}
	if !z.Grid[to.X][to.Y].IsEmpty() {
		return fmt.Errorf("relocate unit: (%d,%d) occupied", to.X, to.Y)
	}
	z.Grid[from.X][from.Y] = Cell{}
	z.Grid[to.X][to.Y] = c
	return nil
}

// SetUnitHealth updates the health carried by a combatant cell.
func (z *Zone) SetUnitHealth(x, y uint8, health uint16) {
	if InBounds(x, y) && z.Grid[x][y].IsCombatant() {
		z.Grid[x][y].Health = health
	}
}

// SetTerrain places non-combatant content (resource, obstacle or empty).
func (z *Zone) SetTerrain(x, y uint8, c Cell) error {
	if !InBounds(x, y) {
		return fmt.Errorf("set terrain: (%d,%d) out of bounds", x, y)
	}
	if c.IsCombatant() || z.Grid[x][y].IsCombatant() {
		return fmt.Errorf("set terrain: (%d,%d) involves a unit", x, y)
	}
	z.Grid[x][y] = c
	return nil
}

// OccupiedCells lists every non-empty cell in column-major order.
func (z *Zone) OccupiedCells() []Position {
	var out []Position
	for x := uint8(0); x < GridSize; x++ {
		for y := uint8(0); y < GridSize; y++ {
			if !z.Grid[x][y].IsEmpty() {
				out = append(out, Position{X: x, Y: y})
			}
		}
	}
	return out
}

// Replenish adds a yield to the zone's own pool under the zone caps.
func (z *Zone) Replenish(y Resources) {
	z.Energy = AddCapped32(z.Energy, clamp32(y.Energy), ZoneResourceCap)
	z.Antibodies = AddCapped32(z.Antibodies, clamp32(y.Antibodies), ZoneResourceCap)
	z.StemCells = AddCapped32(z.StemCells, clamp32(y.StemCells), ZoneStemCellsCap)
	z.Nutrients = AddCapped32(z.Nutrients, clamp32(y.Nutrients), ZoneResourceCap)
}

func clamp32(v uint64) uint32 {
	if v > uint64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(v)
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
