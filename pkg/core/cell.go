// pkg/core/cell.go
package core

import "fmt"

// CellKind tags the variant held by a Cell.
type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellImmune
	CellPathogen
	CellResource
	CellObstacle
)

func (k CellKind) String() string {
	switch k {
	case CellEmpty:
		return "Empty"
	case CellImmune:
		return "ImmuneCell"
	case CellPathogen:
		return "Pathogen"
	case CellResource:
		return "Resource"
	case CellObstacle:
		return "Obstacle"
	default:
		return fmt.Sprintf("CellKind(%d)", uint8(k))
	}
}

// ResourceType names a resource deposit on the grid.
type ResourceType uint8

const (
	ResourceEnergy ResourceType = iota
	ResourceAntibodies
	ResourceStemCells
	ResourceNutrients
)

// Cell is the content of one grid square. Only the fields of its Kind are meaningful:
// UnitID and Health for combatants, Resource and Amount for deposits.
type Cell struct {
	Kind     CellKind     `json:"k"`
	UnitID   uint32       `json:"u,omitempty"`
	Health   uint16       `json:"h,omitempty"`
	Resource ResourceType `json:"r,omitempty"`
	Amount   uint16       `json:"a,omitempty"`
}

func ImmuneCell(unitID uint32, health uint16) Cell {
	return Cell{Kind: CellImmune, UnitID: unitID, Health: health}
}

func PathogenCell(unitID uint32, health uint16) Cell {
	return Cell{Kind: CellPathogen, UnitID: unitID, Health: health}
}

func ResourceCell(t ResourceType, amount uint16) Cell {
	return Cell{Kind: CellResource, Resource: t, Amount: amount}
}

func ObstacleCell() Cell {
	return Cell{Kind: CellObstacle}
}

// UnitCell builds the combatant cell for a unit of type t.
func UnitCell(t UnitType, unitID uint32, health uint16) Cell {
	if t.IsImmuneCell() {
		return ImmuneCell(unitID, health)
	}
	return PathogenCell(unitID, health)
}

func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// IsCombatant reports whether the cell holds a unit.
func (c Cell) IsCombatant() bool {
	return c.Kind == CellImmune || c.Kind == CellPathogen
}
