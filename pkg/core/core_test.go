package core

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResources_SubIsAllOrNothing(t *testing.T) {
	r := Resources{Energy: 100, Antibodies: 10, StemCells: 1, Nutrients: 50}

	assert.False(t, r.Sub(Resources{Energy: 50, Antibodies: 11}))
	assert.Equal(t, Resources{Energy: 100, Antibodies: 10, StemCells: 1, Nutrients: 50}, r)

	assert.True(t, r.Sub(Resources{Energy: 50, Antibodies: 10}))
	assert.Equal(t, Resources{Energy: 50, StemCells: 1, Nutrients: 50}, r)
}

func TestResources_AddSaturates(t *testing.T) {
	r := Resources{Energy: math.MaxUint64 - 1, Nutrients: 3}
	r.Add(Resources{Energy: 10, Nutrients: 4})
	assert.Equal(t, uint64(math.MaxUint64), r.Energy)
	assert.Equal(t, uint64(7), r.Nutrients)
}

func TestSplits(t *testing.T) {
	assert.Equal(t, Resources{Energy: 16, Antibodies: 8, StemCells: 1, Nutrients: 5}, ImmuneSplit(16))
	assert.Equal(t, Resources{Energy: 30, Nutrients: 15}, PathogenSplit(15))
}

func TestSaturatingHelpers(t *testing.T) {
	assert.Equal(t, uint32(1000), AddCapped32(990, 50, 1000))
	assert.Equal(t, uint32(1000), AddCapped32(1200, 0, 1000))
	assert.Equal(t, uint32(60), AddCapped32(10, 50, 1000))
	assert.Equal(t, uint32(0), SubSat32(20, 50))
	assert.Equal(t, uint16(0), SubSat16(15, 20))
	assert.Equal(t, uint16(math.MaxUint16), AddSat16(math.MaxUint16, 1))
}

func TestZone_IsAdjacent(t *testing.T) {
	tests := []struct {
		name   string
		ax, ay uint8
		bx, by uint8
		want   bool
	}{
		{"east", 0, 0, 1, 0, true},
		{"south", 0, 0, 0, 1, true},
		{"diagonal", 0, 0, 1, 1, false},
		{"same", 2, 2, 2, 2, false},
		{"two apart", 0, 0, 2, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := NewZone(1, 0, tt.ax, tt.ay), NewZone(1, 1, tt.bx, tt.by)
			assert.Equal(t, tt.want, a.IsAdjacent(b))
			assert.Equal(t, tt.want, b.IsAdjacent(a))
		})
	}
}

func TestZone_GridAccessor(t *testing.T) {
	z := NewZone(1, 3, 0, 0)

	require.NoError(t, z.PlaceUnit(1, 2, ImmuneCell(3000, 80)))
	assert.Equal(t, uint16(1), z.UnitCount)
	assert.Error(t, z.PlaceUnit(1, 2, PathogenCell(3001, 40)), "occupied")
	assert.Error(t, z.PlaceUnit(16, 0, PathogenCell(3001, 40)), "out of bounds")
	assert.Error(t, z.PlaceUnit(0, 0, ObstacleCell()), "not a combatant")

	require.NoError(t, z.RelocateUnit(Position{1, 2}, Position{5, 5}))
	c, ok := z.Cell(5, 5)
	require.True(t, ok)
	assert.Equal(t, uint32(3000), c.UnitID)
	assert.Equal(t, uint16(1), z.UnitCount)

	z.SetUnitHealth(5, 5, 12)
	c, _ = z.Cell(5, 5)
	assert.Equal(t, uint16(12), c.Health)

	assert.Error(t, z.SetTerrain(5, 5, ObstacleCell()))
	require.NoError(t, z.SetTerrain(0, 0, ResourceCell(ResourceEnergy, 25)))
	assert.Equal(t, []Position{{0, 0}, {5, 5}}, z.OccupiedCells())

	require.NoError(t, z.RemoveUnit(5, 5))
	assert.Equal(t, uint16(0), z.UnitCount)
	assert.Error(t, z.RemoveUnit(0, 0))

	_, ok = z.Cell(0, 16)
	assert.False(t, ok)
}

func TestZone_Replenish(t *testing.T) {
	z := NewZone(1, 0, 0, 0)
	z.Energy, z.StemCells = 995, 99

	z.Replenish(ZoneCirculatory.Yield())

	assert.Equal(t, uint32(1000), z.Energy)
	assert.Equal(t, uint32(55), z.Antibodies)
	assert.Equal(t, uint32(100), z.StemCells)
	assert.Equal(t, uint32(83), z.Nutrients)
}

func TestGame_Levels(t *testing.T) {
	g := NewGame(1)

	g.UpdateInfectionLevel(100)
	assert.Equal(t, uint8(100), g.InfectionLevel)
	g.UpdateImmuneResponseLevel(-50)
	assert.Equal(t, uint8(0), g.ImmuneResponseLevel)
	g.UpdateImmuneResponseLevel(7)
	assert.Equal(t, uint8(7), g.ImmuneResponseLevel)
}

func TestGame_TurnsAndSeats(t *testing.T) {
	g := NewGame(1)
	g.Player1, g.Player2 = OwnedBy("a"), OwnedBy("b")
	g.State = StateActive

	assert.True(t, g.IsPlayerTurn("a"))
	assert.False(t, g.IsPlayerTurn("b"))
	assert.False(t, g.IsPlayerTurn(""))
	opp, ok := g.Opponent("a")
	require.True(t, ok)
	assert.True(t, opp.Is("b"))
	_, ok = g.Opponent("c")
	assert.False(t, ok)

	g.SwitchTurn()
	assert.Equal(t, uint8(2), g.CurrentTurn)
	assert.Equal(t, uint32(1), g.TurnNumber)
	assert.True(t, g.CurrentPlayer().Is("b"))

	g.EndGame(WinnerInfection)
	assert.True(t, g.IsFinished())
	assert.False(t, g.Winner.IsSet())
	assert.Equal(t, "Infection", g.Result.String())
}

func TestGame_LatticeZoneID(t *testing.T) {
	g := NewGame(1)
	assert.Equal(t, uint32(0), g.LatticeZoneID(0, 0))
	assert.Equal(t, uint32(10), g.LatticeZoneID(2, 2))
	assert.Equal(t, uint32(15), g.LatticeZoneID(3, 3))
}

func TestOwner(t *testing.T) {
	var unset Owner
	assert.False(t, unset.IsSet())
	assert.False(t, unset.Is(""))
	assert.Equal(t, Unowned(), unset)

	data, err := json.Marshal(struct {
		A Owner `json:"a"`
		B Owner `json:"b"`
	}{A: OwnedBy("x")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"x","b":null}`, string(data))

	var got struct {
		A Owner `json:"a"`
		B Owner `json:"b"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, got.A.Is("x"))
	assert.False(t, got.B.IsSet())
}

func TestUnitTable(t *testing.T) {
	u := NewUnit(UnitMacrophage)
	assert.Equal(t, uint16(120), u.Health)
	assert.Equal(t, uint16(120), u.MaxHealth)
	assert.Equal(t, uint8(2), u.MovementRange)
	require.NotNil(t, u.Ability(0))
	assert.Equal(t, AbilityPhagocytosis, *u.Ability(0))
	assert.Nil(t, u.Ability(2))
	assert.Nil(t, u.Ability(3))

	assert.True(t, UnitNaturalKiller.IsImmuneCell())
	assert.True(t, UnitVirus.IsPathogen())
	assert.False(t, UnitType(12).IsPathogen())
	assert.Equal(t, CellPathogen, UnitCell(UnitToxin, 1, 30).Kind)

	p := NewPlayer(1)
	assert.True(t, p.IsUnitUnlocked(int(UnitTCell)))
	assert.False(t, p.IsUnitUnlocked(-1))
	assert.False(t, p.IsUnitUnlocked(UnitTypeCount))
}
