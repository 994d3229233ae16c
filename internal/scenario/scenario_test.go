package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/biocommander/engine/pkg/core"
	"github.com/biocommander/engine/pkg/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenarios(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Builtin(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"bloodstream", "default", "lymph-node"}, c.Names())

	_, err = c.Get("missing")
	assert.Error(t, err)
}

func TestBuild_DefaultLattice(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	s, err := c.Get("default")
	require.NoError(t, err)

	game, zones, err := s.Build(7)
	require.NoError(t, err)

	assert.Equal(t, uint32(7), game.GameID)
	assert.Equal(t, uint32(16), game.TotalZones)
	assert.Equal(t, uint64(300), game.TurnTimeLimit)
	require.Len(t, zones, 16)

	for i, z := range zones {
		assert.Equal(t, uint32(i), z.ZoneID)
		assert.Equal(t, uint32(7), z.GameID)
		assert.Equal(t, game.LatticeZoneID(z.X, z.Y), z.ZoneID)
		assert.Equal(t, core.ZoneTissue, z.Type)
		assert.False(t, z.Owner.IsSet())
	}

	corner := zones[0]
	assert.True(t, corner.IsBorderZone)
	assert.Nil(t, corner.Neighbors[core.North])
	assert.Nil(t, corner.Neighbors[core.West])
	require.NotNil(t, corner.Neighbors[core.East])
	assert.Equal(t, uint32(1), *corner.Neighbors[core.East])
	require.NotNil(t, corner.Neighbors[core.South])
	assert.Equal(t, uint32(4), *corner.Neighbors[core.South])

	inner := zones[5]
	assert.False(t, inner.IsBorderZone)
	for d := core.North; d <= core.West; d++ {
		assert.NotNil(t, inner.Neighbors[d])
	}

	// both starting zones exist on the lattice
	for _, seat := range []uint8{1, 2} {
		assert.Less(t, rules.StartingZoneID(game, seat), game.TotalZones)
	}
}

func TestBuild_Overrides(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	s, err := c.Get("bloodstream")
	require.NoError(t, err)

	game, zones, err := s.Build(1)
	require.NoError(t, err)

	assert.Equal(t, core.ZoneCirculatory, zones[game.LatticeZoneID(2, 0)].Type)

	organ := zones[game.LatticeZoneID(0, 3)]
	assert.Equal(t, core.ZoneOrgan, organ.Type)
	assert.Equal(t, uint32(300), organ.Energy)
	assert.Equal(t, uint32(20), organ.StemCells)
	cell, ok := organ.Cell(8, 8)
	require.True(t, ok)
	assert.Equal(t, core.ResourceCell(core.ResourceStemCells, 25), cell)

	barrier := zones[game.LatticeZoneID(3, 3)]
	assert.Equal(t, core.ZoneBarrier, barrier.Type)
	assert.Len(t, barrier.OccupiedCells(), 4)
	assert.Equal(t, uint16(0), barrier.UnitCount)
}

func TestLoad_FileExtendsBuiltin(t *testing.T) {
	path := writeScenarios(t, `
scenarios:
  default:
    width: 8
    height: 8
  skirmish:
    width: 2
    height: 1
    zones:
      - x: 1
        y: 0
        type: organ
        border: false
        resources: {energy: 5000, antibodies: 1, stemCells: 500, nutrients: 2}
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Contains(t, c.Names(), "skirmish")
	assert.Contains(t, c.Names(), "bloodstream")

	def, err := c.Get("default")
	require.NoError(t, err)
	assert.Equal(t, uint8(8), def.Width)

	s, err := c.Get("skirmish")
	require.NoError(t, err)
	game, zones, err := s.Build(2)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), game.TotalZones)
	assert.Equal(t, core.ZoneOrgan, zones[1].Type)
	assert.False(t, zones[1].IsBorderZone)
	assert.Equal(t, uint32(core.ZoneResourceCap), zones[1].Energy, "capped")
	assert.Equal(t, uint32(core.ZoneStemCellsCap), zones[1].StemCells, "capped")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"too small", "scenarios:\n  x: {width: 1, height: 1}\n"},
		{"too many zones", "scenarios:\n  x: {width: 9, height: 8}\n"},
		{"zone outside map", "scenarios:\n  x:\n    width: 2\n    height: 2\n    zones: [{x: 2, y: 0}]\n"},
		{"unknown zone type", "scenarios:\n  x:\n    width: 2\n    height: 2\n    zones: [{x: 0, y: 0, type: Bone}]\n"},
		{"unknown resource", "scenarios:\n  x:\n    width: 2\n    height: 2\n    zones: [{x: 0, y: 0, deposits: [{x: 1, y: 1, resource: Gold}]}]\n"},
		{"obstacle off grid", "scenarios:\n  x:\n    width: 2\n    height: 2\n    zones: [{x: 0, y: 0, obstacles: [[16, 0]]}]\n"},
		{"empty entry", "scenarios:\n  x:\n"},
		{"not yaml", "scenarios: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeScenarios(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
