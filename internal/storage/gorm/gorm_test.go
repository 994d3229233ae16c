package gormstorage

import (
	"testing"
	"time"

	"github.com/biocommander/engine/internal/database"
	"github.com/biocommander/engine/internal/model"
	"github.com/biocommander/engine/internal/storage"
	"github.com/biocommander/engine/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore returns a migrated store over a private in-memory sqlite database.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.GetSqliteDBStandalone("")
	require.NoError(t, err)
	s := New(db)
	require.NoError(t, s.Init())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func startMatch(t *testing.T, s *Store, id uint32) {
	t.Helper()
	g := core.NewGame(id)
	zones := []core.Zone{*core.NewZone(id, 0, 0, 0), *core.NewZone(id, 1, 1, 0)}
	require.NoError(t, s.StartMatch(&storage.Match{
		Game:      g,
		Scenario:  "default",
		Zones:     zones,
		StartTime: time.Now(),
	}))
}

func TestStartMatch(t *testing.T) {
	s := newTestStore(t)
	startMatch(t, s, 1)

	g, err := s.Game(1)
	require.NoError(t, err)
	assert.Equal(t, *core.NewGame(1), g)

	z, err := s.Zone(1, 0)
	require.NoError(t, err)
	assert.Equal(t, *core.NewZone(1, 0, 0, 0), z)

	assert.Error(t, s.StartMatch(&storage.Match{Game: core.NewGame(1)}), "duplicate game id")
}

func TestLookupsNotFound(t *testing.T) {
	s := newTestStore(t)
	startMatch(t, s, 1)

	_, err := s.Game(2)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.Player(1, "nobody")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.Players(2)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.Zone(1, 42)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.Unit(1, 7)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCommit(t *testing.T) {
	s := newTestStore(t)
	startMatch(t, s, 1)

	g := core.NewGame(1)
	g.Player1, g.Player2 = core.OwnedBy("alice"), core.OwnedBy("bob")
	g.State = core.StateActive
	p1 := core.NewPlayer(1)
	p1.Key = "alice"
	p2 := core.NewPlayer(1)
	p2.Key, p2.PlayerID, p2.Faction = "bob", 2, core.FactionPathogen
	z := core.NewZone(1, 0, 0, 0)
	z.Owner = core.OwnedBy("alice")
	require.NoError(t, z.PlaceUnit(2, 3, core.ImmuneCell(3, 80)))
	u := core.NewUnit(core.UnitTCell)
	u.GameID, u.UnitID, u.X, u.Y = 1, 3, 2, 3
	u.Owner = core.OwnedBy("alice")

	require.NoError(t, s.Commit(&storage.Changeset{
		Game:    g,
		Players: []core.Player{*p2, *p1},
		Zones:   []core.Zone{*z},
		Units:   []core.Unit{*u},
		Action:  core.ActionRecord{GameID: 1, Authority: "alice", Kind: core.ActionPlay, Accepted: true, Time: time.Now()},
	}))

	gotGame, err := s.Game(1)
	require.NoError(t, err)
	assert.Equal(t, *g, gotGame)

	players, err := s.Players(1)
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, *p1, players[0])
	assert.Equal(t, *p2, players[1])

	gotZone, err := s.Zone(1, 0)
	require.NoError(t, err)
	assert.Equal(t, *z, gotZone)

	gotUnit, err := s.Unit(1, 3)
	require.NoError(t, err)
	assert.Equal(t, *u, gotUnit)

	// second commit updates in place and removes the unit
	p1.Reserves.Energy = 10
	require.NoError(t, s.Commit(&storage.Changeset{
		Players:        []core.Player{*p1},
		RemovedUnitIDs: []uint32{3},
		Action:         core.ActionRecord{GameID: 1, Authority: "alice", Kind: core.ActionPlay, Accepted: true, Time: time.Now()},
	}))
	got, err := s.Player(1, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(10), got.Reserves.Energy)
	_, err = s.Unit(1, 3)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	actions, err := s.Actions(1)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.NotEmpty(t, actions[0].ID, "missing ids are assigned")
}

func TestCommitKeepsScenarioAndStartTime(t *testing.T) {
	s := newTestStore(t)
	startMatch(t, s, 1)

	g := core.NewGame(1)
	g.TurnNumber = 4
	require.NoError(t, s.Commit(&storage.Changeset{Game: g, Action: core.ActionRecord{GameID: 1}}))

	var scenario string
	require.NoError(t, s.DB().Table("games").Select("scenario").Where("game_id = ?", 1).Scan(&scenario).Error)
	assert.Equal(t, "default", scenario)
}

func TestEndMatch(t *testing.T) {
	s := newTestStore(t)
	startMatch(t, s, 1)
	startMatch(t, s, 2)

	n, err := s.ActiveMatches()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	g := core.NewGame(2)
	g.EndGame(core.WinnerPlayer2)
	require.NoError(t, s.EndMatch(g))

	got, err := s.Game(2)
	require.NoError(t, err)
	assert.True(t, got.IsFinished())
	assert.Equal(t, core.WinnerPlayer2, got.Result)

	n, err = s.ActiveMatches()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.ErrorIs(t, s.EndMatch(core.NewGame(9)), storage.ErrNotFound)
}

func TestNextGameID(t *testing.T) {
	s := newTestStore(t)

	id, err := s.NextGameID()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), id)

	startMatch(t, s, 7)
	id, err = s.NextGameID()
	require.NoError(t, err)
	assert.Equal(t, uint32(8), id)
}

func TestCommitPersistsMapDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint8
		total         uint32
	}{
		{"grown", 4, 5, 17},
		{"full", 5, 5, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			startMatch(t, s, 1)

			g := core.NewGame(1)
			g.MapWidth, g.MapHeight, g.TotalZones = tt.width, tt.height, tt.total
			require.NoError(t, s.Commit(&storage.Changeset{Game: g, Action: core.ActionRecord{GameID: 1}}))

			got, err := s.Game(1)
			require.NoError(t, err)
			assert.Equal(t, tt.width, got.MapWidth)
			assert.Equal(t, tt.height, got.MapHeight)
			assert.Equal(t, tt.total, got.TotalZones)
		})
	}
}

func TestMatchTimesRoundTrip(t *testing.T) {
	s := newTestStore(t)
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.StartMatch(&storage.Match{Game: core.NewGame(1), Scenario: "default", StartTime: start}))

	var row model.Game
	require.NoError(t, s.DB().First(&row, 1).Error)
	assert.True(t, start.Equal(row.StartTime), row.StartTime)
	assert.False(t, row.EndTime.Valid)

	g := core.NewGame(1)
	g.EndGame(core.WinnerPlayer1)
	require.NoError(t, s.EndMatch(g))

	require.NoError(t, s.DB().First(&row, 1).Error)
	assert.True(t, start.Equal(row.StartTime), row.StartTime)
	require.True(t, row.EndTime.Valid)
	assert.False(t, row.EndTime.Time.Before(start))
}
