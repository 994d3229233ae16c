// internal/storage/memory/memory.go
package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/biocommander/engine/internal/config"
	"github.com/biocommander/engine/internal/storage"
	"github.com/biocommander/engine/pkg/core"
)

// MatchRecord groups a match with every entity and action recorded for it
type MatchRecord struct {
	Scenario  string
	StartTime time.Time
	EndTime   time.Time

	Game    core.Game
	Players map[core.Identity]core.Player // keyed by authority
	Zones   map[uint32]core.Zone
	Units   map[uint32]core.Unit
	Actions []core.ActionRecord

	exportPath string
}

// Backend keeps matches in memory and exports each one to JSON when it ends
type Backend struct {
	cfg     config.MemoryConfig
	matches map[uint32]*MatchRecord
	mu      sync.RWMutex
}

var _ storage.Store = (*Backend)(nil)
var _ storage.Uploadable = (*Backend)(nil)

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:     cfg,
		matches: make(map[uint32]*MatchRecord),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartMatch begins recording a new match
func (b *Backend) StartMatch(m *storage.Match) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := m.Game.GameID
	if _, ok := b.matches[id]; ok {
		return fmt.Errorf("match %d already exists", id)
	}

	rec := &MatchRecord{
		Scenario:  m.Scenario,
		StartTime: m.StartTime,
		Game:      *m.Game,
		Players:   make(map[core.Identity]core.Player),
		Zones:     make(map[uint32]core.Zone, len(m.Zones)),
		Units:     make(map[uint32]core.Unit),
	}
	for _, z := range m.Zones {
		rec.Zones[z.ZoneID] = z
	}
	b.matches[id] = rec
	return nil
}

// EndMatch finalizes and exports the match data
func (b *Backend) EndMatch(game *core.Game) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.matches[game.GameID]
	if !ok {
		return fmt.Errorf("match %d: %w", game.GameID, storage.ErrNotFound)
	}
	rec.Game = *game
	rec.EndTime = time.Now()

	return b.exportJSON(rec)
}

// Commit applies a changeset. Rejected actions only append to the history.
func (b *Backend) Commit(cs *storage.Changeset) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.matches[cs.GameID()]
	if !ok {
		return fmt.Errorf("match %d: %w", cs.GameID(), storage.ErrNotFound)
	}

	if cs.Game != nil {
		rec.Game = *cs.Game
	}
	for _, p := range cs.Players {
		rec.Players[p.Key] = p
	}
	for _, z := range cs.Zones {
		rec.Zones[z.ZoneID] = z
	}
	for _, u := range cs.Units {
		rec.Units[u.UnitID] = u
	}
	for _, id := range cs.RemovedUnitIDs {
		delete(rec.Units, id)
	}
	rec.Actions = append(rec.Actions, cs.Action)
	return nil
}

// Game returns the stored game
func (b *Backend) Game(gameID uint32) (core.Game, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.matches[gameID]
	if !ok {
		return core.Game{}, storage.ErrNotFound
	}
	return rec.Game, nil
}

// Player returns the player seated by key
func (b *Backend) Player(gameID uint32, key core.Identity) (core.Player, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.matches[gameID]
	if !ok {
		return core.Player{}, storage.ErrNotFound
	}
	p, ok := rec.Players[key]
	if !ok {
		return core.Player{}, storage.ErrNotFound
	}
	return p, nil
}

// Players returns the seated players ordered by seat
func (b *Backend) Players(gameID uint32) ([]core.Player, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.matches[gameID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	players := make([]core.Player, 0, len(rec.Players))
	for _, p := range rec.Players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].PlayerID < players[j].PlayerID })
	return players, nil
}

// Zone returns one zone of the lattice
func (b *Backend) Zone(gameID, zoneID uint32) (core.Zone, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.matches[gameID]
	if !ok {
		return core.Zone{}, storage.ErrNotFound
	}
	z, ok := rec.Zones[zoneID]
	if !ok {
		return core.Zone{}, storage.ErrNotFound
	}
	return z, nil
}

// Unit returns a live unit
func (b *Backend) Unit(gameID, unitID uint32) (core.Unit, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.matches[gameID]
	if !ok {
		return core.Unit{}, storage.ErrNotFound
	}
	u, ok := rec.Units[unitID]
	if !ok {
		return core.Unit{}, storage.ErrNotFound
	}
	return u, nil
}

// NextGameID returns one past the highest match id seen
func (b *Backend) NextGameID() (uint32, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var max uint32
	for id := range b.matches {
		if id > max {
			max = id
		}
	}
	return max + 1, nil
}

// Actions returns a copy of a match's action history
func (b *Backend) Actions(gameID uint32) []core.ActionRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.matches[gameID]
	if !ok {
		return nil
	}
	out := make([]core.ActionRecord, len(rec.Actions))
	copy(out, rec.Actions)
	return out
}

// ActiveMatches counts matches that have not finished.
func (b *Backend) ActiveMatches() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for _, rec := range b.matches {
		if !rec.Game.IsFinished() {
			n++
		}
	}
	return n
}

// ExportedFilePath returns the path written by the last EndMatch of gameID
func (b *Backend) ExportedFilePath(gameID uint32) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if rec, ok := b.matches[gameID]; ok {
		return rec.exportPath
	}
	return ""
}

// ExportMetadata describes an exported match for upload
func (b *Backend) ExportMetadata(gameID uint32) core.UploadMetadata {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.matches[gameID]
	if !ok {
		return core.UploadMetadata{GameID: gameID}
	}
	var duration float64
	if !rec.EndTime.IsZero() {
		duration = rec.EndTime.Sub(rec.StartTime).Seconds()
	}
	return core.UploadMetadata{
		GameID:        gameID,
		Scenario:      rec.Scenario,
		MatchDuration: duration,
		Result:        rec.Game.Result.String(),
	}
}
