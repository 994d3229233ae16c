// internal/storage/storage.go
package storage

import (
	"errors"
	"time"

	"github.com/biocommander/engine/pkg/core"
)

// ErrNotFound is returned by Reader lookups for entities that do not exist.
var ErrNotFound = errors.New("not found")

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Match management
	StartMatch(m *Match) error
	EndMatch(game *core.Game) error

	// Commit persists the entities touched by one action, together with the
	// action record, as a single unit.
	Commit(cs *Changeset) error
}

// Reader loads entities of a match.
type Reader interface {
	Game(gameID uint32) (core.Game, error)
	Player(gameID uint32, key core.Identity) (core.Player, error)
	Players(gameID uint32) ([]core.Player, error)
	Zone(gameID, zoneID uint32) (core.Zone, error)
	Unit(gameID, unitID uint32) (core.Unit, error)
	// NextGameID returns an id no existing match uses.
	NextGameID() (uint32, error)
}

// Store is a backend the worker can both load from and commit to.
type Store interface {
	Backend
	Reader
}

// Match is a newly created game together with its zone lattice.
type Match struct {
	Game      *core.Game
	Scenario  string
	Zones     []core.Zone
	StartTime time.Time
}

// Changeset is the post-action state of every entity an action touched.
// A rejected action carries only its record.
type Changeset struct {
	Game           *core.Game
	Players        []core.Player
	Zones          []core.Zone
	Units          []core.Unit
	RemovedUnitIDs []uint32
	Action         core.ActionRecord
}

// GameID returns the match the changeset belongs to.
func (cs *Changeset) GameID() uint32 {
	if cs.Game != nil {
		return cs.Game.GameID
	}
	return cs.Action.GameID
}

// Empty reports whether the changeset mutates no entity.
func (cs *Changeset) Empty() bool {
	return cs.Game == nil && len(cs.Players) == 0 && len(cs.Zones) == 0 &&
		len(cs.Units) == 0 && len(cs.RemovedUnitIDs) == 0
}

// Uploadable is an optional interface for storage backends that produce
// files suitable for upload to the web frontend.
type Uploadable interface {
	ExportedFilePath(gameID uint32) string
	ExportMetadata(gameID uint32) core.UploadMetadata
}
