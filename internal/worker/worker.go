package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/biocommander/engine/internal/cache"
	"github.com/biocommander/engine/internal/influx"
	"github.com/biocommander/engine/internal/logging"
	"github.com/biocommander/engine/internal/parser"
	"github.com/biocommander/engine/internal/storage"
	"github.com/biocommander/engine/pkg/core"
	"github.com/biocommander/engine/pkg/rules"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/biocommander/engine/internal/worker"

// ErrMatchNotFound is returned for actions addressing a game that does not exist.
var ErrMatchNotFound = errors.New("match not found")

// ErrMatchEnded is returned for actions addressing a match the host has ended.
var ErrMatchEnded = errors.New("match ended")

// ErrZoneNotFound is returned for actions addressing a zone that does not exist.
var ErrZoneNotFound = errors.New("zone not found")

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	Store      storage.Store
	Cache      *cache.MatchCache
	Locks      *cache.MatchLocks
	LogManager *logging.SlogManager
	Parser     *parser.Parser

	// Sinks receive every committed changeset after the store, e.g. the
	// spectator stream. A failing sink is logged, never fatal.
	Sinks []storage.Backend
	// Influx is optional.
	Influx *influx.Manager
	// Now defaults to time.Now.
	Now func() time.Time
}

// Manager applies player actions: load from cache or store, run the rules
// engine, commit the result.
type Manager struct {
	deps   Dependencies
	tracer trace.Tracer

	applied  metric.Int64Counter
	rejected metric.Int64Counter
}

// NewManager creates a new worker manager. Metrics and spans use the global
// OTel providers (no-op if not configured).
func NewManager(deps Dependencies) (*Manager, error) {
	if deps.Cache == nil {
		deps.Cache = cache.NewMatchCache()
	}
	if deps.Locks == nil {
		deps.Locks = cache.NewMatchLocks()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	m := &Manager{
		deps:   deps,
		tracer: otel.Tracer(instrumentationName),
	}

	meter := otel.Meter(instrumentationName)
	var err error
	m.applied, err = meter.Int64Counter(
		"rules.actions.applied",
		metric.WithDescription("Actions accepted by the rules engine"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating applied counter: %w", err)
	}
	m.rejected, err = meter.Int64Counter(
		"rules.actions.rejected",
		metric.WithDescription("Actions rejected by the rules engine, by code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rejected counter: %w", err)
	}
	return m, nil
}

// Cache exposes the entity cache shared with the lifecycle handlers.
func (m *Manager) Cache() *cache.MatchCache {
	return m.deps.Cache
}

// Locks exposes the per-match locks shared with the lifecycle handlers.
func (m *Manager) Locks() *cache.MatchLocks {
	return m.deps.Locks
}

// Sinks returns the secondary backends committed changesets are published to.
func (m *Manager) Sinks() []storage.Backend {
	return m.deps.Sinks
}

func (m *Manager) game(id uint32) (core.Game, error) {
	if m.deps.Cache.Ended(id) {
		return core.Game{}, fmt.Errorf("%w: %d", ErrMatchEnded, id)
	}
	if g, ok := m.deps.Cache.GetGame(id); ok {
		return g, nil
	}
	g, err := m.deps.Store.Game(id)
	if errors.Is(err, storage.ErrNotFound) {
		return g, fmt.Errorf("%w: %d", ErrMatchNotFound, id)
	}
	if err != nil {
		return g, fmt.Errorf("load game %d: %w", id, err)
	}
	m.deps.Cache.PutGame(g)
	return g, nil
}

// player returns the record of key in game. A key with no record gets an
// empty player so the rules engine can report why it may not act.
func (m *Manager) player(gameID uint32, key core.Identity) (core.Player, error) {
	if p, ok := m.deps.Cache.GetPlayer(gameID, key); ok {
		return p, nil
	}
	p, err := m.deps.Store.Player(gameID, key)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Player{GameID: gameID}, nil
	}
	if err != nil {
		return p, fmt.Errorf("load player %s: %w", key, err)
	}
	m.deps.Cache.PutPlayer(p)
	return p, nil
}

func (m *Manager) zone(gameID, zoneID uint32) (core.Zone, error) {
	if z, ok := m.deps.Cache.GetZone(gameID, zoneID); ok {
		return z, nil
	}
	z, err := m.deps.Store.Zone(gameID, zoneID)
	if errors.Is(err, storage.ErrNotFound) {
		return z, fmt.Errorf("%w: %d", ErrZoneNotFound, zoneID)
	}
	if err != nil {
		return z, fmt.Errorf("load zone %d: %w", zoneID, err)
	}
	m.deps.Cache.PutZone(z)
	return z, nil
}

// unit returns nil when the unit does not exist.
func (m *Manager) unit(gameID, unitID uint32) (*core.Unit, error) {
	if u, ok := m.deps.Cache.GetUnit(gameID, unitID); ok {
		return &u, nil
	}
	u, err := m.deps.Store.Unit(gameID, unitID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load unit %d: %w", unitID, err)
	}
	m.deps.Cache.PutUnit(u)
	return &u, nil
}

// players returns both seats of a game, cache first.
func (m *Manager) players(game *core.Game) ([]core.Player, error) {
	var out []core.Player
	for _, seat := range []core.Owner{game.Player1, game.Player2} {
		key, ok := seat.Get()
		if !ok {
			continue
		}
		p, err := m.player(game.GameID, key)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// record builds the history entry of an action. err is the rules verdict.
func (m *Manager) record(kind core.ActionKind, authority core.Identity, args []string, game *core.Game, start time.Time, err error) core.ActionRecord {
	rec := core.ActionRecord{
		ID:         uuid.NewString(),
		GameID:     game.GameID,
		TurnNumber: game.TurnNumber,
		Authority:  authority,
		Kind:       kind,
		Args:       append([]string(nil), args...),
		Accepted:   err == nil,
		Code:       string(rules.CodeOf(err)),
		Time:       start,
		Duration:   m.deps.Now().Sub(start),
	}
	if err != nil && rec.Code == "" {
		rec.Code = "Unknown"
	}
	return rec
}

// stamp records the wall-clock time of a turn change on the game.
func (m *Manager) stamp(game *core.Game, before core.Game) {
	if game.TurnNumber != before.TurnNumber || game.State != before.State {
		game.LastTurnTimestamp = m.deps.Now().Unix()
	}
}

// commit persists a changeset, refreshes the cache and publishes it to the
// sinks, then reports metrics.
func (m *Manager) commit(ctx context.Context, cs *storage.Changeset) error {
	if err := m.deps.Store.Commit(cs); err != nil {
		return fmt.Errorf("commit %s action: %w", cs.Action.Kind, err)
	}

	c := m.deps.Cache
	if cs.Game != nil {
		c.PutGame(*cs.Game)
	}
	for _, p := range cs.Players {
		c.PutPlayer(p)
	}
	for _, z := range cs.Zones {
		c.PutZone(z)
	}
	for _, u := range cs.Units {
		c.PutUnit(u)
	}
	for _, id := range cs.RemovedUnitIDs {
		c.DeleteUnit(cs.GameID(), id)
	}

	for _, sink := range m.deps.Sinks {
		if err := sink.Commit(cs); err != nil {
			m.deps.LogManager.Logger().WarnContext(ctx, "Failed to publish action", "error", err)
		}
	}

	rec := cs.Action
	kind := attribute.String("kind", string(rec.Kind))
	if rec.Accepted {
		m.applied.Add(ctx, 1, metric.WithAttributes(kind))
	} else {
		m.rejected.Add(ctx, 1, metric.WithAttributes(kind, attribute.String("code", rec.Code)))
	}

	m.writePoints(ctx, cs)
	return nil
}

func (m *Manager) writePoints(ctx context.Context, cs *storage.Changeset) {
	ix := m.deps.Influx
	if ix == nil {
		return
	}
	bucket := ix.MatchBucket()
	if err := ix.WritePoint(ctx, bucket, influx.ActionPoint(cs.Action)); err != nil {
		m.deps.LogManager.Logger().DebugContext(ctx, "Failed to write action point", "error", err)
	}
	if cs.Game == nil {
		return
	}
	players, err := m.players(cs.Game)
	if err != nil {
		return
	}
	if err := ix.WritePoint(ctx, bucket, influx.GamePoint(cs.Game, players, cs.Action.Time)); err != nil {
		m.deps.LogManager.Logger().DebugContext(ctx, "Failed to write game point", "error", err)
	}
}

// span starts the trace span of one action.
func (m *Manager) span(kind core.ActionKind, gameID uint32, authority core.Identity) (context.Context, trace.Span) {
	ctx := logging.WithMatch(context.Background(), gameID, string(authority))
	return m.tracer.Start(ctx, "worker."+string(kind), trace.WithAttributes(
		attribute.Int64("game.id", int64(gameID)),
		attribute.String("authority", string(authority)),
	))
}
