package worker

import (
	"context"
	"fmt"

	"github.com/biocommander/engine/internal/dispatcher"
	"github.com/biocommander/engine/internal/influx"
	"github.com/biocommander/engine/internal/storage"
	"github.com/biocommander/engine/internal/util"
	"github.com/biocommander/engine/pkg/core"
	"github.com/biocommander/engine/pkg/rules"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ActionResult is the reply to an accepted action.
type ActionResult struct {
	Game    core.Game     `json:"game"`
	Player  core.Player   `json:"player"`
	Zones   []core.Zone   `json:"zones,omitempty"`
	Spawned *core.Unit    `json:"spawned,omitempty"`
	Damaged *rules.Damage `json:"damaged,omitempty"`
}

// StateResult is a snapshot of a match.
type StateResult struct {
	Game    core.Game     `json:"game"`
	Players []core.Player `json:"players"`
}

// RegisterHandlers registers the action commands with the dispatcher.
// Actions run synchronously so the host can answer each request.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher, metricBuffer int) {
	d.Register(":JOIN:", m.handleJoin, dispatcher.Logged())
	d.Register(":EXPAND:", m.handleExpand, dispatcher.Logged())
	d.Register(":PLAY:", m.handlePlay, dispatcher.Logged())
	d.Register(":STATE:", m.handleState)

	// Host metrics - buffered
	if m.deps.Influx != nil {
		d.Register(":METRIC:", m.handleMetric, dispatcher.Buffered(metricBuffer), dispatcher.Logged())
	}
}

func (m *Manager) handleJoin(e dispatcher.Event) (any, error) {
	cmd, err := m.deps.Parser.ParseJoin(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse join: %w", err)
	}
	authority := core.Identity(e.Authority)
	ctx, span := m.span(core.ActionJoin, cmd.GameID, authority)
	defer span.End()

	unlock := m.deps.Locks.Lock(cmd.GameID)
	defer unlock()

	start := m.deps.Now()
	game, err := m.game(cmd.GameID)
	if err != nil {
		return nil, err
	}
	before := game

	var zone *core.Zone
	if seat := rules.NextSeat(&game); cmd.StartingZone && seat != 0 {
		z, err := m.zone(game.GameID, rules.StartingZoneID(&game, seat))
		if err != nil {
			return nil, err
		}
		zone = &z
	}

	player := core.NewPlayer(game.GameID)
	verdict := rules.Join(authority, &game, player, zone, cmd.Args)

	cs := &storage.Changeset{}
	if verdict == nil {
		m.stamp(&game, before)
		cs.Game = &game
		cs.Players = []core.Player{*player}
		if zone != nil {
			cs.Zones = []core.Zone{*zone}
		}
	}
	cs.Action = m.record(core.ActionJoin, authority, e.Args, &game, start, verdict)
	return m.finish(ctx, span, cs, verdict, func() any {
		return ActionResult{Game: game, Player: *player, Zones: cs.Zones}
	})
}

func (m *Manager) handleExpand(e dispatcher.Event) (any, error) {
	cmd, err := m.deps.Parser.ParseExpand(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse expand: %w", err)
	}
	authority := core.Identity(e.Authority)
	ctx, span := m.span(core.ActionExpand, cmd.GameID, authority)
	defer span.End()

	unlock := m.deps.Locks.Lock(cmd.GameID)
	defer unlock()

	start := m.deps.Now()
	game, err := m.game(cmd.GameID)
	if err != nil {
		return nil, err
	}
	before := game
	player, err := m.player(game.GameID, authority)
	if err != nil {
		return nil, err
	}

	var source *core.Zone
	var target core.Zone
	if rules.Expansion(cmd.Args.Expansion) == rules.CreateNewZone {
		target = newLatticeZone(&game)
	} else {
		z, err := m.zone(game.GameID, cmd.SourceZoneID)
		if err != nil {
			return nil, err
		}
		source = &z
		if target, err = m.zone(game.GameID, cmd.TargetZoneID); err != nil {
			return nil, err
		}
	}

	verdict := rules.ExpandZone(authority, &game, &player, source, &target, cmd.Args)

	cs := &storage.Changeset{}
	if verdict == nil {
		m.stamp(&game, before)
		cs.Game = &game
		cs.Players = []core.Player{player}
		if source != nil {
			cs.Zones = append(cs.Zones, *source)
		}
		cs.Zones = append(cs.Zones, target)
	}
	cs.Action = m.record(core.ActionExpand, authority, e.Args, &game, start, verdict)
	return m.finish(ctx, span, cs, verdict, func() any {
		return ActionResult{Game: game, Player: player, Zones: cs.Zones}
	})
}

func (m *Manager) handlePlay(e dispatcher.Event) (any, error) {
	cmd, err := m.deps.Parser.ParsePlay(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse play: %w", err)
	}
	authority := core.Identity(e.Authority)
	ctx, span := m.span(core.ActionPlay, cmd.GameID, authority)
	defer span.End()

	unlock := m.deps.Locks.Lock(cmd.GameID)
	defer unlock()

	start := m.deps.Now()
	game, err := m.game(cmd.GameID)
	if err != nil {
		return nil, err
	}
	before := game
	player, err := m.player(game.GameID, authority)
	if err != nil {
		return nil, err
	}
	zone, err := m.zone(game.GameID, cmd.ZoneID)
	if err != nil {
		return nil, err
	}
	var unit *core.Unit
	if cmd.UnitID != nil {
		if unit, err = m.unit(game.GameID, *cmd.UnitID); err != nil {
			return nil, err
		}
	}

	out, verdict := rules.Play(authority, &game, &player, &zone, unit, cmd.Args)

	cs := &storage.Changeset{}
	if verdict == nil {
		m.stamp(&game, before)
		cs.Game = &game
		cs.Players = []core.Player{player}
		cs.Zones = []core.Zone{zone}
		if unit != nil {
			cs.Units = append(cs.Units, *unit)
		}
		if out.Spawned != nil {
			cs.Units = append(cs.Units, *out.Spawned)
		}
		if err := m.applyDamage(cs, unit, out.Damaged); err != nil {
			return nil, err
		}
	}
	cs.Action = m.record(core.ActionPlay, authority, e.Args, &game, start, verdict)
	return m.finish(ctx, span, cs, verdict, func() any {
		return ActionResult{Game: game, Player: player, Zones: cs.Zones, Spawned: out.Spawned, Damaged: out.Damaged}
	})
}

// newLatticeZone is the blank zone a CreateNewZone expansion fills in. It
// continues the row-major lattice so its id stays y*width + x.
func newLatticeZone(game *core.Game) core.Zone {
	id := game.TotalZones
	w := uint32(game.MapWidth)
	if w == 0 {
		w = core.DefaultMapWidth
	}
	return *core.NewZone(game.GameID, id, uint8(id%w), uint8(id/w))
}

// applyDamage adds the attacked unit's new state to cs. The grid already
// reflects the hit; the unit record follows it.
func (m *Manager) applyDamage(cs *storage.Changeset, actor *core.Unit, d *rules.Damage) error {
	if d == nil {
		return nil
	}
	if d.Destroyed {
		cs.RemovedUnitIDs = append(cs.RemovedUnitIDs, d.UnitID)
		for i, u := range cs.Units {
			if u.UnitID == d.UnitID {
				cs.Units = append(cs.Units[:i], cs.Units[i+1:]...)
				break
			}
		}
		return nil
	}
	if actor != nil && actor.UnitID == d.UnitID {
		cs.Units[0].Health = d.Health
		return nil
	}
	target, err := m.unit(cs.GameID(), d.UnitID)
	if err != nil || target == nil {
		return err
	}
	target.Health = d.Health
	cs.Units = append(cs.Units, *target)
	return nil
}

// finish commits cs and turns the rules verdict into the handler reply.
func (m *Manager) finish(ctx context.Context, span trace.Span, cs *storage.Changeset, verdict error, result func() any) (any, error) {
	if err := m.commit(ctx, cs); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if verdict != nil {
		span.SetStatus(codes.Error, cs.Action.Code)
		m.deps.LogManager.Logger().DebugContext(ctx, "Action rejected", "kind", cs.Action.Kind, "code", cs.Action.Code)
		return nil, verdict
	}
	if cs.Game != nil && cs.Game.IsFinished() {
		m.deps.LogManager.Logger().InfoContext(ctx, "Match decided",
			"result", cs.Game.Result.String(), "winner", cs.Game.Winner.String())
	}
	return result(), nil
}

func (m *Manager) handleState(e dispatcher.Event) (any, error) {
	ref, err := m.deps.Parser.ParseGameRef(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse state: %w", err)
	}
	unlock := m.deps.Locks.Lock(ref.GameID)
	defer unlock()

	game, err := m.game(ref.GameID)
	if err != nil {
		return nil, err
	}
	players, err := m.players(&game)
	if err != nil {
		return nil, err
	}
	return StateResult{Game: game, Players: players}, nil
}

func (m *Manager) handleMetric(e dispatcher.Event) (any, error) {
	bucket, point, err := influx.ProcessMetricData(e.Args, util.FixEscapeQuotes, util.TrimQuotes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse metric: %w", err)
	}
	if err := m.deps.Influx.WritePoint(context.Background(), bucket, point); err != nil {
		return nil, fmt.Errorf("failed to write metric: %w", err)
	}
	return nil, nil
}
