package handlers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/biocommander/engine/internal/cache"
	"github.com/biocommander/engine/internal/dispatcher"
	"github.com/biocommander/engine/internal/logging"
	"github.com/biocommander/engine/internal/parser"
	"github.com/biocommander/engine/internal/scenario"
	"github.com/biocommander/engine/internal/storage"
	"github.com/biocommander/engine/pkg/core"
)

// ErrMatchNotFound is returned when a lifecycle command names an unknown match.
var ErrMatchNotFound = errors.New("match not found")

// ErrMatchEnded is returned when ending a match a second time.
var ErrMatchEnded = errors.New("match already ended")

// Uploader sends an exported match file to the web frontend.
type Uploader interface {
	Upload(filePath string, meta core.UploadMetadata) error
}

// Telemetry is flushed when a match ends.
type Telemetry interface {
	Flush(ctx context.Context) error
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Store      storage.Store
	Sinks      []storage.Backend
	Scenarios  *scenario.Catalog
	Parser     *parser.Parser
	Cache      *cache.MatchCache
	Locks      *cache.MatchLocks
	LogManager *logging.SlogManager

	// Uploader is optional. When set, matches exported by an Uploadable
	// store are uploaded on :END:MATCH:.
	Uploader  Uploader
	UploadTag string

	// Telemetry is optional.
	Telemetry Telemetry

	// DefaultTurnTimeLimit applies when neither the command nor the scenario
	// sets one.
	DefaultTurnTimeLimit uint64

	EngineVersion string
	BuildDate     string
	StorageType   string

	Now func() time.Time
}

// MatchInfo is the reply to :NEW:MATCH:.
type MatchInfo struct {
	GameID        uint32 `json:"gameId"`
	Scenario      string `json:"scenario"`
	MapWidth      uint8  `json:"mapWidth"`
	MapHeight     uint8  `json:"mapHeight"`
	TotalZones    uint32 `json:"totalZones"`
	TurnTimeLimit uint64 `json:"turnTimeLimit"`
	State         string `json:"state"`
}

// VersionInfo is the reply to :VERSION:.
type VersionInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"buildDate"`
}

// StatusInfo is the reply to :STATUS:.
type StatusInfo struct {
	Version       string   `json:"version"`
	Storage       string   `json:"storage"`
	ActiveMatches int      `json:"activeMatches"`
	Scenarios     []string `json:"scenarios"`
	Commands      []string `json:"commands"`
}

type matchInfo struct {
	scenario string
	started  time.Time
}

// Service handles match lifecycle commands.
type Service struct {
	deps         Dependencies
	writeLogFunc func(functionName, data, level string)

	// createMu serialises id allocation.
	createMu sync.Mutex

	mu      sync.RWMutex
	matches map[uint32]matchInfo
	active  cache.SafeCounter

	dispatcher *dispatcher.Dispatcher
}

// NewService creates a new handler service
func NewService(deps Dependencies) *Service {
	if deps.Cache == nil {
		deps.Cache = cache.NewMatchCache()
	}
	if deps.Locks == nil {
		deps.Locks = cache.NewMatchLocks()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	s := &Service{
		deps:    deps,
		matches: make(map[uint32]matchInfo),
	}
	s.writeLogFunc = func(functionName, data, level string) {
		if deps.LogManager != nil {
			deps.LogManager.WriteLog(functionName, data, level)
		}
	}
	return s
}

func (s *Service) writeLog(functionName, data, level string) {
	s.writeLogFunc(functionName, data, level)
}

// ActiveMatches returns the number of matches opened and not yet ended by
// this service.
func (s *Service) ActiveMatches() int {
	return s.active.Value()
}

// RegisterHandlers registers the lifecycle commands with the dispatcher.
func (s *Service) RegisterHandlers(d *dispatcher.Dispatcher) {
	s.dispatcher = d

	d.Register(":NEW:MATCH:", func(e dispatcher.Event) (any, error) {
		cmd, err := s.deps.Parser.ParseNewMatch(e.Args)
		if err != nil {
			return nil, fmt.Errorf("failed to parse new match: %w", err)
		}
		return s.NewMatch(cmd)
	}, dispatcher.Logged())

	d.Register(":END:MATCH:", func(e dispatcher.Event) (any, error) {
		ref, err := s.deps.Parser.ParseGameRef(e.Args)
		if err != nil {
			return nil, fmt.Errorf("failed to parse end match: %w", err)
		}
		return s.EndMatch(ref.GameID)
	}, dispatcher.Logged())

	d.Register(":VERSION:", func(e dispatcher.Event) (any, error) {
		return s.Version(), nil
	})

	d.Register(":STATUS:", func(e dispatcher.Event) (any, error) {
		return s.Status(), nil
	})
}

// NewMatch creates a game and its zone lattice from a scenario and starts it
// in the store and every sink.
func (s *Service) NewMatch(cmd parser.NewMatchCommand) (MatchInfo, error) {
	functionName := ":NEW:MATCH:"

	sc, err := s.deps.Scenarios.Get(cmd.Scenario)
	if err != nil {
		s.writeLog(functionName, fmt.Sprintf(`Error loading scenario: %v`, err), "ERROR")
		return MatchInfo{}, err
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	gameID, err := s.deps.Store.NextGameID()
	if err != nil {
		s.writeLog(functionName, fmt.Sprintf(`Error allocating game id: %v`, err), "ERROR")
		return MatchInfo{}, fmt.Errorf("allocate game id: %w", err)
	}

	game, zones, err := sc.Build(gameID)
	if err != nil {
		s.writeLog(functionName, fmt.Sprintf(`Error building scenario: %v`, err), "ERROR")
		return MatchInfo{}, err
	}
	switch {
	case cmd.TurnTimeLimit > 0:
		game.TurnTimeLimit = cmd.TurnTimeLimit
	case sc.TurnTimeLimit == 0 && s.deps.DefaultTurnTimeLimit > 0:
		game.TurnTimeLimit = s.deps.DefaultTurnTimeLimit
	}

	now := s.deps.Now()
	game.LastTurnTimestamp = now.Unix()
	match := &storage.Match{
		Game:      game,
		Scenario:  sc.Name,
		Zones:     zones,
		StartTime: now,
	}
	if err := s.deps.Store.StartMatch(match); err != nil {
		s.writeLog(functionName, fmt.Sprintf(`Error starting match in storage: %v`, err), "ERROR")
		return MatchInfo{}, fmt.Errorf("start match %d: %w", gameID, err)
	}

	logger := s.deps.LogManager.Logger()
	for _, sink := range s.deps.Sinks {
		if err := sink.StartMatch(match); err != nil {
			logger.Warn("Failed to start match in sink", "gameID", gameID, "error", err)
		}
	}

	s.deps.Cache.PutGame(*game)
	s.mu.Lock()
	s.matches[gameID] = matchInfo{scenario: sc.Name, started: now}
	s.mu.Unlock()
	s.active.Inc()

	s.writeLog(functionName, fmt.Sprintf(`New match %d on scenario %s`, gameID, sc.Name), "INFO")
	logger.Debug("Match data",
		"gameID", gameID,
		"mapWidth", game.MapWidth,
		"mapHeight", game.MapHeight,
		"totalZones", game.TotalZones,
		"turnTimeLimit", game.TurnTimeLimit)

	return MatchInfo{
		GameID:        gameID,
		Scenario:      sc.Name,
		MapWidth:      game.MapWidth,
		MapHeight:     game.MapHeight,
		TotalZones:    game.TotalZones,
		TurnTimeLimit: game.TurnTimeLimit,
		State:         game.State.String(),
	}, nil
}

// EndMatch closes a match in the store and every sink, drops it from the
// cache and uploads the export when the store produced one. An undecided
// match is closed in whatever state it is in.
func (s *Service) EndMatch(gameID uint32) (core.MatchSummary, error) {
	functionName := ":END:MATCH:"
	logger := s.deps.LogManager.Logger()

	unlock := s.deps.Locks.Lock(gameID)
	defer unlock()

	if s.deps.Cache.Ended(gameID) {
		return core.MatchSummary{}, fmt.Errorf("%w: %d", ErrMatchEnded, gameID)
	}
	game, ok := s.deps.Cache.GetGame(gameID)
	if !ok {
		var err error
		game, err = s.deps.Store.Game(gameID)
		if errors.Is(err, storage.ErrNotFound) {
			return core.MatchSummary{}, fmt.Errorf("%w: %d", ErrMatchNotFound, gameID)
		}
		if err != nil {
			return core.MatchSummary{}, fmt.Errorf("load game %d: %w", gameID, err)
		}
	}

	if err := s.deps.Store.EndMatch(&game); err != nil {
		s.writeLog(functionName, fmt.Sprintf(`Error ending match in storage: %v`, err), "ERROR")
		return core.MatchSummary{}, fmt.Errorf("end match %d: %w", gameID, err)
	}
	for _, sink := range s.deps.Sinks {
		if err := sink.EndMatch(&game); err != nil {
			logger.Warn("Failed to end match in sink", "gameID", gameID, "error", err)
		}
	}
	s.deps.Cache.End(gameID)

	s.mu.Lock()
	info, tracked := s.matches[gameID]
	delete(s.matches, gameID)
	s.mu.Unlock()
	if tracked {
		s.active.Dec()
	}

	summary := core.MatchSummary{
		GameID:              gameID,
		Scenario:            info.scenario,
		StartTime:           info.started,
		EndTime:             s.deps.Now(),
		State:               game.State,
		Result:              game.Result,
		Winner:              game.Winner,
		TurnNumber:          game.TurnNumber,
		InfectionLevel:      game.InfectionLevel,
		ImmuneResponseLevel: game.ImmuneResponseLevel,
	}

	s.upload(gameID)
	s.flushTelemetry(gameID)

	s.writeLog(functionName, fmt.Sprintf(`Match %d ended (%s)`, gameID, game.State), "INFO")
	return summary, nil
}

// upload sends the exported file of gameID. Failures are logged only.
func (s *Service) upload(gameID uint32) {
	if s.deps.Uploader == nil {
		return
	}
	exporter, ok := s.deps.Store.(storage.Uploadable)
	if !ok {
		return
	}
	logger := s.deps.LogManager.Logger()

	path := exporter.ExportedFilePath(gameID)
	if path == "" {
		logger.Warn("No exported file to upload", "gameID", gameID)
		return
	}
	meta := exporter.ExportMetadata(gameID)
	meta.Tag = s.deps.UploadTag
	if err := s.deps.Uploader.Upload(path, meta); err != nil {
		logger.Error("Failed to upload match", "gameID", gameID, "path", path, "error", err)
		return
	}
	logger.Info("Match uploaded", "gameID", gameID, "path", path)
}

func (s *Service) flushTelemetry(gameID uint32) {
	if s.deps.Telemetry == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.deps.Telemetry.Flush(ctx); err != nil {
		s.deps.LogManager.Logger().Warn("Failed to flush telemetry", "gameID", gameID, "error", err)
	}
}

// Version reports the engine build.
func (s *Service) Version() VersionInfo {
	return VersionInfo{Version: s.deps.EngineVersion, BuildDate: s.deps.BuildDate}
}

// Status reports what the host is currently serving.
func (s *Service) Status() StatusInfo {
	st := StatusInfo{
		Version:       s.deps.EngineVersion,
		Storage:       s.deps.StorageType,
		ActiveMatches: s.ActiveMatches(),
	}
	if s.deps.Scenarios != nil {
		st.Scenarios = s.deps.Scenarios.Names()
	}
	if s.dispatcher != nil {
		st.Commands = s.dispatcher.Commands()
	}
	return st
}
