package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/biocommander/engine/internal/api"
	"github.com/biocommander/engine/internal/cache"
	"github.com/biocommander/engine/internal/config"
	"github.com/biocommander/engine/internal/dispatcher"
	"github.com/biocommander/engine/internal/handlers"
	"github.com/biocommander/engine/internal/influx"
	"github.com/biocommander/engine/internal/logging"
	"github.com/biocommander/engine/internal/monitor"
	intOtel "github.com/biocommander/engine/internal/otel"
	"github.com/biocommander/engine/internal/parser"
	"github.com/biocommander/engine/internal/scenario"
	"github.com/biocommander/engine/internal/storage"
	gormstorage "github.com/biocommander/engine/internal/storage/gorm"
	"github.com/biocommander/engine/internal/worker"

	"github.com/rs/zerolog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"gorm.io/gorm"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.1.0"
	BuildDate      string = "unknown"

	ServiceName string = "biocommander"
)

// global variables
var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	// InfluxManager receives action and performance points (optional)
	InfluxManager *influx.Manager

	// LogOutput is where text logs go once the config is loaded
	LogOutput io.Writer = os.Stderr

	SessionStartTime time.Time = time.Now()
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "biocommander: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := config.Flags()
	if err := flags.Parse(args); err != nil {
		return err
	}
	configDir, _ := flags.GetString("config")

	// Console logging until the config is known
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(nil, "info", nil)
	Logger = SlogManager.Logger()

	if err := config.Load(configDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config", "dir", configDir)
	}
	if err := config.BindFlags(flags); err != nil {
		return err
	}

	logFile, closeLog := openLogFile()
	defer closeLog()

	setupOTel(logFile)

	if logFile != nil {
		LogOutput = io.MultiWriter(os.Stderr, logFile)
	}
	setupLogging()

	zlog := zerolog.New(LogOutput).With().Timestamp().Str("component", "dispatcher").Logger().
		Level(zerologLevel(config.GetString("logLevel")))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	host, err := newHost(zlog)
	if err != nil {
		Logger.Error("Failed to start host", "error", err)
		return err
	}
	defer host.shutdown()

	Logger.Info("Ready", "version", CurrentVersion, "storage", host.storageType)
	return serve(ctx, os.Stdin, os.Stdout, host.dispatcher, Logger)
}

// host bundles the services wired together at startup.
type host struct {
	storageType string
	store       storage.Store
	sinks       []storage.Backend
	dispatcher  *dispatcher.Dispatcher
	monitor     *monitor.Service
}

func newHost(zlog zerolog.Logger) (*host, error) {
	gameCfg := config.GetGameConfig()
	storageCfg := config.GetStorageConfig()

	catalog, err := scenario.Load(gameCfg.ScenarioFile)
	if err != nil {
		return nil, fmt.Errorf("load scenarios: %w", err)
	}
	Logger.Info("Scenarios loaded", "names", catalog.Names())

	gormstorage.Version = CurrentVersion
	store, err := createStorageBackend(storageCfg, SlogManager)
	if err != nil {
		return nil, err
	}
	if err := store.Init(); err != nil {
		return nil, fmt.Errorf("initialize storage backend: %w", err)
	}

	h := &host{
		storageType: storageCfg.Type,
		store:       store,
	}

	for _, sink := range createSinks(config.GetStreamingConfig(), SlogManager) {
		if err := sink.Init(); err != nil {
			Logger.Warn("Failed to initialize sink, continuing without it", "error", err)
			continue
		}
		h.sinks = append(h.sinks, sink)
	}

	setupInflux(zlog)

	d, err := dispatcher.New(logging.NewDispatcherLogger(zlog))
	if err != nil {
		h.shutdown()
		return nil, fmt.Errorf("create dispatcher: %w", err)
	}
	h.dispatcher = d

	matchCache := cache.NewMatchCache()
	locks := cache.NewMatchLocks()
	parserService := parser.NewParser(Logger, gameCfg.DefaultScenario)

	workerManager, err := worker.NewManager(worker.Dependencies{
		Store:      store,
		Cache:      matchCache,
		Locks:      locks,
		LogManager: SlogManager,
		Parser:     parserService,
		Sinks:      h.sinks,
		Influx:     InfluxManager,
	})
	if err != nil {
		h.shutdown()
		return nil, fmt.Errorf("create worker: %w", err)
	}
	workerManager.RegisterHandlers(d, gameCfg.ActionBufferSize)

	handlerDeps := handlers.Dependencies{
		Store:                store,
		Sinks:                h.sinks,
		Scenarios:            catalog,
		Parser:               parserService,
		Cache:                matchCache,
		Locks:                locks,
		LogManager:           SlogManager,
		Uploader:             newUploader(),
		UploadTag:            config.GetString("api.tag"),
		DefaultTurnTimeLimit: gameCfg.TurnTimeLimit,
		EngineVersion:        CurrentVersion,
		BuildDate:            BuildDate,
		StorageType:          storageCfg.Type,
	}
	if OTelProvider != nil {
		handlerDeps.Telemetry = OTelProvider
	}
	handlerService := handlers.NewService(handlerDeps)
	handlerService.RegisterHandlers(d)
	Logger.Info("Handlers registered", "commands", d.Commands())

	SlogManager.SetContextProvider(func() []slog.Attr {
		return []slog.Attr{slog.Int("activeMatches", handlerService.ActiveMatches())}
	})
	setupLogging()

	monitorDeps := monitor.Dependencies{
		LogManager:    SlogManager,
		ActiveMatches: handlerService.ActiveMatches,
		QueueLength:   d.QueueLength,
		Store:         store,
		Influx:        InfluxManager,
		StatusDir:     config.GetString("logsDir"),
	}
	if withDB, ok := store.(interface{ DB() *gorm.DB }); ok {
		monitorDeps.DB = withDB.DB()
	}
	h.monitor = monitor.NewService(monitorDeps)
	if err := h.monitor.Start(); err != nil {
		Logger.Warn("Failed to start status monitor", "error", err)
	}

	return h, nil
}

// shutdown drains the dispatcher and closes everything newHost opened.
func (h *host) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if h.dispatcher != nil {
		if err := h.dispatcher.Close(ctx); err != nil {
			Logger.Warn("Failed to drain dispatcher", "error", err)
		}
	}
	if h.monitor != nil {
		h.monitor.Stop()
	}
	for _, sink := range h.sinks {
		if err := sink.Close(); err != nil {
			Logger.Warn("Failed to close sink", "error", err)
		}
	}
	if err := h.store.Close(); err != nil {
		Logger.Error("Failed to close storage backend", "error", err)
	}
	if InfluxManager != nil {
		if err := InfluxManager.Close(); err != nil {
			Logger.Warn("Failed to close InfluxDB", "error", err)
		}
	}
	if err := SlogManager.Flush(ctx); err != nil {
		Logger.Warn("Failed to flush logs", "error", err)
	}
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			Logger.Warn("Failed to shut down OTel provider", "error", err)
		}
	}
	Logger.Info("Shut down")
}

// setupLogging (re)builds the slog handlers from the current config.
func setupLogging() {
	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	SlogManager.Setup(LogOutput, config.GetString("logLevel"), otelLogProvider)
	Logger = SlogManager.Logger()
}

// openLogFile opens the session log file. A file that cannot be created
// leaves logging on stderr only.
func openLogFile() (*os.File, func()) {
	f, err := logging.OpenSessionLog(config.GetString("logsDir"), ServiceName, SessionStartTime)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err)
		return nil, func() {}
	}
	Logger.Info("Begin logging in logs directory", "path", f.Name())
	return f, func() { _ = f.Close() }
}

func setupOTel(logFile *os.File) {
	otelCfg := config.GetOTelConfig()
	if !otelCfg.Enabled {
		return
	}
	var w io.Writer = os.Stderr
	if logFile != nil {
		w = logFile
	}

	var err error
	OTelProvider, err = intOtel.New(intOtel.Config{
		Enabled:        otelCfg.Enabled,
		ServiceName:    otelCfg.ServiceName,
		ServiceVersion: CurrentVersion,
		BatchTimeout:   otelCfg.BatchTimeout,
		LogWriter:      w,
		Endpoint:       otelCfg.Endpoint,
		Insecure:       otelCfg.Insecure,
	})
	if err != nil {
		Logger.Error("Failed to initialize OTel provider", "error", err)
		OTelProvider = nil
		return
	}
	Logger.Info("OTel provider initialized", "endpoint", otelCfg.Endpoint)
}

func setupInflux(zlog zerolog.Logger) {
	influxCfg := config.GetInfluxConfig()
	if !influxCfg.Enabled {
		return
	}
	backupPath := filepath.Join(config.GetString("logsDir"),
		fmt.Sprintf("influx_backup_%s.log.gz", SessionStartTime.Format("20060102_150405")))

	m := influx.NewManager(zlog.With().Str("component", "influx").Logger(), influxCfg, backupPath)
	if err := m.Connect(); err != nil {
		Logger.Error("Failed to set up InfluxDB", "error", err)
		return
	}
	InfluxManager = m
	Logger.Info("InfluxDB ready", "url", influxCfg.URL(), "connected", m.IsValid)
}

// newUploader returns the web frontend client when uploads are enabled and
// the frontend answers its healthcheck.
func newUploader() handlers.Uploader {
	if !config.GetBool("api.upload") {
		return nil
	}
	client := api.New(config.GetString("api.serverUrl"), config.GetString("api.apiKey"))
	if err := client.Healthcheck(); err != nil {
		Logger.Warn("Web frontend unreachable, match uploads disabled", "error", err)
		return nil
	}
	Logger.Info("Web frontend reachable, match uploads enabled", "url", config.GetString("api.serverUrl"))
	return client
}

func zerologLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
