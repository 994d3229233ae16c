package main

import (
	"fmt"

	"github.com/biocommander/engine/internal/config"
	"github.com/biocommander/engine/internal/logging"
	"github.com/biocommander/engine/internal/storage"
	"github.com/biocommander/engine/internal/storage/memory"
	pgstorage "github.com/biocommander/engine/internal/storage/postgres"
	sqlitestorage "github.com/biocommander/engine/internal/storage/sqlite"
	wsstorage "github.com/biocommander/engine/internal/storage/websocket"
)

// createStorageBackend builds the primary store selected by storage.type.
func createStorageBackend(storageCfg config.StorageConfig, logManager *logging.SlogManager) (storage.Store, error) {
	logger := logManager.Logger()

	switch storageCfg.Type {
	case "postgres":
		logger.Info("Postgres storage backend selected")
		return pgstorage.New(pgstorage.Dependencies{
			LogManager:    logManager,
			FlushInterval: storageCfg.Postgres.FlushInterval,
			BatchSize:     storageCfg.Postgres.BatchSize,
		}), nil

	case "sqlite":
		backend, err := sqlitestorage.New(sqlitestorage.Config{
			DumpInterval: storageCfg.SQLite.DumpInterval,
			DumpPath:     storageCfg.SQLite.DumpPath,
		}, logManager)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		logger.Info("SQLite storage backend selected", "dumpPath", storageCfg.SQLite.DumpPath)
		return backend, nil

	case "memory", "":
		logger.Info("Memory storage backend selected", "outputDir", storageCfg.Memory.OutputDir)
		return memory.New(storageCfg.Memory), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}

// createSinks builds the secondary backends committed state is published to.
func createSinks(streamCfg config.StreamingConfig, logManager *logging.SlogManager) []storage.Backend {
	if !streamCfg.Enabled || streamCfg.URL == "" {
		return nil
	}
	logManager.Logger().Info("Spectator stream enabled", "url", streamCfg.URL)
	return []storage.Backend{
		wsstorage.New(wsstorage.Config{
			URL:            streamCfg.URL,
			Secret:         streamCfg.Secret,
			ReconnectDelay: streamCfg.ReconnectDelay,
		}),
	}
}
