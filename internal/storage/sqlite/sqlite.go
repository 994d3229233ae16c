// Package sqlitestorage implements storage.Store using an in-memory SQLite
// database with periodic disk dumps via VACUUM INTO.
// It wraps the GORM store via composition; the only SQLite-specific concerns are
// creating the in-memory DB and the periodic and final disk dumps.
package sqlitestorage

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/biocommander/engine/internal/database"
	"github.com/biocommander/engine/internal/logging"
	gormstorage "github.com/biocommander/engine/internal/storage/gorm"
	"github.com/biocommander/engine/pkg/core"
)

// Config holds configuration for the SQLite storage backend.
type Config struct {
	DumpInterval time.Duration
	DumpPath     string // Path for periodic VACUUM INTO dumps
}

// Backend wraps the GORM store for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Store
	cfg      Config
	log      *logging.SlogManager
	stopChan chan struct{}
	wg       sync.WaitGroup
	dumpMu   sync.Mutex
}

// New creates a new SQLite storage backend.
func New(cfg Config, logManager *logging.SlogManager) (*Backend, error) {
	db, err := database.GetSqliteDBStandalone("")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}

	return &Backend{
		Store:    gormstorage.New(db),
		cfg:      cfg,
		log:      logManager,
		stopChan: make(chan struct{}),
	}, nil
}

// Init migrates the schema and starts the dump goroutine.
func (b *Backend) Init() error {
	if err := b.Store.Init(); err != nil {
		return err
	}

	if dumps, err := b.Backups(); err == nil && len(dumps) > 0 {
		b.log.Logger().Info("Found database dumps from earlier sessions", "paths", dumps)
	}

	if b.cfg.DumpPath != "" && b.cfg.DumpInterval > 0 {
		b.wg.Add(1)
		go b.dumpLoop()
	}

	return nil
}

// EndMatch stores the final state and dumps so finished matches survive a crash.
func (b *Backend) EndMatch(g *core.Game) error {
	if err := b.Store.EndMatch(g); err != nil {
		return err
	}
	if b.cfg.DumpPath == "" {
		return nil
	}
	return b.Dump()
}

// Close stops the dump goroutine, writes a last dump and closes the store.
func (b *Backend) Close() error {
	close(b.stopChan)
	b.wg.Wait()

	if b.cfg.DumpPath != "" {
		if err := b.Dump(); err != nil {
			b.log.WriteLog("sqlite:Close", fmt.Sprintf("Error dumping to disk: %v", err), "ERROR")
		}
	}
	return b.Store.Close()
}

// Dump writes a point-in-time snapshot to the configured path.
func (b *Backend) Dump() error {
	b.dumpMu.Lock()
	defer b.dumpMu.Unlock()
	return database.DumpMemoryDBToDisk(b.DB(), b.cfg.DumpPath)
}

// Backups lists the .db files next to the dump path.
func (b *Backend) Backups() ([]string, error) {
	if b.cfg.DumpPath == "" {
		return nil, nil
	}
	return database.GetBackupDBPaths(filepath.Dir(b.cfg.DumpPath))
}

// dumpLoop periodically dumps the in-memory SQLite database to disk via VACUUM INTO.
// VACUUM INTO creates a point-in-time snapshot, so no pause mechanism is needed.
func (b *Backend) dumpLoop() {
	defer b.wg.Done()
	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			start := time.Now()
			if err := b.Dump(); err != nil {
				b.log.WriteLog("sqlite:dumpLoop", fmt.Sprintf("Error dumping to disk: %v", err), "ERROR")
			} else {
				b.log.WriteLog("sqlite:dumpLoop", fmt.Sprintf("Dumped to disk in %s", time.Since(start)), "DEBUG")
			}
		}
	}
}
