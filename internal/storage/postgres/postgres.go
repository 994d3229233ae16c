// Package postgres implements storage.Store using GORM/PostgreSQL.
// Entity state is committed synchronously; the action log is queued and
// written in batches by a background writer goroutine.
package postgres

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/biocommander/engine/internal/database"
	"github.com/biocommander/engine/internal/logging"
	"github.com/biocommander/engine/internal/model"
	"github.com/biocommander/engine/internal/queue"
	"github.com/biocommander/engine/internal/storage"
	gormstorage "github.com/biocommander/engine/internal/storage/gorm"

	"gorm.io/gorm"
)

const (
	defaultFlushInterval = 2 * time.Second
	defaultBatchSize     = 500
)

// Dependencies holds all dependencies for the postgres storage backend.
type Dependencies struct {
	DB            *gorm.DB // optional; a postgres connection is opened from config when nil
	LogManager    *logging.SlogManager
	FlushInterval time.Duration
	BatchSize     int
}

// Backend implements storage.Store with a queued action-log writer.
type Backend struct {
	*gormstorage.Store
	deps    Dependencies
	actions *queue.Queue[model.ActionLog]

	lastFlush atomic.Int64 // nanoseconds spent in the last flush
	stopChan  chan struct{}
	wg        sync.WaitGroup
	flushMu   sync.Mutex
}

var _ storage.Store = (*Backend)(nil)

// New creates a new postgres storage backend.
func New(deps Dependencies) *Backend {
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = defaultFlushInterval
	}
	if deps.BatchSize <= 0 {
		deps.BatchSize = defaultBatchSize
	}
	return &Backend{
		deps:    deps,
		actions: queue.New[model.ActionLog](),
	}
}

// Init connects if needed, runs schema migration, and starts the DB writer goroutine.
func (b *Backend) Init() error {
	b.stopChan = make(chan struct{})

	if b.deps.DB == nil {
		db, err := database.GetPostgresDBStandalone()
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		b.deps.DB = db
	}
	b.Store = gormstorage.New(b.deps.DB)

	b.deps.LogManager.WriteLog("setupDB", "Migrating schema", "INFO")
	if err := b.Store.Init(); err != nil {
		b.deps.LogManager.WriteLog("setupDB", fmt.Sprintf("Failed to migrate schema: %s", err), "ERROR")
		return err
	}
	b.deps.LogManager.WriteLog("setupDB", "Database setup complete", "INFO")

	b.wg.Add(1)
	go b.writeLoop()
	return nil
}

// Close stops the writer goroutine and flushes what is left in the queue.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
		b.wg.Wait()
	}
	if b.Store == nil {
		return nil
	}
	if err := b.Flush(); err != nil {
		return fmt.Errorf("final action log flush: %w", err)
	}
	return b.Store.Close()
}

// Commit writes entity state in a transaction and queues the action record.
func (b *Backend) Commit(cs *storage.Changeset) error {
	if !cs.Empty() {
		err := b.DB().Transaction(func(tx *gorm.DB) error {
			return gormstorage.ApplyState(tx, cs)
		})
		if err != nil {
			return err
		}
	}
	b.actions.Push(gormstorage.ActionRow(cs.Action))
	return nil
}

// WriteQueueLength reports how many action records await insertion.
func (b *Backend) WriteQueueLength() int {
	return b.actions.Len()
}

// LastFlushDuration reports how long the last flush took.
func (b *Backend) LastFlushDuration() time.Duration {
	return time.Duration(b.lastFlush.Load())
}

// Flush writes every queued action record in batches. A failed batch is put
// back at the front of the queue and returned as an error.
func (b *Backend) Flush() error {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	start := time.Now()
	defer func() { b.lastFlush.Store(int64(time.Since(start))) }()

	for !b.actions.Empty() {
		items := b.actions.Take(b.deps.BatchSize)
		if err := gormstorage.InsertActions(b.DB(), items); err != nil {
			b.actions.Requeue(items)
			return err
		}
	}
	return nil
}

// writeLoop periodically drains the action queue into the DB.
func (b *Backend) writeLoop() {
	defer b.wg.Done()
	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.Flush(); err != nil {
				b.deps.LogManager.WriteLog(":DB:WRITER:", fmt.Sprintf("Error creating action logs: %v", err), "ERROR")
			}
		}
	}
}
