package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/biocommander/engine/internal/influx"
	"github.com/biocommander/engine/internal/logging"
	"github.com/biocommander/engine/internal/model"

	"gorm.io/gorm"
)

const defaultInterval = time.Second

// WriteQueue is implemented by storage backends with a write-behind queue.
type WriteQueue interface {
	WriteQueueLength() int
	LastFlushDuration() time.Duration
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	LogManager    *logging.SlogManager
	ActiveMatches func() int
	// QueueLength reports events waiting in the dispatcher. Optional.
	QueueLength func() int
	// Store is inspected for WriteQueue. Optional.
	Store any
	// DB receives a performance row per sample. Optional.
	DB *gorm.DB
	// Influx receives a performance point per sample. Optional.
	Influx *influx.Manager

	StatusDir string
	Interval  time.Duration
	Now       func() time.Time
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = defaultInterval
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// StatusFilePath is where the monitor writes its status report.
func (s *Service) StatusFilePath() string {
	return filepath.Join(s.deps.StatusDir, "status.txt")
}

// GetProgramStatus samples the host and renders it as indented JSON lines.
func (s *Service) GetProgramStatus() (output []string, perf model.MatchPerformance) {
	perf.Time = s.deps.Now()
	if s.deps.ActiveMatches != nil {
		perf.ActiveMatches = clamp16(s.deps.ActiveMatches())
	}
	if s.deps.QueueLength != nil {
		perf.ActionQueueLength = clamp16(s.deps.QueueLength())
	}
	if q, ok := s.deps.Store.(WriteQueue); ok {
		perf.WriteQueueLength = clamp16(q.WriteQueueLength())
		perf.LastWriteDurationMs = float32(q.LastFlushDuration().Microseconds()) / 1000
	}

	data, err := json.MarshalIndent(perf, "", "  ")
	if err != nil {
		data = []byte(fmt.Sprintf(`{"error": "%s"}`, err))
	}
	output = append(output, string(data))
	return output, perf
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}

	statusFile, err := os.Create(s.StatusFilePath())
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("create status file: %w", err)
	}

	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer statusFile.Close()

		logger := s.deps.LogManager.Logger()
		logger.Debug("Starting status monitor goroutine", "function", "startStatusMonitor")

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.sample(statusFile)
			}
		}
	}()

	return nil
}

func (s *Service) sample(statusFile *os.File) {
	logger := s.deps.LogManager.Logger()
	lines, perf := s.GetProgramStatus()

	if err := statusFile.Truncate(0); err != nil {
		logger.Error("Error truncating status file", "error", err)
		return
	}
	if _, err := statusFile.Seek(0, 0); err != nil {
		logger.Error("Error seeking status file", "error", err)
		return
	}
	for _, line := range lines {
		if _, err := statusFile.WriteString(line + "\n"); err != nil {
			logger.Error("Error writing status file", "error", err)
			return
		}
	}

	// idle hosts produce no samples
	if perf.ActiveMatches == 0 {
		return
	}
	if s.deps.DB != nil {
		if err := s.deps.DB.Create(&perf).Error; err != nil {
			logger.Error("Error writing performance sample", "error", err)
		}
	}
	if s.deps.Influx != nil {
		if err := s.deps.Influx.WritePoint(context.Background(), influx.PerformanceBucket, influx.PerformancePoint(perf)); err != nil {
			logger.Error("Error writing performance point", "error", err)
		}
	}
}

// Stop stops the status monitor and waits for the goroutine to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}

func clamp16(v int) uint16 {
	if v < 0 {
		return 0
	}
	if v > 0xFFFF {
		return 0xFFFF
	}
	return uint16(v)
}
