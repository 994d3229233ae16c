package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// stdout carries host responses, so console logging goes to stderr.
var osStderr io.Writer = os.Stderr

// SlogManager owns the host logger. Setup may be called again at runtime
// (once the config and OTel are known); loggers handed out earlier keep
// writing to their original handlers.
type SlogManager struct {
	logger  atomic.Pointer[slog.Logger]
	context ContextProvider

	// kept for Flush
	logProvider atomic.Pointer[sdklog.LoggerProvider]
}

// NewSlogManager creates a manager that logs through slog.Default until Setup.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// SetContextProvider registers attributes added to every record logged
// after the next Setup.
func (m *SlogManager) SetContextProvider(p ContextProvider) {
	m.context = p
}

// parseLevel accepts slog level names in any case ("debug", "WARN",
// "info+2"). Anything else is info.
func parseLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Setup builds the handler chain: text records to file (stderr when file is
// nil), the OTel bridge when provider is set, match and host attributes on
// top.
func (m *SlogManager) Setup(file io.Writer, level string, provider *sdklog.LoggerProvider) {
	if file == nil {
		file = osStderr
	}
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339))
			}
			return a
		},
	}

	handlers := []slog.Handler{slog.NewTextHandler(file, opts)}
	if provider != nil {
		handlers = append(handlers, otelslog.NewHandler("biocommander", otelslog.WithLoggerProvider(provider)))
	}
	m.logProvider.Store(provider)

	logger := slog.New(NewContextHandler(NewMultiHandler(handlers...), m.context))
	m.logger.Store(logger)
	logger.Info("Logging initialized", "level", opts.Level)
}

// Logger returns the configured logger, or slog.Default before Setup.
func (m *SlogManager) Logger() *slog.Logger {
	if l := m.logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// Flush forces pending OTel records out.
func (m *SlogManager) Flush(ctx context.Context) error {
	if p := m.logProvider.Load(); p != nil {
		return p.ForceFlush(ctx)
	}
	return nil
}

// WriteLog logs data attributed to functionName at a named level. It is a
// no-op before Setup.
func (m *SlogManager) WriteLog(functionName, data, level string) {
	l := m.logger.Load()
	if l == nil {
		return
	}
	l.Log(context.Background(), parseLevel(level), data, "function", functionName)
}
