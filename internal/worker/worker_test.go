package worker

import (
	"compress/gzip"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/biocommander/engine/internal/config"
	"github.com/biocommander/engine/internal/dispatcher"
	"github.com/biocommander/engine/internal/influx"
	"github.com/biocommander/engine/internal/logging"
	"github.com/biocommander/engine/internal/parser"
	"github.com/biocommander/engine/internal/storage"
	"github.com/biocommander/engine/internal/storage/memory"
	"github.com/biocommander/engine/pkg/core"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_Defaults(t *testing.T) {
	m, err := NewManager(Dependencies{})
	require.NoError(t, err)
	assert.NotNil(t, m.Cache())
	assert.NotNil(t, m.Locks())
	assert.Empty(t, m.Sinks())
	assert.NotNil(t, m.deps.Now)
}

func TestInfluxPoints(t *testing.T) {
	backup := filepath.Join(t.TempDir(), "influx.gz")
	ix := influx.NewManager(zerolog.Nop(), config.InfluxConfig{
		Enabled:  true,
		Protocol: "http",
		Host:     "127.0.0.1",
		Port:     "1",
		Bucket:   "matches",
	}, backup)
	require.NoError(t, ix.Connect())

	store := memory.New(config.MemoryConfig{OutputDir: t.TempDir()})
	game := core.NewGame(1)
	zones := []core.Zone{*core.NewZone(1, 9, 1, 2), *core.NewZone(1, 10, 2, 2)}
	require.NoError(t, store.StartMatch(&storage.Match{Game: game, Zones: zones}))

	m, err := NewManager(Dependencies{
		Store:      store,
		LogManager: logging.NewSlogManager(),
		Parser:     parser.NewParser(slog.Default(), "default"),
		Influx:     ix,
	})
	require.NoError(t, err)
	d, err := dispatcher.New(&mockLogger{})
	require.NoError(t, err)
	m.RegisterHandlers(d, 10)
	assert.True(t, d.HasHandler(":METRIC:"))

	_, err = d.Dispatch(dispatcher.Event{Command: ":JOIN:", Authority: "alice", Args: []string{"1", "0"}})
	require.NoError(t, err)
	_, err = d.Dispatch(dispatcher.Event{Command: ":METRIC:", Args: []string{"matches", "host_tick", "field::int::n::1"}})
	require.NoError(t, err)

	require.NoError(t, d.Close(t.Context()))
	require.NoError(t, ix.Close())

	f, err := os.Open(backup)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "action,")
	assert.Contains(t, out, "kind=join")
	assert.Contains(t, out, "accepted=true")
	assert.Contains(t, out, "state=WaitingForPlayers")
	assert.Contains(t, out, "host_tick n=1i")
}
