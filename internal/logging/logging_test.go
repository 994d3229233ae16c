package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFilePath(t *testing.T) {
	sessionStart := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

	tests := []struct {
		name        string
		logsDir     string
		serviceName string
		want        string
	}{
		{
			name:        "basic path",
			logsDir:     "logs",
			serviceName: "biocommander",
			want:        filepath.Join("logs", "biocommander.20260212_213836.log"),
		},
		{
			name:        "relative path with dot",
			logsDir:     "./logs",
			serviceName: "biocommander",
			want:        filepath.Join(".", "logs", "biocommander.20260212_213836.log"),
		},
		{
			name:        "absolute path",
			logsDir:     filepath.Join("/var", "log", "biocommander"),
			serviceName: "matchhost",
			want:        filepath.Join("/var", "log", "biocommander", "matchhost.20260212_213836.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LogFilePath(tt.logsDir, tt.serviceName, sessionStart)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenSessionLog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	start := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

	f, err := OpenSessionLog(dir, "biocommander", start)
	require.NoError(t, err)
	_, err = f.WriteString("first session\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f, err = OpenSessionLog(dir, "biocommander", start)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, LogFilePath(dir, "biocommander", start), f.Name())
	old, err := os.ReadFile(f.Name() + ".old")
	require.NoError(t, err)
	assert.Equal(t, "first session\n", string(old))

	info, err := f.Stat()
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestOpenSessionLog_BadDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := OpenSessionLog(filepath.Join(blocker, "logs"), "biocommander", time.Now())
	assert.ErrorContains(t, err, "create logs directory")
}
