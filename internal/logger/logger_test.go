package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInitDisabledDiscards(t *testing.T) {
	prev := L
	t.Cleanup(func() { L = prev })

	require.NoError(t, Init(Options{Enabled: false}))
	require.False(t, L.Enabled(t.Context(), slog.LevelError))
}

func TestDefaultLoggerDiscardsWithoutEnv(t *testing.T) {
	t.Setenv(EnvLogAlloc, "")
	require.False(t, defaultLogger().Enabled(t.Context(), slog.LevelError))

	t.Setenv(EnvLogAlloc, "1")
	require.True(t, defaultLogger().Enabled(t.Context(), slog.LevelDebug))
}

func TestInitZeroLevelIsInfo(t *testing.T) {
	prev := L
	t.Cleanup(func() { L = prev })

	var out bytes.Buffer
	require.NoError(t, Init(Options{Enabled: true, Writer: &out}))
	require.False(t, L.Enabled(t.Context(), slog.LevelDebug))
	require.True(t, L.Enabled(t.Context(), slog.LevelInfo))
}

func TestInitWriterRespectsLevel(t *testing.T) {
	prev := L
	t.Cleanup(func() { L = prev })

	var out bytes.Buffer
	require.NoError(t, Init(Options{Enabled: true, Level: slog.LevelWarn, Writer: &out}))

	Info("hidden", "k", 1)
	Warn("shown", "need", 24)
	require.NotContains(t, out.String(), "hidden")
	require.Contains(t, out.String(), "shown")
	require.Contains(t, out.String(), "need=24")
}

func TestInitJSON(t *testing.T) {
	prev := L
	t.Cleanup(func() { L = prev })

	var out bytes.Buffer
	require.NoError(t, Init(Options{Enabled: true, JSON: true, Writer: &out}))
	Error("boom", "off", 16)
	require.Contains(t, out.String(), `"msg":"boom"`)
	require.Contains(t, out.String(), `"off":16`)
}

func TestInitLogDirCleansOldLogs(t *testing.T) {
	prev := L
	t.Cleanup(func() { L = prev })

	dir := t.TempDir()
	old := filepath.Join(dir, logPrefix+time.Now().AddDate(0, 0, -retentionDays-5).Format("2006-01-02")+logSuffix)
	require.NoError(t, os.WriteFile(old, []byte("x"), 0o644))
	keep := filepath.Join(dir, "unrelated.txt")
	require.NoError(t, os.WriteFile(keep, []byte("x"), 0o644))

	require.NoError(t, Init(Options{Enabled: true, LogDir: dir}))
	Info("hello")

	_, err := os.Stat(old)
	require.True(t, os.IsNotExist(err), "expired log should be removed")
	_, err = os.Stat(keep)
	require.NoError(t, err)

	today := filepath.Join(dir, logPrefix+time.Now().Format("2006-01-02")+logSuffix)
	_, err = os.Stat(today)
	require.NoError(t, err)
}
