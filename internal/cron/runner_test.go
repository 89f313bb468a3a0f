package cron

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/metoolok/metoolok/internal/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunnerSavesPeriodically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "context.json")
	mem, err := memory.Open(path, dir, zap.NewNop())
	require.NoError(t, err)

	r := NewRunner(Config{Interval: 20 * time.Millisecond}, mem, zap.NewNop())
	require.NoError(t, r.Start())
	assert.True(t, r.IsRunning())

	mem.Set("autosaved", true)
	time.Sleep(60 * time.Millisecond)
	r.Stop()
	assert.False(t, r.IsRunning())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "autosaved")
}

func TestRunnerStopSavesFinalState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "context.json")
	mem, err := memory.Open(path, dir, zap.NewNop())
	require.NoError(t, err)

	r := NewRunner(Config{Interval: time.Hour}, mem, zap.NewNop())
	require.NoError(t, r.Start())
	mem.Set("final", "value")
	r.Stop()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "final")
}

func TestRunnerDoubleStart(t *testing.T) {
	mem, err := memory.Open(filepath.Join(t.TempDir(), "context.json"), t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	r := NewRunner(Config{Interval: time.Hour}, mem, zap.NewNop())
	require.NoError(t, r.Start())
	defer r.Stop()

	assert.Error(t, r.Start())
}

func TestRunnerStopWithoutStart(t *testing.T) {
	r := NewRunner(Config{}, nil, zap.NewNop())
	r.Stop() // must not panic or block
	assert.False(t, r.IsRunning())
}
