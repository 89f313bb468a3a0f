package memory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	logger, _ := zap.NewDevelopment()

	s, err := Open(filepath.Join(dir, "context.json"), filepath.Join(dir, "temp"), logger)
	require.NoError(t, err)
	return s
}

func TestOpen_MissingFile(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, "fallback", s.Get("anything", "fallback"))
}

func TestOpen_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "context.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	logger, _ := zap.NewDevelopment()
	s, err := Open(path, "", logger)
	require.NoError(t, err)

	// Corrupt file degrades to empty memory rather than failing startup.
	assert.Equal(t, "def", s.Get("key", "def"))
}

func TestSetGet(t *testing.T) {
	s := newTestStore(t)

	s.Set("last_action", "weather")
	assert.Equal(t, "weather", s.Get("last_action", ""))
	assert.Equal(t, "weather", s.String("last_action", ""))
	assert.Equal(t, "d", s.String("missing", "d"))
}

func TestTypedReaders_DefaultGracefully(t *testing.T) {
	s := newTestStore(t)

	s.Set("not_a_list", 42)
	assert.Empty(t, s.List("not_a_list"))
	assert.Empty(t, s.List("absent"))
	assert.Empty(t, s.Map("not_a_list"))
	assert.Empty(t, s.Map("absent"))
}

func TestSaveAndReload_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "context.json")
	logger, _ := zap.NewDevelopment()

	s, err := Open(path, "", logger)
	require.NoError(t, err)

	s.Set("last_action", "todo")
	s.Set("todo_list", []interface{}{
		map[string]interface{}{"task": "buy milk", "status": "pending"},
	})
	s.Set("conversation_history", []interface{}{
		map[string]interface{}{"user": "hi", "assistant": "hello"},
	})
	require.NoError(t, s.Save())

	reloaded, err := Open(path, "", logger)
	require.NoError(t, err)

	assert.Equal(t, s.Snapshot(), reloaded.Snapshot())
	assert.Equal(t, "todo", reloaded.String("last_action", ""))
	assert.Len(t, reloaded.List("todo_list"), 1)
}

func TestSnapshot_IsCopy(t *testing.T) {
	s := newTestStore(t)
	s.Set("counter", float64(1))

	snap := s.Snapshot()
	snap["counter"] = float64(99)

	assert.Equal(t, float64(1), s.Get("counter", nil))
}

func TestSecret(t *testing.T) {
	s := newTestStore(t)

	t.Setenv("WEATHER_API_KEY", "w-key")
	assert.Equal(t, "w-key", s.Secret("weather"))

	os.Unsetenv("NOSUCH_API_KEY")
	assert.Equal(t, "", s.Secret("nosuch"))
}

func TestSaveUpload(t *testing.T) {
	s := newTestStore(t)

	path, err := s.SaveUpload("report.txt", []byte("hello world"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	// Upload path is recorded for the documents skill.
	assert.Equal(t, path, s.String("last_uploaded_file", ""))

	assert.True(t, s.RemoveFile(path))
	assert.False(t, s.RemoveFile(path))
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	s.Set("k", "v")
	s.Delete("k")
	assert.Nil(t, s.Get("k", nil))
}
