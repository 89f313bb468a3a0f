package skills

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/metoolok/metoolok/internal/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testStore(t *testing.T) *memory.Store {
	t.Helper()
	dir := t.TempDir()
	st, err := memory.Open(filepath.Join(dir, "context.json"), dir, zap.NewNop())
	require.NoError(t, err)
	return st
}

type stubSkill struct {
	*BaseSkill
	execute  func(ctx context.Context, input string) (string, error)
	configOK bool
}

func (s *stubSkill) Execute(ctx context.Context, input string) (string, error) {
	return s.execute(ctx, input)
}

func (s *stubSkill) CheckConfiguration() bool { return s.configOK }

func newStub(t *testing.T, name string, keywords ...string) *stubSkill {
	t.Helper()
	return &stubSkill{
		BaseSkill: NewBaseSkill(name, name+" test skill", keywords, testStore(t), zap.NewNop()),
		execute: func(ctx context.Context, input string) (string, error) {
			return "ok: " + input, nil
		},
		configOK: true,
	}
}

func TestBaseSkillMetadata(t *testing.T) {
	s := NewBaseSkill("weather", "Weather lookups", []string{"weather", "forecast"}, testStore(t), zap.NewNop())

	assert.Equal(t, "weather", s.Name())
	assert.Equal(t, "Weather lookups", s.Description())
	assert.Equal(t, []string{"weather", "forecast"}, s.Keywords())
	assert.Equal(t, DefaultTimeout, s.Timeout())
	assert.Equal(t, int64(0), s.Executions())
}

func TestBaseSkillKeywordsIsCopy(t *testing.T) {
	s := NewBaseSkill("todo", "tasks", []string{"todo"}, testStore(t), zap.NewNop())

	kw := s.Keywords()
	kw[0] = "mutated"
	assert.Equal(t, []string{"todo"}, s.Keywords())
}

func TestBaseSkillValidateInput(t *testing.T) {
	s := NewBaseSkill("todo", "tasks", []string{"todo"}, testStore(t), zap.NewNop())

	assert.True(t, s.ValidateInput("add: milk"))
	assert.False(t, s.ValidateInput(""))
	assert.False(t, s.ValidateInput("   \t  "))
}

func TestBaseSkillConfigurable(t *testing.T) {
	s := NewBaseSkill("news", "headlines", []string{"news"}, testStore(t), zap.NewNop())

	s.SetKeywords([]string{"news", "headlines"})
	s.SetTimeout(30 * time.Second)
	assert.Equal(t, []string{"news", "headlines"}, s.Keywords())
	assert.Equal(t, 30*time.Second, s.Timeout())

	// zero values leave the current settings alone
	s.SetKeywords(nil)
	s.SetTimeout(0)
	assert.Equal(t, []string{"news", "headlines"}, s.Keywords())
	assert.Equal(t, 30*time.Second, s.Timeout())
}

func TestBaseSkillMemoryHelpers(t *testing.T) {
	s := NewBaseSkill("todo", "tasks", []string{"todo"}, testStore(t), zap.NewNop())

	s.SaveToMemory("todo_list", []interface{}{"milk", "eggs"})
	assert.Equal(t, []interface{}{"milk", "eggs"}, s.ReadList("todo_list"))

	assert.Equal(t, "fallback", s.ReadFromMemory("missing", "fallback"))
	assert.Empty(t, s.ReadList("missing"))
	assert.Empty(t, s.ReadMap("missing"))
}

func TestBaseSkillMemoryHelpersNilStore(t *testing.T) {
	s := NewBaseSkill("todo", "tasks", []string{"todo"}, nil, zap.NewNop())

	s.SaveToMemory("k", "v")
	assert.Equal(t, "def", s.ReadFromMemory("k", "def"))
	assert.Empty(t, s.ReadList("k"))
	assert.Empty(t, s.ReadMap("k"))
	assert.Empty(t, s.APIKey("weather"))
}

func TestBaseSkillAPIKey(t *testing.T) {
	t.Setenv("WEATHER_API_KEY", "abc123")
	s := NewBaseSkill("weather", "Weather lookups", []string{"weather"}, testStore(t), zap.NewNop())

	assert.Equal(t, "abc123", s.APIKey("weather"))
}

func TestFormatError(t *testing.T) {
	s := NewBaseSkill("weather", "Weather lookups", []string{"weather"}, testStore(t), zap.NewNop())

	assert.Equal(t, "❌ **Weather Error:** city not found", s.FormatError("city not found"))
}

func TestRecordExecution(t *testing.T) {
	s := NewBaseSkill("todo", "tasks", []string{"todo"}, testStore(t), zap.NewNop())

	s.RecordExecution()
	s.RecordExecution()
	assert.Equal(t, int64(2), s.Executions())
}
