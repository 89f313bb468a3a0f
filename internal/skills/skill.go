// Package skills implements the skill-plugin runtime: the capability
// abstraction, the registry that discovers and instantiates skills,
// and the runner that supervises every execution.
package skills

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/metoolok/metoolok/internal/memory"
	"go.uber.org/zap"
)

// DefaultTimeout bounds skill execution when a skill declares none.
const DefaultTimeout = 15 * time.Second

// Hooks are optional lifecycle callbacks around a skill execution.
// They are best-effort: a failing or panicking hook is logged and
// swallowed by the runner, never propagated.
type Hooks struct {
	OnStart  func(ctx context.Context, input string) error
	OnFinish func(ctx context.Context, input, result string) error
	OnError  func(ctx context.Context, input string, err error)
}

// Skill is a self-contained capability handler.
type Skill interface {
	Name() string
	Keywords() []string
	Description() string
	Timeout() time.Duration

	// Execute runs the skill's core logic. The context carries the
	// execution deadline; long-running work should honor it.
	Execute(ctx context.Context, input string) (string, error)

	// ValidateInput rejects inputs the skill cannot work with.
	ValidateInput(input string) bool

	// CheckConfiguration reports whether prerequisites (API keys,
	// files) are satisfied.
	CheckConfiguration() bool

	Hooks() Hooks
	Executions() int64
	RecordExecution()
}

// Configurable is implemented by skills whose keyword set or timeout
// can be overridden from the manifest.
type Configurable interface {
	SetKeywords(keywords []string)
	SetTimeout(d time.Duration)
}

// BaseSkill provides the shared implementation concrete skills embed.
type BaseSkill struct {
	name        string
	description string
	keywords    []string
	timeout     time.Duration
	executions  atomic.Int64
	hooks       Hooks
	memory      *memory.Store
	logger      *zap.Logger
}

// NewBaseSkill creates the embedded base for a skill.
func NewBaseSkill(name, description string, keywords []string, mem *memory.Store, logger *zap.Logger) *BaseSkill {
	return &BaseSkill{
		name:        name,
		description: description,
		keywords:    keywords,
		timeout:     DefaultTimeout,
		memory:      mem,
		logger:      logger.Named("skill." + name),
	}
}

// Name returns the skill's unique lower-case identifier
func (s *BaseSkill) Name() string { return s.name }

// Description returns the skill description
func (s *BaseSkill) Description() string { return s.description }

// Keywords returns the trigger substrings in declaration order
func (s *BaseSkill) Keywords() []string {
	out := make([]string, len(s.keywords))
	copy(out, s.keywords)
	return out
}

// Timeout returns the execution deadline for this skill
func (s *BaseSkill) Timeout() time.Duration { return s.timeout }

// SetTimeout overrides the execution deadline
func (s *BaseSkill) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// SetKeywords replaces the trigger set
func (s *BaseSkill) SetKeywords(keywords []string) {
	if len(keywords) > 0 {
		s.keywords = keywords
	}
}

// SetHooks installs the lifecycle callbacks
func (s *BaseSkill) SetHooks(h Hooks) { s.hooks = h }

// Hooks returns the lifecycle callbacks
func (s *BaseSkill) Hooks() Hooks { return s.hooks }

// Executions returns how many times this skill completed successfully
func (s *BaseSkill) Executions() int64 { return s.executions.Load() }

// RecordExecution increments the success counter. The runner calls
// this exactly once per successful run.
func (s *BaseSkill) RecordExecution() { s.executions.Add(1) }

// ValidateInput rejects empty or whitespace-only input by default.
func (s *BaseSkill) ValidateInput(input string) bool {
	if strings.TrimSpace(input) == "" {
		s.logger.Warn("Validation failed: empty input")
		return false
	}
	return true
}

// CheckConfiguration is satisfied by default; skills with external
// prerequisites override it.
func (s *BaseSkill) CheckConfiguration() bool { return true }

// Logger returns the skill-scoped logger
func (s *BaseSkill) Logger() *zap.Logger { return s.logger }

// Memory returns the shared context store
func (s *BaseSkill) Memory() *memory.Store { return s.memory }

// SaveToMemory persists a key-value pair to the context store.
func (s *BaseSkill) SaveToMemory(key string, value interface{}) {
	if s.memory == nil {
		s.logger.Warn("Context store missing, memory not saved", zap.String("key", key))
		return
	}

	s.memory.Set(key, value)
	if err := s.memory.Save(); err != nil {
		s.logger.Error("Failed to save memory", zap.String("key", key), zap.Error(err))
	}
}

// ReadFromMemory reads a value from the context store.
func (s *BaseSkill) ReadFromMemory(key string, def interface{}) interface{} {
	if s.memory == nil {
		return def
	}
	return s.memory.Get(key, def)
}

// ReadList safely returns a list from memory.
func (s *BaseSkill) ReadList(key string) []interface{} {
	if s.memory == nil {
		return []interface{}{}
	}
	return s.memory.List(key)
}

// ReadMap safely returns a map from memory.
func (s *BaseSkill) ReadMap(key string) map[string]interface{} {
	if s.memory == nil {
		return map[string]interface{}{}
	}
	return s.memory.Map(key)
}

// APIKey fetches a credential for a service from the environment.
func (s *BaseSkill) APIKey(service string) string {
	if s.memory == nil {
		s.logger.Warn("Context store missing, cannot fetch API key", zap.String("service", service))
		return ""
	}
	return s.memory.Secret(service)
}

// FormatError produces the standard user-facing error line.
func (s *BaseSkill) FormatError(message string) string {
	return "❌ **" + capitalize(s.name) + " Error:** " + message
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
