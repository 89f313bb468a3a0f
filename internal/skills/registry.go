package skills

import (
	"fmt"
	"sync"
	"time"

	"github.com/metoolok/metoolok/internal/config"
	apperrors "github.com/metoolok/metoolok/internal/errors"
	"github.com/metoolok/metoolok/internal/httpx"
	"github.com/metoolok/metoolok/internal/memory"
	"go.uber.org/zap"
)

// Deps carries the shared runtime every skill factory receives.
// DefaultTimeout, when set, replaces the built-in execution deadline
// for every loaded skill; a per-skill manifest timeout still wins.
type Deps struct {
	Memory         *memory.Store
	HTTP           *httpx.Client
	Logger         *zap.Logger
	DefaultTimeout time.Duration
}

// Factory builds one skill instance. A failing factory disables only
// that skill, never the registry.
type Factory struct {
	Name string
	New  func(deps Deps) (Skill, error)
}

// Intent is the resolvable view of one registered skill.
type Intent struct {
	Name     string
	Keywords []string
}

// Registry holds the live skill set. Registration order is preserved
// because intent resolution ties break on it.
type Registry struct {
	mu     sync.RWMutex
	skills map[string]Skill
	order  []string
	logger *zap.Logger
}

// NewRegistry creates an empty skill registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		skills: make(map[string]Skill),
		logger: logger.Named("registry"),
	}
}

// Register adds a skill. Names must be non-empty and unique.
func (r *Registry) Register(s Skill) error {
	name := s.Name()
	if name == "" {
		return apperrors.New(apperrors.ErrSkillLoad.Code, "skill has an empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.skills[name]; exists {
		return apperrors.New(apperrors.ErrSkillLoad.Code, fmt.Sprintf("skill '%s' is already registered", name))
	}

	r.skills[name] = s
	r.order = append(r.order, name)
	r.logger.Info("Skill registered",
		zap.String("skill", name),
		zap.Strings("keywords", s.Keywords()))
	return nil
}

// Load instantiates every factory, applies manifest overrides and
// registers the results. A factory error or a disabled manifest entry
// skips that skill and the rest keep loading.
func (r *Registry) Load(factories []Factory, manifest *config.Manifest, deps Deps) {
	for _, f := range factories {
		if manifest != nil && !manifest.SkillEnabled(f.Name) {
			r.logger.Info("Skill disabled by manifest", zap.String("skill", f.Name))
			continue
		}

		s, err := f.New(deps)
		if err != nil {
			r.logger.Error("Failed to load skill",
				zap.String("skill", f.Name),
				zap.Error(err))
			continue
		}

		if deps.DefaultTimeout > 0 {
			if c, ok := s.(Configurable); ok {
				c.SetTimeout(deps.DefaultTimeout)
			}
		}

		if manifest != nil {
			if entry, ok := manifest.Entry(f.Name); ok {
				applyManifest(s, entry)
			}
		}

		if err := r.Register(s); err != nil {
			r.logger.Error("Failed to register skill",
				zap.String("skill", f.Name),
				zap.Error(err))
		}
	}

	r.logger.Info("Registry initialized",
		zap.Int("skills", r.Count()),
		zap.Strings("names", r.Names()))
}

// Reload rebuilds the registry from scratch, swapping the live set
// atomically so readers never observe a half-loaded registry.
func (r *Registry) Reload(factories []Factory, manifest *config.Manifest, deps Deps) {
	fresh := NewRegistry(r.logger)
	fresh.Load(factories, manifest, deps)

	r.mu.Lock()
	r.skills = fresh.skills
	r.order = fresh.order
	r.mu.Unlock()

	r.logger.Info("Registry reloaded", zap.Int("skills", len(fresh.order)))
}

func applyManifest(s Skill, entry config.ManifestEntry) {
	c, ok := s.(Configurable)
	if !ok {
		return
	}
	if len(entry.Keywords) > 0 {
		c.SetKeywords(entry.Keywords)
	}
	if entry.TimeoutSeconds > 0 {
		c.SetTimeout(time.Duration(entry.TimeoutSeconds) * time.Second)
	}
}

// Get returns a skill by name.
func (r *Registry) Get(name string) (Skill, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.skills[name]
	return s, ok
}

// Names returns the skill names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Skills returns the registered skills in registration order.
func (r *Registry) Skills() []Skill {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Skill, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.skills[name])
	}
	return out
}

// Intents returns the name/keyword pairs in registration order.
func (r *Registry) Intents() []Intent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Intent, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, Intent{Name: name, Keywords: r.skills[name].Keywords()})
	}
	return out
}

// Count returns the number of registered skills.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
