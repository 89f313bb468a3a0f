// Package brain routes user input to skills: intent detection over
// keyword maps, supervised execution through the runner, and
// conversation memory updates after every turn.
package brain

import (
	"context"
	"fmt"
	"strings"

	"github.com/metoolok/metoolok/internal/memory"
	"github.com/metoolok/metoolok/internal/metrics"
	"github.com/metoolok/metoolok/internal/skills"
	"github.com/metoolok/metoolok/internal/store"
	"go.uber.org/zap"
)

// historyLimit caps the stored conversation turns.
const historyLimit = 10

const historyKey = "conversation_history"

// Brain is the central dispatcher.
type Brain struct {
	registry *skills.Registry
	runner   *skills.Runner
	memory   *memory.Store
	archive  *store.Store
	logger   *zap.Logger
}

// New creates a dispatcher over the given registry.
func New(registry *skills.Registry, runner *skills.Runner, mem *memory.Store, logger *zap.Logger) *Brain {
	return &Brain{
		registry: registry,
		runner:   runner,
		memory:   mem,
		logger:   logger.Named("brain"),
	}
}

// SetArchive enables per-turn records in the relational archive.
func (b *Brain) SetArchive(a *store.Store) { b.archive = a }

// DetectIntent matches the input against every skill's keywords as
// lower-case substrings. Skills are checked in registration order and
// the first match wins, so overlapping keyword sets resolve to the
// earliest registered skill.
func (b *Brain) DetectIntent(input string) (string, bool) {
	lower := strings.ToLower(input)
	for _, intent := range b.registry.Intents() {
		for _, kw := range intent.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return intent.Name, true
			}
		}
	}
	return "", false
}

// ProcessInput is the main entry point for a user turn. It always
// returns a user-facing string and records the turn in memory.
func (b *Brain) ProcessInput(ctx context.Context, input string) string {
	b.logger.Info("User input", zap.String("input", input))

	name, ok := b.DetectIntent(input)
	if !ok {
		metrics.RecordIntent(false)
		metrics.RecordRequest(true)
		var names []string
		for _, n := range b.registry.Names() {
			names = append(names, capitalize(n))
		}
		return fmt.Sprintf("🤔 I didn't understand that. I can currently help with: **%s**", strings.Join(names, ", "))
	}
	metrics.RecordIntent(true)

	skill, found := b.registry.Get(name)
	if !found {
		b.logger.Error("Intent resolved to unregistered skill", zap.String("intent", name))
		metrics.RecordRequest(false)
		return fmt.Sprintf("❌ System Error: Intent '%s' detected, but module is not loaded.", name)
	}

	result := b.runner.Run(ctx, skill, input, 0)
	// Failure replies all carry the ❌ marker, whatever their source.
	metrics.RecordRequest(!strings.HasPrefix(result, "❌"))
	b.updateMemory(name, input, result)
	return result
}

// updateMemory records the turn in short-term context memory and,
// when configured, the relational archive. The history keeps only the
// last turns, oldest first.
func (b *Brain) updateMemory(skillName, input, result string) {
	if b.memory != nil {
		b.memory.Set("last_action", skillName)
		b.memory.Set("last_result", result)

		history := b.memory.List(historyKey)
		history = append(history, map[string]interface{}{
			"user":      input,
			"assistant": result,
		})
		if len(history) > historyLimit {
			history = history[len(history)-historyLimit:]
		}
		b.memory.Set(historyKey, history)

		if err := b.memory.Save(); err != nil {
			b.logger.Error("Failed to persist conversation memory", zap.Error(err))
		}
	}

	metrics.RecordTurnPersisted()

	if b.archive != nil {
		turn := &store.Turn{
			UserText:      input,
			AssistantText: result,
			SkillName:     skillName,
		}
		if err := b.archive.SaveTurn(turn); err != nil {
			b.logger.Warn("Failed to archive turn", zap.Error(err))
		}
	}
}

// History returns the stored conversation turns, oldest first.
func (b *Brain) History() []map[string]interface{} {
	if b.memory == nil {
		return nil
	}
	raw := b.memory.List(historyKey)
	out := make([]map[string]interface{}, 0, len(raw))
	for _, entry := range raw {
		if m, ok := entry.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
