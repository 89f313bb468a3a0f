package skills

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/metoolok/metoolok/internal/errors"
	"github.com/metoolok/metoolok/internal/metrics"
	"github.com/metoolok/metoolok/internal/store"
	"go.uber.org/zap"
)

// Runner supervises skill executions: input validation, configuration
// check, lifecycle hooks, timeout enforcement, panic recovery and
// metrics. It owns the execution lifecycle but no conversation state.
type Runner struct {
	logger  *zap.Logger
	archive *store.Store
}

// NewRunner creates a supervised skill executor.
func NewRunner(logger *zap.Logger) *Runner {
	return &Runner{logger: logger.Named("runner")}
}

// SetArchive enables per-run records in the relational archive.
// Archive writes are best-effort and never affect the returned result.
func (r *Runner) SetArchive(a *store.Store) { r.archive = a }

// Run executes a skill through the full lifecycle and always returns
// a user-facing string. override replaces the skill's own timeout when
// positive. Internal error detail is logged, never returned.
func (r *Runner) Run(ctx context.Context, s Skill, input string, override time.Duration) string {
	name := s.Name()

	if !s.ValidateInput(input) {
		r.logger.Warn("Input validation failed", zap.String("skill", name))
		metrics.RecordSkillRun(name, false)
		return formatError(s, "Input is empty or invalid.")
	}

	if !s.CheckConfiguration() {
		r.logger.Warn("Configuration check failed", zap.String("skill", name))
		metrics.RecordSkillRun(name, false)
		return formatError(s, "Configuration check failed (missing API keys or setup).")
	}

	timeout := s.Timeout()
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if override > 0 {
		timeout = override
	}

	hooks := s.Hooks()
	r.safeHook(name, "on_start", func() error {
		if hooks.OnStart != nil {
			return hooks.OnStart(ctx, input)
		}
		return nil
	})

	r.logger.Info("Running skill",
		zap.String("skill", name),
		zap.Duration("timeout", timeout))

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		result string
		err    error
	}
	done := make(chan outcome, 1)
	start := time.Now()

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- outcome{err: fmt.Errorf("panic in %s: %v", name, rec)}
			}
		}()
		res, err := s.Execute(runCtx, input)
		done <- outcome{result: res, err: err}
	}()

	select {
	case <-runCtx.Done():
		elapsed := time.Since(start)
		if runCtx.Err() == context.DeadlineExceeded {
			r.logger.Error("Skill timed out",
				zap.String("skill", name),
				zap.Duration("limit", timeout),
				zap.Duration("elapsed", elapsed))
			metrics.RecordSkillTimeout(name)
			r.recordRun(name, false, true, elapsed, runCtx.Err())
			err := apperrors.Wrap(runCtx.Err(), apperrors.ErrSkillTimeout.Code, fmt.Sprintf("%s exceeded %s", name, timeout))
			r.safeHook(name, "on_error", func() error {
				if hooks.OnError != nil {
					hooks.OnError(ctx, input, err)
				}
				return nil
			})
			return formatError(s, fmt.Sprintf("⏱️ Timeout: '%s' exceeded %s limit.", name, timeout))
		}

		// Parent context cancelled (shutdown), not a deadline.
		r.logger.Warn("Skill cancelled",
			zap.String("skill", name),
			zap.Duration("elapsed", elapsed))
		metrics.RecordSkillRun(name, false)
		r.recordRun(name, false, false, elapsed, runCtx.Err())
		return formatError(s, "Execution was cancelled.")

	case out := <-done:
		elapsed := time.Since(start)
		if out.err != nil {
			r.logger.Error("Skill execution failed",
				zap.String("skill", name),
				zap.Duration("elapsed", elapsed),
				zap.Error(out.err))
			metrics.RecordSkillRun(name, false)
			r.recordRun(name, false, false, elapsed, out.err)
			r.safeHook(name, "on_error", func() error {
				if hooks.OnError != nil {
					hooks.OnError(ctx, input, out.err)
				}
				return nil
			})
			return formatError(s, "An unexpected error occurred: "+out.err.Error())
		}

		r.safeHook(name, "on_finish", func() error {
			if hooks.OnFinish != nil {
				return hooks.OnFinish(ctx, input, out.result)
			}
			return nil
		})

		s.RecordExecution()
		metrics.RecordSkillRun(name, true)
		metrics.RecordResponseTime(elapsed)
		r.recordRun(name, true, false, elapsed, nil)
		r.logger.Info("Skill completed",
			zap.String("skill", name),
			zap.Duration("elapsed", elapsed),
			zap.Int64("executions", s.Executions()))
		return out.result
	}
}

// safeHook runs a lifecycle hook, containing panics and logging
// failures without interrupting the execution.
func (r *Runner) safeHook(skill, hook string, fn func() error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("Hook panicked",
				zap.String("skill", skill),
				zap.String("hook", hook),
				zap.Any("panic", rec))
		}
	}()
	if err := fn(); err != nil {
		r.logger.Warn("Hook failed",
			zap.String("skill", skill),
			zap.String("hook", hook),
			zap.Error(err))
	}
}

func (r *Runner) recordRun(skill string, success, timedOut bool, elapsed time.Duration, err error) {
	if r.archive == nil {
		return
	}
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	run := &store.SkillRun{
		Skill:      skill,
		Success:    success,
		TimedOut:   timedOut,
		DurationMs: elapsed.Milliseconds(),
		Error:      msg,
	}
	if dbErr := r.archive.RecordRun(run); dbErr != nil {
		r.logger.Warn("Failed to archive skill run", zap.String("skill", skill), zap.Error(dbErr))
	}
}

func formatError(s Skill, message string) string {
	return "❌ **" + capitalize(s.Name()) + " Error:** " + message
}
