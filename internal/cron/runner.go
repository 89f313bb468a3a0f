// Package cron implements the background autosave loop that
// periodically flushes context memory to disk.
package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/metoolok/metoolok/internal/memory"
	"github.com/metoolok/metoolok/internal/metrics"
	"go.uber.org/zap"
)

// Config holds autosave runner configuration
type Config struct {
	Interval time.Duration
}

// Runner periodically persists context memory.
type Runner struct {
	config  Config
	memory  *memory.Store
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.RWMutex
}

// NewRunner creates a new autosave runner
func NewRunner(config Config, mem *memory.Store, logger *zap.Logger) *Runner {
	ctx, cancel := context.WithCancel(context.Background())

	if config.Interval <= 0 {
		config.Interval = time.Minute
	}

	return &Runner{
		config: config,
		memory: mem,
		logger: logger.Named("autosave"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start starts the autosave loop
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("autosave runner already running")
	}

	r.running = true
	r.wg.Add(1)
	go r.run()

	r.logger.Info("Autosave started", zap.Duration("interval", r.config.Interval))
	return nil
}

// Stop stops the loop and performs one final save.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
	r.save()
	r.logger.Info("Autosave stopped")
}

// IsRunning reports whether the loop is active
func (r *Runner) IsRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

func (r *Runner) run() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.save()
		}
	}
}

func (r *Runner) save() {
	if r.memory == nil {
		return
	}
	if err := r.memory.Save(); err != nil {
		r.logger.Error("Autosave failed", zap.Error(err))
		return
	}

	snap := metrics.Default().Snapshot()
	r.logger.Debug("Context memory saved",
		zap.Int64("requests", snap.RequestsTotal),
		zap.Int64("skill_runs", snap.SkillRunsTotal))
}
