package app

import (
	"time"

	"github.com/metoolok/metoolok/internal/config"
	"github.com/metoolok/metoolok/internal/httpx"
	"github.com/metoolok/metoolok/internal/memory"
	"github.com/metoolok/metoolok/internal/skills"
	"github.com/metoolok/metoolok/internal/skills/documents"
	"github.com/metoolok/metoolok/internal/skills/fitness"
	"github.com/metoolok/metoolok/internal/skills/news"
	"github.com/metoolok/metoolok/internal/skills/todo"
	"github.com/metoolok/metoolok/internal/skills/weather"
	"go.uber.org/zap"
)

// Factories lists every built-in skill in its fixed registration
// order. Intent resolution ties break on this order, so it is part of
// the observable behavior.
func Factories() []skills.Factory {
	return []skills.Factory{
		{Name: "weather", New: weather.New},
		{Name: "news", New: news.New},
		{Name: "todo", New: todo.New},
		{Name: "fitness", New: fitness.New},
		{Name: "documents", New: documents.New},
	}
}

// RegisterSkills builds the registry from the manifest and the
// built-in factories. A failing skill is skipped, never fatal.
func RegisterSkills(cfg *config.Config, mem *memory.Store, registry *skills.Registry, client *httpx.Client, logger *zap.Logger) *config.Manifest {
	manifest, err := config.LoadManifest(cfg.Skills.Manifest)
	if err != nil {
		logger.Warn("Skill manifest unreadable, using defaults", zap.Error(err))
		manifest = &config.Manifest{}
	}

	registry.Load(Factories(), manifest, skills.Deps{
		Memory:         mem,
		HTTP:           client,
		Logger:         logger,
		DefaultTimeout: time.Duration(cfg.Skills.DefaultTimeout) * time.Second,
	})
	return manifest
}
