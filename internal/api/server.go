// Package api exposes the assistant over HTTP: chat, skill listing,
// conversation history, memory inspection and metrics.
package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/metoolok/metoolok/internal/brain"
	"github.com/metoolok/metoolok/internal/config"
	"github.com/metoolok/metoolok/internal/memory"
	"github.com/metoolok/metoolok/internal/skills"
	"github.com/metoolok/metoolok/internal/store"
	"go.uber.org/zap"
)

// Server handles the HTTP API
type Server struct {
	app      *fiber.App
	config   *config.Config
	brain    *brain.Brain
	registry *skills.Registry
	memory   *memory.Store
	archive  *store.Store
	logger   *zap.Logger
}

// New creates a new API server
func New(cfg *config.Config, b *brain.Brain, registry *skills.Registry, mem *memory.Store, archive *store.Store, log *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	})

	s := &Server{
		app:      app,
		config:   cfg,
		brain:    b,
		registry: registry,
		memory:   mem,
		archive:  archive,
		logger:   log.Named("api"),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.app.Use(recover.New())
	s.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(s.config.Security.AllowOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	s.app.Get("/api/health", s.handleHealth)
	s.app.Get("/metrics", s.handleMetrics)
	s.app.Get("/api/metrics", s.handleMetricsJSON)

	api := s.app.Group("/api")

	api.Post("/auth/login", s.handleLogin)

	protected := api.Use(s.requireAuth())

	protected.Post("/chat", s.handleChat)
	protected.Get("/skills", s.handleListSkills)
	protected.Get("/skills/:name/runs", s.handleSkillRuns)
	protected.Get("/conversations", s.handleListConversations)
	protected.Get("/memory", s.handleMemory)
	protected.Post("/files/upload", s.handleFileUpload)
}

// App exposes the fiber app for tests
func (s *Server) App() *fiber.App { return s.app }

// Start starts listening on the configured address
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Address, s.config.Server.Port)
	s.logger.Info("HTTP server listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown drains connections and stops the server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.app.ShutdownWithContext(ctx)
}
