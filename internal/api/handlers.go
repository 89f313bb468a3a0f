package api

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/metoolok/metoolok/internal/metrics"
	"go.uber.org/zap"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"version":   "0.1.0",
		"skills":    s.registry.Count(),
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleMetrics(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/plain; charset=utf-8")
	return c.SendString(metrics.Default().Prometheus())
}

func (s *Server) handleMetricsJSON(c *fiber.Ctx) error {
	return c.JSON(metrics.Default().Snapshot())
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "default",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(7 * 24 * time.Hour).Unix(),
	})

	tokenString, err := token.SignedString([]byte(s.config.Security.JWTSecret))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to generate token"})
	}

	return c.JSON(fiber.Map{"token": tokenString})
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var req struct {
		Message string `json:"message"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	if req.Message == "" {
		return c.Status(400).JSON(fiber.Map{"error": "message is required"})
	}

	skill, _ := s.brain.DetectIntent(req.Message)
	start := time.Now()
	reply := s.brain.ProcessInput(c.Context(), req.Message)

	return c.JSON(fiber.Map{
		"reply":         reply,
		"skill":         skill,
		"response_time": time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleListSkills(c *fiber.Ctx) error {
	list := make([]fiber.Map, 0, s.registry.Count())
	for _, sk := range s.registry.Skills() {
		list = append(list, fiber.Map{
			"name":            sk.Name(),
			"description":     sk.Description(),
			"keywords":        sk.Keywords(),
			"timeout_seconds": int(sk.Timeout().Seconds()),
			"executions":      sk.Executions(),
		})
	}
	return c.JSON(list)
}

func (s *Server) handleSkillRuns(c *fiber.Ctx) error {
	if s.archive == nil {
		return c.Status(404).JSON(fiber.Map{"error": "run archive disabled"})
	}

	name := c.Params("name")
	limit := c.QueryInt("limit", 20)

	runs, err := s.archive.RunsForSkill(name, limit)
	if err != nil {
		s.logger.Error("Failed to list skill runs", zap.String("skill", name), zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to list runs"})
	}
	return c.JSON(runs)
}

func (s *Server) handleListConversations(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)

	if s.archive != nil {
		turns, err := s.archive.RecentTurns(limit)
		if err != nil {
			s.logger.Error("Failed to list conversations", zap.Error(err))
			return c.Status(500).JSON(fiber.Map{"error": "failed to list conversations"})
		}
		return c.JSON(turns)
	}

	// no archive configured, serve the short-term history instead
	return c.JSON(s.brain.History())
}

func (s *Server) handleMemory(c *fiber.Ctx) error {
	if s.memory == nil {
		return c.JSON(fiber.Map{})
	}
	return c.JSON(s.memory.Snapshot())
}

func (s *Server) handleFileUpload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "file is required"})
	}

	f, err := header.Open()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to read upload"})
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, 16<<20))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to read upload"})
	}

	path, err := s.memory.SaveUpload(header.Filename, data)
	if err != nil {
		s.logger.Error("Failed to store upload", zap.String("name", header.Filename), zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to store upload"})
	}

	return c.Status(201).JSON(fiber.Map{
		"path": path,
		"size": len(data),
	})
}
