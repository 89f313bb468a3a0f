package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/metoolok/metoolok/internal/errors"
)

// requireAuth guards the protected routes. It accepts only the HS256
// bearer tokens minted by handleLogin: the scheme must be Bearer, the
// signing method must match, and the exp claim must be present and in
// the future. Rejections carry the AUTH error code so API clients can
// distinguish auth failures from other 4xx bodies.
func (s *Server) requireAuth() fiber.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	secret := []byte(s.config.Security.JWTSecret)

	return func(c *fiber.Ctx) error {
		scheme, raw, found := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || raw == "" {
			return unauthorized(c, "bearer token required")
		}

		token, err := parser.Parse(raw, func(*jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err != nil || !token.Valid {
			return unauthorized(c, "invalid or expired token")
		}

		if sub, err := token.Claims.GetSubject(); err == nil && sub != "" {
			c.Locals("subject", sub)
		}
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"code":  apperrors.ErrUnauthorized.Code,
		"error": msg,
	})
}
