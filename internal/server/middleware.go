package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// APIKeyMiddleware checks the bearer token against a bcrypt hash.
// An empty hash lets every request through.
func APIKeyMiddleware(hash string) fiber.Handler {
	if hash == "" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	hashBytes := []byte(hash)
	return func(c *fiber.Ctx) error {
		key := bearerFromHeader(c.Get(fiber.HeaderAuthorization))
		if key == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		if err := bcrypt.CompareHashAndPassword(hashBytes, []byte(key)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid api key")
		}
		return c.Next()
	}
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
