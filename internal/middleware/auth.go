package middleware

import (
	"strings"

	"coreauth/internal/util"

	"github.com/gofiber/fiber/v2"
)

// LocalUsername is the fiber.Ctx locals key holding the authenticated username.
const LocalUsername = "username"

// Auth requires a valid bearer session token and stores its username in locals.
func Auth(tokens *util.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "unauthorized",
				"message": "missing authorization token",
			})
		}

		tokenParts := strings.SplitN(authHeader, " ", 2)
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "unauthorized",
				"message": "invalid authorization format",
			})
		}

		username, err := tokens.ValidateToken(tokenParts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "unauthorized",
				"message": "invalid authorization token",
			})
		}

		c.Locals(LocalUsername, username)
		return c.Next()
	}
}
