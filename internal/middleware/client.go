package middleware

import (
	"coreauth/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ClientInfo copies the caller's address, user agent and request id into the
// request's user context so the services can attribute audit entries.
func ClientInfo() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID, _ := c.Locals("requestid").(string)
		ctx := service.WithClient(c.UserContext(), service.ClientInfo{
			IP:        c.IP(),
			UserAgent: c.Get(fiber.HeaderUserAgent),
			RequestID: requestID,
		})
		c.SetUserContext(ctx)
		return c.Next()
	}
}
