package handler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) HandleStatistics(c *fiber.Ctx) error {
	stats, err := h.admin.Statistics(c.UserContext(), c.Get(HeaderAdminKey))
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"data": stats})
}
