package handler

import (
	"github.com/gofiber/fiber/v2"
)

type logQuery struct {
	Page     int `query:"page"`
	PageSize int `query:"page_size"`
}

// HandleGetLogs pages through the operation log, newest first.
func (h *Handler) HandleGetLogs(c *fiber.Ctx) error {
	q := new(logQuery)
	if err := c.QueryParser(q); err != nil {
		q = &logQuery{}
	}

	logs, total, err := h.admin.OperationLogs(c.UserContext(), c.Get(HeaderAdminKey), q.Page, q.PageSize)
	if err != nil {
		return h.fail(c, err)
	}

	return ok(c, fiber.StatusOK, fiber.Map{
		"data":  logs,
		"total": total,
		"page":  max(q.Page, 1),
	})
}
