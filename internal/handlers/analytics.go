package handlers

import (
	"zion/gateway/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetAnalytics proxies organization analytics for a period
func (h *Handler) GetAnalytics(c *fiber.Ctx) error {
	period := models.AnalyticsPeriod(c.Query("period", string(models.Period30d)))
	if !period.Valid() {
		return badRequest(c, "period must be one of 7d, 30d, 90d, all")
	}

	data, err := h.workspace(c).Client.Analytics(c.UserContext(), c.Params("orgId"), period)
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, data)
}
