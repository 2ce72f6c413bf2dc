package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"geo-attendance/services"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
	timeout   time.Duration
}

func NewDashboardHandler(dashboard *services.DashboardService, timeout time.Duration) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, timeout: timeout}
}

// Stats godoc
// @Summary Dashboard counts
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.DashboardStats
// @Router /admin/dashboard [get]
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	stats, err := h.dashboard.Stats(ctx)
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
