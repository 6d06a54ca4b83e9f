package handlers

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rpsms/sms-organizer-backend/internal/api/response"
	"github.com/rpsms/sms-organizer-backend/internal/services"
)

// SystemHandler exposes maintenance operations
type SystemHandler struct {
	retention *services.RetentionService
	summary   *services.SummaryService
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(retention *services.RetentionService, summary *services.SummaryService) *SystemHandler {
	return &SystemHandler{
		retention: retention,
		summary:   summary,
	}
}

// Sweep handles POST /api/retention/sweep - runs a retention pass now
func (h *SystemHandler) Sweep(c echo.Context) error {
	deleted, err := h.retention.SweepNow(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessWithMessage(c, map[string]interface{}{
		"deleted": deleted,
	}, "retention sweep completed")
}

// RetentionConfig handles GET /api/retention/config - the rule set the
// next sweep will run with
func (h *SystemHandler) RetentionConfig(c echo.Context) error {
	return response.Success(c, h.retention.Config())
}

// Summary handles GET /api/summary - stats for the last 24 hours
func (h *SystemHandler) Summary(c echo.Context) error {
	stats, err := h.summary.Summarize(c.Request().Context(), time.Now())
	if err != nil {
		return response.InternalError(c, "failed to compute summary")
	}
	return response.Success(c, stats)
}
