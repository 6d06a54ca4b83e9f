package handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rpsms/sms-organizer-backend/internal/api/response"
	apperrors "github.com/rpsms/sms-organizer-backend/internal/errors"
	"github.com/rpsms/sms-organizer-backend/internal/models"
	"github.com/rpsms/sms-organizer-backend/internal/repository"
	"github.com/rpsms/sms-organizer-backend/internal/services"
)

// FilterHandler handles filter-related HTTP requests
type FilterHandler struct {
	engine     *services.FilterEngine
	filterRepo repository.FilterRepository
}

// NewFilterHandler creates a new FilterHandler
func NewFilterHandler(engine *services.FilterEngine, filterRepo repository.FilterRepository) *FilterHandler {
	return &FilterHandler{
		engine:     engine,
		filterRepo: filterRepo,
	}
}

// FilterRequest is the body for filter create and update
type FilterRequest struct {
	Name                string `json:"name"`
	Keywords            string `json:"keywords"`
	FolderName          string `json:"folder_name"`
	Color               int    `json:"color"`
	AutoDelete          bool   `json:"auto_delete"`
	DeleteAfterHours    int    `json:"delete_after_hours"`
	NotificationEnabled bool   `json:"notification_enabled"`
}

func (r *FilterRequest) toModel() *models.Filter {
	return &models.Filter{
		Name:                r.Name,
		Keywords:            r.Keywords,
		FolderName:          r.FolderName,
		Color:               r.Color,
		AutoDelete:          r.AutoDelete,
		DeleteAfterHours:    r.DeleteAfterHours,
		NotificationEnabled: r.NotificationEnabled,
	}
}

// Create handles POST /api/filters
func (h *FilterHandler) Create(c echo.Context) error {
	var req FilterRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	filter := req.toModel()
	if err := h.engine.CreateFilter(c.Request().Context(), filter); err != nil {
		if apperrors.IsInvalidInput(err) {
			return response.BadRequest(c, err.Error())
		}
		return response.Error(c, err)
	}

	return response.Created(c, filter)
}

// List handles GET /api/filters
func (h *FilterHandler) List(c echo.Context) error {
	filters, err := h.engine.GetFilters(c.Request().Context())
	if err != nil {
		return response.InternalError(c, "failed to list filters")
	}
	return response.Success(c, filters)
}

// Get handles GET /api/filters/:id
func (h *FilterHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid filter ID")
	}

	filter, err := h.filterRepo.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "filter not found")
		}
		return response.InternalError(c, "failed to get filter")
	}

	return response.Success(c, filter)
}

// Update handles PUT /api/filters/:id
func (h *FilterHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid filter ID")
	}

	var req FilterRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	filter := req.toModel()
	filter.ID = uint(id)
	if err := h.engine.UpdateFilter(c.Request().Context(), filter); err != nil {
		if apperrors.IsNotFound(err) {
			return response.NotFound(c, "filter not found")
		}
		if apperrors.IsInvalidInput(err) {
			return response.BadRequest(c, err.Error())
		}
		return response.Error(c, err)
	}

	return response.Success(c, filter)
}

// Delete handles DELETE /api/filters/:id
func (h *FilterHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid filter ID")
	}

	if err := h.engine.DeleteFilter(c.Request().Context(), uint(id)); err != nil {
		if apperrors.IsNotFound(err) {
			return response.NotFound(c, "filter not found")
		}
		return response.Error(c, err)
	}

	return response.NoContent(c)
}

// ResetDefaults handles POST /api/filters/reset
func (h *FilterHandler) ResetDefaults(c echo.Context) error {
	created, err := h.engine.ResetDefaultFilters(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, created)
}

// FolderMessages handles GET /api/folders/:name/messages
func (h *FilterHandler) FolderMessages(c echo.Context) error {
	name := c.Param("name")
	if name == "" {
		return response.BadRequest(c, "folder name is required")
	}

	messages, err := h.engine.GetMessagesByFolder(c.Request().Context(), name)
	if err != nil {
		return response.InternalError(c, "failed to list folder messages")
	}
	return response.Success(c, messages)
}
