package handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rpsms/sms-organizer-backend/internal/api/response"
	apperrors "github.com/rpsms/sms-organizer-backend/internal/errors"
	"github.com/rpsms/sms-organizer-backend/internal/repository"
	"github.com/rpsms/sms-organizer-backend/internal/services"
)

// MessageHandler handles message-related HTTP requests
type MessageHandler struct {
	messageRepo repository.MessageRepository
	intake      *services.IntakeService
	retention   *services.RetentionService
	publisher   services.EventPublisher
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(
	messageRepo repository.MessageRepository,
	intake *services.IntakeService,
	retention *services.RetentionService,
	publisher services.EventPublisher,
) *MessageHandler {
	return &MessageHandler{
		messageRepo: messageRepo,
		intake:      intake,
		retention:   retention,
		publisher:   publisher,
	}
}

// CreateMessageRequest is the body for POST /api/messages
type CreateMessageRequest struct {
	Address     string `json:"address"`
	Body        string `json:"body"`
	Timestamp   int64  `json:"timestamp"`
	ContactName string `json:"contact_name"`
	Outgoing    bool   `json:"outgoing"`
}

// SaveRequest is the body for PATCH /api/messages/:id/save
type SaveRequest struct {
	Saved bool `json:"saved"`
}

// Create handles POST /api/messages - the intake entry point
func (h *MessageHandler) Create(c echo.Context) error {
	var req CreateMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	msg, err := h.intake.Receive(c.Request().Context(), services.IncomingMessage{
		Address:     req.Address,
		Body:        req.Body,
		Timestamp:   req.Timestamp,
		ContactName: req.ContactName,
		Outgoing:    req.Outgoing,
	})
	if err != nil {
		if apperrors.IsInvalidInput(err) {
			return response.BadRequest(c, err.Error())
		}
		return response.Error(c, err)
	}

	return response.Created(c, msg)
}

// List handles GET /api/messages?folder=&limit=&offset=
func (h *MessageHandler) List(c echo.Context) error {
	folder := c.QueryParam("folder")

	limit := 20
	offset := 0

	if l := c.QueryParam("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if o := c.QueryParam("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	items, total, err := h.messageRepo.List(c.Request().Context(), folder, limit, offset)
	if err != nil {
		return response.InternalError(c, "failed to list messages")
	}

	return response.Paginated(c, items, total, limit, offset)
}

// Get handles GET /api/messages/:id
func (h *MessageHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid message ID")
	}

	message, err := h.messageRepo.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "message not found")
		}
		return response.InternalError(c, "failed to get message")
	}

	// Auto mark as read
	if !message.Read {
		_ = h.messageRepo.MarkAsRead(c.Request().Context(), uint(id))
		message.Read = true
	}

	return response.Success(c, message)
}

// Codes handles GET /api/messages/codes
func (h *MessageHandler) Codes(c echo.Context) error {
	messages, err := h.messageRepo.GetCodeMessages(c.Request().Context())
	if err != nil {
		return response.InternalError(c, "failed to list code messages")
	}
	return response.Success(c, messages)
}

// MarkAsRead handles PATCH /api/messages/:id/read
func (h *MessageHandler) MarkAsRead(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid message ID")
	}

	if err := h.messageRepo.MarkAsRead(c.Request().Context(), uint(id)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "message not found")
		}
		return response.InternalError(c, "failed to mark message as read")
	}

	return response.SuccessWithMessage(c, nil, "message marked as read")
}

// Save handles PATCH /api/messages/:id/save
func (h *MessageHandler) Save(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid message ID")
	}

	var req SaveRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if err := h.messageRepo.SetSaved(c.Request().Context(), uint(id), req.Saved); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "message not found")
		}
		return response.InternalError(c, "failed to update message")
	}

	// Saving a code message keeps it past its scheduled expiry.
	if req.Saved && h.retention != nil {
		h.retention.CancelCodeExpiry(uint(id))
	}

	return response.SuccessWithMessage(c, nil, "message updated")
}

// Delete handles DELETE /api/messages/:id
func (h *MessageHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid message ID")
	}

	if err := h.messageRepo.DeleteByID(c.Request().Context(), uint(id)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "message not found")
		}
		return response.InternalError(c, "failed to delete message")
	}

	if h.retention != nil {
		h.retention.CancelCodeExpiry(uint(id))
	}
	if h.publisher != nil {
		h.publisher.Publish(services.EventMessageDeleted, map[string]interface{}{
			"message_id": uint(id),
			"reason":     "manual",
		})
	}

	return response.NoContent(c)
}
