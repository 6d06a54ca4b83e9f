package handlers

import (
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/rpsms/sms-organizer-backend/internal/api/response"
	apperrors "github.com/rpsms/sms-organizer-backend/internal/errors"
	"github.com/rpsms/sms-organizer-backend/internal/logger"
	"github.com/rpsms/sms-organizer-backend/internal/services"
	"github.com/rpsms/sms-organizer-backend/internal/storage"
)

// BackupHandler handles backup and restore HTTP requests
type BackupHandler struct {
	backup *services.BackupService
	audit  *logger.SecurityLogger
}

// NewBackupHandler creates a new BackupHandler. Rejected restores and
// snapshot names that try to escape the backup directory are recorded
// through the audit logger.
func NewBackupHandler(backup *services.BackupService, audit *logger.SecurityLogger) *BackupHandler {
	return &BackupHandler{backup: backup, audit: audit}
}

// Create handles POST /api/backups
func (h *BackupHandler) Create(c echo.Context) error {
	name, snap, err := h.backup.Backup(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]interface{}{
		"snapshot":       name,
		"total_messages": snap.TotalMessages,
		"backup_date":    snap.BackupDate,
	})
}

// List handles GET /api/backups
func (h *BackupHandler) List(c echo.Context) error {
	infos, err := h.backup.ListSnapshots()
	if err != nil {
		return response.InternalError(c, "failed to list snapshots")
	}
	return response.Success(c, infos)
}

// Restore handles POST /api/backups/:name/restore
func (h *BackupHandler) Restore(c echo.Context) error {
	name := c.Param("name")
	if name == "" {
		return response.BadRequest(c, "snapshot name is required")
	}

	restored, err := h.backup.Restore(c.Request().Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrRestoreInProgress):
			h.auditRejected(c, name, "restore already running")
			return response.Conflict(c, "another restore is already running")
		case errors.Is(err, storage.ErrPathTraversal):
			if h.audit != nil {
				h.audit.PathTraversalAttempt(c.RealIP(), c.Path(), name)
			}
			return response.BadRequest(c, "invalid snapshot name")
		case apperrors.IsNotFound(err):
			h.auditRejected(c, name, "snapshot not found")
			return response.NotFound(c, "snapshot not found")
		case errors.Is(err, apperrors.ErrCorruptSnapshot):
			h.auditRejected(c, name, "corrupt snapshot")
			return response.Error(c, err)
		default:
			return response.Error(c, err)
		}
	}

	return response.SuccessWithMessage(c, map[string]interface{}{
		"restored_messages": restored,
	}, "restore completed")
}

// Delete handles DELETE /api/backups/:name
func (h *BackupHandler) Delete(c echo.Context) error {
	name := c.Param("name")
	if name == "" {
		return response.BadRequest(c, "snapshot name is required")
	}

	if err := h.backup.DeleteSnapshot(name); err != nil {
		if errors.Is(err, storage.ErrPathTraversal) {
			if h.audit != nil {
				h.audit.PathTraversalAttempt(c.RealIP(), c.Path(), name)
			}
			return response.BadRequest(c, "invalid snapshot name")
		}
		if apperrors.IsNotFound(err) {
			return response.NotFound(c, "snapshot not found")
		}
		return response.Error(c, err)
	}

	return response.NoContent(c)
}

func (h *BackupHandler) auditRejected(c echo.Context, snapshot, reason string) {
	if h.audit != nil {
		h.audit.RestoreRejected(c.RealIP(), snapshot, reason)
	}
}
