// Package api wires the HTTP surface: routes, middleware, handlers.
package api

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/rpsms/sms-organizer-backend/internal/api/handlers"
	"github.com/rpsms/sms-organizer-backend/internal/api/middleware"
	"github.com/rpsms/sms-organizer-backend/internal/logger"
	"github.com/rpsms/sms-organizer-backend/internal/repository"
	"github.com/rpsms/sms-organizer-backend/internal/services"
	"github.com/rpsms/sms-organizer-backend/internal/websocket"
	"gorm.io/gorm"
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	DB        *gorm.DB
	Intake    *services.IntakeService
	Filters   *services.FilterEngine
	Retention *services.RetentionService
	Backup    *services.BackupService
	Summary   *services.SummaryService
	Hub       *websocket.Hub
	Logger    *slog.Logger

	// Security configuration
	APIKey         string   // API key for authentication (empty = disabled)
	AllowedOrigins []string // Allowed CORS and WebSocket origins
	AppEnv         string   // development or production
	RateLimit      float64  // Requests per second per IP
	RateBurst      int      // Burst size for rate limiter
}

// NewRouter creates and configures the Echo router with all routes
func NewRouter(cfg *RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Security middleware, outermost first
	e.Use(middleware.Recover())
	e.Use(middleware.SecureHeaders())
	e.Use(middleware.SecureCORS(cfg.AllowedOrigins, cfg.AppEnv))
	e.Use(middleware.RateLimiter(cfg.RateLimit, cfg.RateBurst, cfg.Logger))
	if cfg.Logger != nil {
		e.Use(middleware.RequestLogger(cfg.Logger))
	}

	messageRepo := repository.NewMessageRepository(cfg.DB)
	filterRepo := repository.NewFilterRepository(cfg.DB)

	var publisher services.EventPublisher
	if cfg.Hub != nil {
		publisher = cfg.Hub
	}

	audit := logger.NewSecurityLogger()
	if cfg.Logger != nil {
		audit = logger.NewSecurityLoggerWithHandler(cfg.Logger.Handler())
	}

	healthHandler := handlers.NewHealthHandler(cfg.DB)
	messageHandler := handlers.NewMessageHandler(messageRepo, cfg.Intake, cfg.Retention, publisher)
	filterHandler := handlers.NewFilterHandler(cfg.Filters, filterRepo)
	backupHandler := handlers.NewBackupHandler(cfg.Backup, audit)
	systemHandler := handlers.NewSystemHandler(cfg.Retention, cfg.Summary)

	// Health routes (no auth required)
	e.GET("/health", healthHandler.Health)
	e.GET("/ready", healthHandler.Ready)

	// WebSocket event feed
	if cfg.Hub != nil {
		upgrader := websocket.NewSecureUpgrader(cfg.AllowedOrigins, cfg.Logger)
		wsHandler := handlers.NewWebSocketHandler(cfg.Hub, upgrader, cfg.Logger)
		e.GET("/ws", wsHandler.Connect)
	}

	// API routes
	api := e.Group("/api")
	api.Use(middleware.APIKeyAuth(cfg.APIKey, cfg.Logger))

	// Message routes
	messages := api.Group("/messages")
	messages.POST("", messageHandler.Create)
	messages.GET("", messageHandler.List)
	messages.GET("/codes", messageHandler.Codes)
	messages.GET("/:id", messageHandler.Get)
	messages.PATCH("/:id/read", messageHandler.MarkAsRead)
	messages.PATCH("/:id/save", messageHandler.Save)
	messages.DELETE("/:id", messageHandler.Delete)

	// Filter routes
	filters := api.Group("/filters")
	filters.POST("", filterHandler.Create)
	filters.POST("/reset", filterHandler.ResetDefaults)
	filters.GET("", filterHandler.List)
	filters.GET("/:id", filterHandler.Get)
	filters.PUT("/:id", filterHandler.Update)
	filters.DELETE("/:id", filterHandler.Delete)

	// Folder routes
	api.GET("/folders/:name/messages", filterHandler.FolderMessages)

	// Backup routes
	backups := api.Group("/backups")
	backups.POST("", backupHandler.Create)
	backups.GET("", backupHandler.List)
	backups.POST("/:name/restore", backupHandler.Restore)
	backups.DELETE("/:name", backupHandler.Delete)

	// Maintenance routes
	api.POST("/retention/sweep", systemHandler.Sweep)
	api.GET("/retention/config", systemHandler.RetentionConfig)
	api.GET("/summary", systemHandler.Summary)

	return e
}
