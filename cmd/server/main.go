package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rpsms/sms-organizer-backend/internal/api"
	"github.com/rpsms/sms-organizer-backend/internal/config"
	"github.com/rpsms/sms-organizer-backend/internal/database"
	"github.com/rpsms/sms-organizer-backend/internal/repository"
	"github.com/rpsms/sms-organizer-backend/internal/services"
	"github.com/rpsms/sms-organizer-backend/internal/smtp"
	"github.com/rpsms/sms-organizer-backend/internal/storage"
	"github.com/rpsms/sms-organizer-backend/internal/websocket"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadWithValidation()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)
	cfg.LogConfig(logger)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	snapshots, err := storage.NewLocalSnapshotStorage(cfg.BackupDir)
	if err != nil {
		logger.Error("failed to initialize snapshot storage", slog.Any("error", err))
		os.Exit(1)
	}

	messageRepo := repository.NewMessageRepository(db)
	filterRepo := repository.NewFilterRepository(db)

	hub := websocket.NewHub(logger)
	go hub.Run()

	filterEngine := services.NewFilterEngine(filterRepo, messageRepo, hub, logger)

	retention := services.NewRetentionService(messageRepo, filterRepo,
		func() services.RetentionConfig {
			return services.RetentionConfig{
				AutoDeleteDays:  cfg.AutoDeleteDays,
				AutoDeleteCodes: cfg.AutoDeleteCodes,
				AutoDeletePromo: cfg.AutoDeletePromo,
				CodeExpiryHours: cfg.CodeExpiryHours,
			}
		}, hub, cfg.SweepInterval, logger)

	backup := services.NewBackupService(db, messageRepo, snapshots,
		func() services.BackupConfig {
			return services.BackupConfig{
				Enabled:  cfg.AutoBackupEnabled,
				Interval: cfg.BackupInterval,
			}
		}, hub, logger)

	summary := services.NewSummaryService(messageRepo, hub, cfg.SummaryInterval, logger)

	intake := services.NewIntakeService(messageRepo, filterEngine, retention, hub,
		time.Duration(cfg.CodeExpiryHours)*time.Hour, logger)

	retention.Start()
	defer retention.Stop()
	if cfg.AutoBackupEnabled {
		backup.Start()
		defer backup.Stop()
	}
	if cfg.SummaryEnabled {
		summary.Start()
		defer summary.Stop()
	}

	// SMTP gateway: carrier email-to-SMS messages come in here.
	smtpBackend := smtp.NewBackend(intake, logger)
	smtpServer := smtp.NewSecureServer(smtpBackend, &smtp.ServerConfig{
		Addr:   fmt.Sprintf(":%d", cfg.SMTPPort),
		Domain: "localhost",
	})
	go func() {
		logger.Info("SMTP gateway listening", slog.String("addr", smtpServer.Addr))
		if err := smtpServer.ListenAndServe(); err != nil {
			logger.Error("SMTP server stopped", slog.Any("error", err))
		}
	}()

	router := api.NewRouter(&api.RouterConfig{
		DB:             db,
		Intake:         intake,
		Filters:        filterEngine,
		Retention:      retention,
		Backup:         backup,
		Summary:        summary,
		Hub:            hub,
		Logger:         logger,
		APIKey:         cfg.APIKey,
		AllowedOrigins: splitOrigins(cfg.AllowedOrigins),
		AppEnv:         cfg.AppEnv,
		RateLimit:      cfg.RateLimitRequests,
		RateBurst:      cfg.RateLimitBurst,
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.APIPort)
		logger.Info("API server listening", slog.String("addr", addr))
		if err := router.Start(addr); err != nil {
			logger.Error("API server stopped", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := smtpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("SMTP shutdown failed", slog.Any("error", err))
	}
	if err := router.Shutdown(shutdownCtx); err != nil {
		logger.Error("API shutdown failed", slog.Any("error", err))
	}

	// Let in-flight filter re-evaluations land before the store closes.
	filterEngine.WaitForReevaluations()

	logger.Info("server stopped")
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
