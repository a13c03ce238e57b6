package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pulsetrack-go/pkg/auth"
	"pulsetrack-go/pkg/config"
	"pulsetrack-go/pkg/database"
	apperrors "pulsetrack-go/pkg/errors"
	httpserver "pulsetrack-go/pkg/http"
	"pulsetrack-go/pkg/http/handlers"
	"pulsetrack-go/pkg/logging"
	"pulsetrack-go/pkg/repository"
	"pulsetrack-go/pkg/services"
	"pulsetrack-go/pkg/websocket"
)

const retentionSweepInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if err := logging.Init(logging.LogLevel(cfg.Logging.Level), cfg.Logging.Format); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	logger := logging.Get()
	defer func() { _ = logger.Sync() }()

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Repositories
	activityRepo := repository.NewActivityRepository(db)
	presenceRepo := repository.NewPresenceRepository(db)
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	// Auth
	passwordMgr := auth.NewPasswordManager()
	tokenMgr := auth.NewTokenManager(cfg.Auth.SecretKey, cfg.Auth.TokenExpiry, cfg.Auth.Issuer)
	sessionMgr := auth.NewSessionManager(userRepo, sessionRepo, passwordMgr, tokenMgr, cfg.Auth.SessionExpiry)

	// Services
	presenceSvc := services.NewPresenceService(presenceRepo)
	activitySvc := services.NewActivityService(activityRepo, presenceSvc)

	// Realtime
	hub := websocket.NewHub()
	registry := websocket.NewRegistry()
	gateway := websocket.NewGateway(hub, registry, presenceSvc, activitySvc, sessionMgr, logger)

	errHandler := apperrors.NewHandler(true)

	server := httpserver.NewServer(cfg, logger, httpserver.Deps{
		Activity:   handlers.NewActivityHandler(activitySvc, errHandler),
		Status:     handlers.NewStatusHandler(presenceSvc, errHandler),
		Auth:       handlers.NewAuthHandler(sessionMgr, errHandler),
		Health:     handlers.NewHealthHandler(db),
		Gateway:    gateway,
		Sessions:   sessionMgr,
		ErrHandler: errHandler,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run(ctx)
	go runRetentionSweeper(ctx, activitySvc, sessionRepo, cfg.Retention.DaysToKeep, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", zap.Error(err))
		}
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

// runRetentionSweeper periodically hard-deletes activity events past the
// retention window and prunes expired sessions.
func runRetentionSweeper(
	ctx context.Context,
	activity services.ActivityService,
	sessions repository.SessionRepository,
	daysToKeep int,
	logger *logging.Logger,
) {
	ticker := time.NewTicker(retentionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := activity.CleanupOldEvents(ctx, daysToKeep)
			if err != nil {
				logger.Error("retention sweep failed", zap.Error(err))
			} else if deleted > 0 {
				logger.Info("retention sweep complete", zap.Int64("deleted", deleted))
			}

			expired, err := sessions.DeleteExpired(ctx)
			if err != nil {
				logger.Error("session sweep failed", zap.Error(err))
			} else if expired > 0 {
				logger.Info("session sweep complete", zap.Int64("expired", expired))
			}
		}
	}
}
