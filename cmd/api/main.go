package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/focusmate-ai/focus-service/internal/api/http"
	"github.com/focusmate-ai/focus-service/internal/api/http/handlers"
	"github.com/focusmate-ai/focus-service/internal/ai"
	"github.com/focusmate-ai/focus-service/internal/auth"
	"github.com/focusmate-ai/focus-service/internal/config"
	"github.com/focusmate-ai/focus-service/internal/events"
	"github.com/focusmate-ai/focus-service/internal/observability"
	"github.com/focusmate-ai/focus-service/internal/persistence"
	"github.com/focusmate-ai/focus-service/internal/ratelimit"
	"github.com/focusmate-ai/focus-service/internal/repository"
	"github.com/focusmate-ai/focus-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := persistence.NewExecutor(cfg.Postgres, logger)
	defer db.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, db, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	federated := auth.NewFederatedVerifier(cfg.Federated)
	gate := auth.NewGate(tokens, federated, userRepo, cfg.Federated, logger)

	var aiLimiter ratelimit.Limiter
	if redis != nil {
		aiLimiter = ratelimit.NewRedisLimiter(redis.Client, "ai_rate", cfg.AI.RateLimitMax, cfg.AI.RateLimitWindow)
	} else {
		aiLimiter = ratelimit.NewMemoryLimiter(cfg.AI.RateLimitMax, cfg.AI.RateLimitWindow)
	}

	dispatcher := events.NewInMemoryDispatcher()
	dispatcher.Subscribe(events.EventSessionCompleted, func(_ context.Context, event events.Event) error {
		if payload, ok := event.Payload.(events.SessionCompletedPayload); ok {
			logger.Info("session completed",
				zap.String("session_id", payload.Session.ID),
				zap.Int("duration_minutes", payload.Session.DurationMinutes))
		}
		return nil
	})
	service.RegisterInteractionRecorder(dispatcher, interactionRepo, logger)

	authService := service.NewAuthService(cfg, userRepo, tokens, logger)
	userService := service.NewUserService(userRepo, taskRepo, sessionRepo)
	taskService := service.NewTaskService(taskRepo)
	sessionService := service.NewSessionService(sessionRepo, dispatcher, logger)
	aiService := service.NewAIService(ai.NewClient(cfg.AI), interactionRepo, aiLimiter, dispatcher, logger)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, cfg, logger, metrics)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(db, 5*time.Second, cfg.App.Version),
		Auth:     handlers.NewAuthHandler(authService),
		Users:    handlers.NewUsersHandler(userService),
		Tasks:    handlers.NewTasksHandler(taskService),
		Sessions: handlers.NewSessionsHandler(sessionService),
		AI:       handlers.NewAIHandler(aiService, gate),
		Gate:     gate,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
