package http

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/focusmate-ai/focus-service/internal/api/respond"
	"github.com/focusmate-ai/focus-service/internal/config"
	"github.com/focusmate-ai/focus-service/internal/observability"
	"github.com/focusmate-ai/focus-service/internal/persistence"
	apperrors "github.com/focusmate-ai/focus-service/pkg/util"
)

// RegisterMiddlewares attaches global middlewares: CORS with preflight
// short-circuit, request timeout, error handling, and request logging.
func RegisterMiddlewares(app *fiber.App, cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) {
	app.Use(corsMiddleware(cfg.CORS))
	if timeout := cfg.App.RequestTimeout(); timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
}

// corsMiddleware applies allow-list CORS headers to every response,
// including errors, and answers OPTIONS preflights before any handler.
func corsMiddleware(cfg config.CORSConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		respond.ApplyCORS(c, cfg)
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusOK)
		}
		return c.Next()
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := toDomainError(err)
				if metrics != nil {
					metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				}
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed",
						zap.String("request_id", observability.RequestID(c)),
						zap.String("code", domainErr.Code),
						zap.Error(domainErr),
					)
				} else {
					logger.Info("request rejected",
						zap.String("request_id", observability.RequestID(c)),
						zap.String("code", domainErr.Code),
						zap.String("message", domainErr.Message),
					)
				}
				// Only the category-appropriate message reaches the body;
				// the wrapped cause stays in the logs.
				err = respond.Error(c, domainErr.HTTPStatus, domainErr.Message, domainErr.Details)
			}
		}()
		return c.Next()
	}
}

// toDomainError maps transport failures that escaped the retry loop onto
// the error taxonomy before rendering.
func toDomainError(err error) *apperrors.DomainError {
	var te *persistence.TransportError
	if errors.As(err, &te) {
		return apperrors.ToDomainError(apperrors.NewTransportFailure(te))
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return apperrors.NewDomainError("HTTP_ERROR", fiberErr.Message, fiberErr.Code, nil)
	}
	return apperrors.ToDomainError(err)
}
