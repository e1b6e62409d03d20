package serverutils

import (
	"errors"

	"notekeeper-be/internal/pkg/apperror"
	"notekeeper-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

const internalErrorMessage = "Internal Server Error!"

// ErrorHandlerMiddleware turns any error returned further down the chain into
// the JSON error envelope. Register it before recover so panics end up here.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return writeError(ctx, log, err)
	}
}

// ErrorHandler is the fiber.Config variant for errors raised outside the
// middleware chain.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		return writeError(ctx, log, err)
	}
}

func writeError(ctx *fiber.Ctx, log logger.ILogger, err error) error {
	status, message := resolve(err)

	details := map[string]interface{}{
		"method": ctx.Method(),
		"path":   ctx.Path(),
		"status": status,
		"error":  err,
	}
	if status >= fiber.StatusInternalServerError {
		log.Error("http", "request failed", details)
	} else {
		log.Warn("http", message, details)
	}

	return ctx.Status(status).JSON(ErrorResponse(message))
}

func resolve(err error) (int, string) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		status := appErr.StatusCode()
		if status >= fiber.StatusInternalServerError {
			return status, internalErrorMessage
		}
		return status, appErr.Message
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		if fiberErr.Code >= fiber.StatusInternalServerError {
			return fiberErr.Code, internalErrorMessage
		}
		return fiberErr.Code, fiberErr.Message
	}

	return fiber.StatusInternalServerError, internalErrorMessage
}
