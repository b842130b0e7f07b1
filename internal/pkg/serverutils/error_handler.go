package serverutils

import (
	"errors"

	"tourism-chat-be/internal/pkg/apperr"
	"tourism-chat-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns service errors into the notification
// envelope. Every error is logged with request context before the
// response is written; internals leak only in development mode.
func ErrorHandlerMiddleware(log logger.ILogger, isDev bool) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status, message := mapError(err)
		details := map[string]interface{}{
			"method": ctx.Method(),
			"path":   ctx.Path(),
			"error":  err.Error(),
		}

		code := ErrCodeClient
		if status >= fiber.StatusInternalServerError {
			code = ErrCodeServer
			log.Error("http", message, details)
			if !isDev {
				message = "Internal server error"
			}
		} else {
			log.Warn("http", message, details)
		}

		body := ErrorNotification(message, code)
		if isDev && status >= fiber.StatusInternalServerError {
			body["detail"] = err.Error()
		}
		return ctx.Status(status).JSON(body)
	}
}

func mapError(err error) (int, string) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case apperr.KindInvalidInput:
			return fiber.StatusBadRequest, appErr.Message
		case apperr.KindUnauthenticated:
			return fiber.StatusUnauthorized, appErr.Message
		case apperr.KindForbidden:
			return fiber.StatusForbidden, appErr.Message
		case apperr.KindNotFound:
			return fiber.StatusNotFound, appErr.Message
		case apperr.KindConflict:
			return fiber.StatusConflict, appErr.Message
		case apperr.KindDataCorrupted:
			// Deliberately served as 404: a broken record is not
			// distinguishable from a missing one to outside callers.
			return fiber.StatusNotFound, appErr.Message
		default:
			return fiber.StatusInternalServerError, appErr.Message
		}
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiberErr.Message
	}

	return fiber.StatusInternalServerError, "Internal server error"
}
