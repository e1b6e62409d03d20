package serverutils

import (
	"time"

	"notekeeper-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger writes one access line per request. Mount it outside the
// error handler so the logged status is the one the client received.
func RequestLogger(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()

		log.Info("http", "request", map[string]interface{}{
			"method":     ctx.Method(),
			"route":      ctx.Route().Path,
			"path":       ctx.Path(),
			"status":     ctx.Response().StatusCode(),
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         ctx.IP(),
		})
		return err
	}
}
