package serverutils

import (
	"strings"

	"notekeeper-be/internal/pkg/apperror"
	"notekeeper-be/internal/pkg/logger"
	"notekeeper-be/internal/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userIDLocal = "user_id"

// AuthFailureRecorder counts rejected requests. The metrics collector
// satisfies it.
type AuthFailureRecorder interface {
	RecordAuthFailure(reason string)
}

// JwtMiddleware guards a route: no bearer token is 401, a token that fails
// verification is 403. recorder may be nil.
func JwtMiddleware(verifier token.Verifier, log logger.ILogger, recorder AuthFailureRecorder) fiber.Handler {
	reject := func(ctx *fiber.Ctx, reason string, err *apperror.Error) error {
		if recorder != nil {
			recorder.RecordAuthFailure(reason)
		}
		log.Warn("auth_guard", "request rejected", map[string]interface{}{
			"reason": reason,
			"path":   ctx.Path(),
			"ip":     ctx.IP(),
		})
		return err
	}

	return func(ctx *fiber.Ctx) error {
		tokenStr, ok := bearerToken(ctx.Get(fiber.HeaderAuthorization))
		if !ok {
			return reject(ctx, "missing_token", apperror.Unauthorized("Access token is missing"))
		}

		userID, err := verifier.Verify(tokenStr)
		if err != nil {
			return reject(ctx, "invalid_token", apperror.Forbidden("Invalid or expired token"))
		}

		ctx.Locals(userIDLocal, userID)
		return ctx.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, value, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

// GetUserID returns the caller id stored by JwtMiddleware.
func GetUserID(ctx *fiber.Ctx) (uuid.UUID, error) {
	userID, ok := ctx.Locals(userIDLocal).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, apperror.Unauthorized("Access token is missing")
	}
	return userID, nil
}
