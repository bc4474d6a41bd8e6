package middleware

import (
	"context"
	"strings"

	"rna/pkg/httperror"

	"github.com/gofiber/fiber/v2"
)

type contextKey string

const (
	userIDKey    contextKey = "UserID"
	userEmailKey contextKey = "UserEmail"
	jwtKey       contextKey = "Jwt"
)

func NewSecurityHeadersMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get("User-ID"))
		userEmail := strings.TrimSpace(c.Get("User-Email"))
		authorization := strings.TrimSpace(c.Get("Authorization"))

		if userID == "" || userEmail == "" || authorization == "" {
			return unauthorized(c)
		}

		userCtx := c.UserContext()
		if userCtx == nil {
			userCtx = context.Background()
		}

		c.SetUserContext(WithUser(userCtx, userID, userEmail, authorization))
		return c.Next()
	}
}

// WithUser stores the caller identity the security headers carried.
func WithUser(ctx context.Context, userID, userEmail, jwt string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, userEmailKey, userEmail)
	return context.WithValue(ctx, jwtKey, jwt)
}

// UserID returns the authenticated user id, or "" outside an authenticated request.
func UserID(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}

func UserEmail(ctx context.Context) string {
	userEmail, _ := ctx.Value(userEmailKey).(string)
	return userEmail
}

func unauthorized(c *fiber.Ctx) error {
	err := httperror.Unauthorized(
		"rna.security_headers.unauthorized",
		"Security headers mismatch",
		nil,
	)

	return c.Status(err.Status).JSON(fiber.Map{
		"code":    err.Code,
		"message": err.Message,
	})
}
