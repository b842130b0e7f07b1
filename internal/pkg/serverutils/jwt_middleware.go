package serverutils

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	LocalUserId = "user_id"
	LocalRole   = "role"
)

func parseToken(tokenStr string) (jwt.MapClaims, bool) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	return claims, ok
}

// JwtMiddleware rejects requests without a valid bearer token.
func JwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorNotification("Authentication required", ErrCodeClient))
	}

	claims, ok := parseToken(authHeader[7:])
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorNotification("Invalid token", ErrCodeClient))
	}

	ctx.Locals(LocalUserId, claims["user_id"])
	ctx.Locals(LocalRole, claims["role"])
	return ctx.Next()
}

// OptionalJwtMiddleware resolves the caller identity when a valid token
// is present and continues anonymously otherwise. Session reads need this
// because shared sessions are visible without authentication.
func OptionalJwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) >= 7 && authHeader[:7] == "Bearer " {
		if claims, ok := parseToken(authHeader[7:]); ok {
			ctx.Locals(LocalUserId, claims["user_id"])
			ctx.Locals(LocalRole, claims["role"])
		}
	}
	return ctx.Next()
}

// AIBackendMiddleware guards the non-interactive AI integration routes
// with a shared secret header. When no secret is configured the check is
// skipped (the trust boundary then lives in the network layer).
func AIBackendMiddleware(ctx *fiber.Ctx) error {
	secret := os.Getenv("AI_BACKEND_SECRET")
	if secret == "" {
		return ctx.Next()
	}
	if ctx.Get("X-AI-Backend-Secret") != secret {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorNotification("Invalid backend credentials", ErrCodeClient))
	}
	return ctx.Next()
}
