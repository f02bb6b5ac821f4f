package serverutils

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const DefaultUserId = "default"

// IdentityMiddleware resolves the acting user. A valid Bearer token wins,
// then the X-User-Id header, then the shared default identity. Progress
// tracking works anonymously; the token is never required.
func IdentityMiddleware(ctx *fiber.Ctx) error {
	userId := DefaultUserId

	if header := ctx.Get("X-User-Id"); header != "" {
		userId = header
	}

	if auth := ctx.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if id := userIdFromToken(auth[7:]); id != "" {
			userId = id
		}
	}

	ctx.Locals("user_id", userId)
	return ctx.Next()
}

func userIdFromToken(tokenStr string) string {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return ""
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}

	id, _ := claims["user_id"].(string)
	return id
}
