package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/atlasbank/atlasbank/internal/auth"
	"github.com/atlasbank/atlasbank/internal/config"
)

// RequireRole validates the bearer access token and gates the route on the
// token's role claim. The subject lands in the "customer_id" or "admin_id"
// local depending on the role.
func RequireRole(cfg config.Config, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])
		claims, err := auth.ParseAndVerifyHS256(tokenStr, []byte(cfg.JWTSecret))
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		exp, _ := claims["exp"].(float64)
		if time.Now().Unix() >= int64(exp) {
			return fiber.NewError(http.StatusUnauthorized, "token expired")
		}
		sub, _ := claims["sub"].(string)
		tokenRole, _ := claims["role"].(string)
		if sub == "" || tokenRole != role {
			return fiber.NewError(http.StatusForbidden, "insufficient role")
		}

		switch role {
		case auth.RoleAdmin:
			c.Locals("admin_id", sub)
		default:
			c.Locals("customer_id", sub)
		}
		return c.Next()
	}
}
