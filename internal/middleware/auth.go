package middleware

import (
	"context"

	"crm-reports/internal/common/models"
	"crm-reports/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates JWT tokens and injects user claims into the
// request context. Repositories read the tenant id from the user
// context, so both Locals and UserContext are populated here.
func AuthMiddleware(skipAuth bool, devTenant string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if skipAuth {
			dummyClaims := &utils.UserClaims{
				UserID:   "dev-admin-id",
				TenantID: devTenant,
				Roles:    []string{"admin"},
			}
			attachClaims(c, dummyClaims)
			return c.Next()
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
			})
		}

		// Extract token from "Bearer <token>"
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		token := authHeader[7:]
		claims, err := utils.ValidateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		attachClaims(c, claims)
		return c.Next()
	}
}

func attachClaims(c *fiber.Ctx, claims *utils.UserClaims) {
	c.Locals(utils.UserClaimsKey, claims)
	c.Locals("user_id", claims.UserID)

	ctx := context.WithValue(c.UserContext(), utils.UserClaimsKey, claims)
	ctx = context.WithValue(ctx, models.TenantIDKey, claims.TenantID)
	c.SetUserContext(ctx)
}
