package middleware

import (
	"context"
	"slices"

	"crm-reports/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// RoleService resolves permission strings for role names. Declared here
// so feature packages can depend on middleware without a cycle through
// the role feature.
type RoleService interface {
	GetPermissionsForRoles(ctx context.Context, roleNames []string) ([]string, error)
}

// RequirePermission checks if the user has a specific permission,
// e.g. "reports:create".
func RequirePermission(roleService RoleService, skipAuth bool, requiredPermission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if skipAuth {
			return c.Next()
		}

		claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		permissions, err := roleService.GetPermissionsForRoles(c.UserContext(), claims.Roles)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal Server Error",
			})
		}

		if !slices.Contains(permissions, requiredPermission) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: Insufficient permissions",
			})
		}

		return c.Next()
	}
}
