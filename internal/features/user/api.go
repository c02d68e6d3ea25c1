package user

import (
	"crm-reports/internal/config"
	"crm-reports/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserApi struct {
	controller  *UserController
	config      *config.Config
	roleService middleware.RoleService
}

func NewUserApi(controller *UserController, cfg *config.Config, roleService middleware.RoleService) *UserApi {
	return &UserApi{
		controller:  controller,
		config:      cfg,
		roleService: roleService,
	}
}

func (api *UserApi) Setup(app *fiber.App) {
	users := app.Group("/api/users", middleware.AuthMiddleware(api.config.SkipAuth, api.config.DefaultTenant))

	// Any authenticated user can read their own profile.
	users.Get("/me", api.controller.Me)

	users.Get("/", middleware.RequirePermission(api.roleService, api.config.SkipAuth, "users:read"), api.controller.List)
	users.Get("/:id", middleware.RequirePermission(api.roleService, api.config.SkipAuth, "users:read"), api.controller.Get)
	users.Post("/", middleware.RequirePermission(api.roleService, api.config.SkipAuth, "users:manage"), api.controller.Create)
	users.Put("/:id/status", middleware.RequirePermission(api.roleService, api.config.SkipAuth, "users:manage"), api.controller.UpdateStatus)
	users.Put("/:id/roles", middleware.RequirePermission(api.roleService, api.config.SkipAuth, "users:manage"), api.controller.UpdateRoles)
	users.Delete("/:id", middleware.RequirePermission(api.roleService, api.config.SkipAuth, "users:manage"), api.controller.Delete)
}
