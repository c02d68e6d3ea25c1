package role

import (
	"crm-reports/internal/config"
	"crm-reports/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type RoleApi struct {
	controller  *RoleController
	config      *config.Config
	roleService RoleService
}

func NewRoleApi(controller *RoleController, cfg *config.Config, roleService RoleService) *RoleApi {
	return &RoleApi{
		controller:  controller,
		config:      cfg,
		roleService: roleService,
	}
}

func (api *RoleApi) Setup(app *fiber.App) {
	roles := app.Group("/api/roles", middleware.AuthMiddleware(api.config.SkipAuth, api.config.DefaultTenant))

	roles.Get("/", middleware.RequirePermission(api.roleService, api.config.SkipAuth, PermRolesRead), api.controller.List)
	roles.Get("/permissions", middleware.RequirePermission(api.roleService, api.config.SkipAuth, PermRolesRead), api.controller.Permissions)
	roles.Get("/:id", middleware.RequirePermission(api.roleService, api.config.SkipAuth, PermRolesRead), api.controller.Get)
	roles.Post("/", middleware.RequirePermission(api.roleService, api.config.SkipAuth, PermRolesManage), api.controller.Create)
	roles.Put("/:id", middleware.RequirePermission(api.roleService, api.config.SkipAuth, PermRolesManage), api.controller.Update)
	roles.Delete("/:id", middleware.RequirePermission(api.roleService, api.config.SkipAuth, PermRolesManage), api.controller.Delete)
}
