package folder

import (
	"crm-reports/internal/config"
	"crm-reports/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type FolderApi struct {
	controller  *FolderController
	config      *config.Config
	roleService middleware.RoleService
}

func NewFolderApi(controller *FolderController, cfg *config.Config, roleService middleware.RoleService) *FolderApi {
	return &FolderApi{
		controller:  controller,
		config:      cfg,
		roleService: roleService,
	}
}

func (api *FolderApi) Setup(app *fiber.App) {
	folders := app.Group("/api/folders", middleware.AuthMiddleware(api.config.SkipAuth, api.config.DefaultTenant))

	folders.Post("/", middleware.RequirePermission(api.roleService, api.config.SkipAuth, "reports:create"), api.controller.Create)
	folders.Get("/", middleware.RequirePermission(api.roleService, api.config.SkipAuth, "reports:read"), api.controller.List)
	folders.Get("/:id", middleware.RequirePermission(api.roleService, api.config.SkipAuth, "reports:read"), api.controller.Get)
	folders.Put("/:id", middleware.RequirePermission(api.roleService, api.config.SkipAuth, "reports:update"), api.controller.Update)
	folders.Put("/:id/move", middleware.RequirePermission(api.roleService, api.config.SkipAuth, "reports:update"), api.controller.Move)
	folders.Post("/:id/favourite", middleware.RequirePermission(api.roleService, api.config.SkipAuth, "reports:update"), api.controller.Favourite)
	folders.Delete("/:id", middleware.RequirePermission(api.roleService, api.config.SkipAuth, "reports:delete"), api.controller.Delete)
}
