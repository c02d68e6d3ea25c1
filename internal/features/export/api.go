package export

import (
	"crm-reports/internal/config"
	"crm-reports/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ExportApi struct {
	controller  *ExportController
	config      *config.Config
	roleService middleware.RoleService
}

func NewExportApi(controller *ExportController, cfg *config.Config, roleService middleware.RoleService) *ExportApi {
	return &ExportApi{
		controller:  controller,
		config:      cfg,
		roleService: roleService,
	}
}

func (api *ExportApi) Setup(app *fiber.App) {
	reports := app.Group("/api/reports", middleware.AuthMiddleware(api.config.SkipAuth, api.config.DefaultTenant))

	reports.Get("/:id/export", middleware.RequirePermission(api.roleService, api.config.SkipAuth, "reports:read"), api.controller.Export)
}
