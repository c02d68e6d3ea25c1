package report

import (
	"crm-reports/internal/config"
	"crm-reports/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReportApi struct {
	controller  *ReportController
	config      *config.Config
	roleService middleware.RoleService
}

func NewReportApi(controller *ReportController, cfg *config.Config, roleService middleware.RoleService) *ReportApi {
	return &ReportApi{
		controller:  controller,
		config:      cfg,
		roleService: roleService,
	}
}

func (api *ReportApi) Setup(app *fiber.App) {
	reports := app.Group("/api/reports", middleware.AuthMiddleware(api.config.SkipAuth, api.config.DefaultTenant))

	reports.Post("/", middleware.RequirePermission(api.roleService, api.config.SkipAuth, "reports:create"), api.controller.Create)
	reports.Get("/", middleware.RequirePermission(api.roleService, api.config.SkipAuth, "reports:read"), api.controller.List)
	reports.Post("/preview", middleware.RequirePermission(api.roleService, api.config.SkipAuth, "reports:read"), api.controller.Preview)
	reports.Get("/:id", middleware.RequirePermission(api.roleService, api.config.SkipAuth, "reports:read"), api.controller.Get)
	reports.Put("/:id", middleware.RequirePermission(api.roleService, api.config.SkipAuth, "reports:update"), api.controller.Update)
	reports.Delete("/:id", middleware.RequirePermission(api.roleService, api.config.SkipAuth, "reports:delete"), api.controller.Delete)
	reports.Get("/:id/run", middleware.RequirePermission(api.roleService, api.config.SkipAuth, "reports:read"), api.controller.Run)
	reports.Get("/:id/records", middleware.RequirePermission(api.roleService, api.config.SkipAuth, "reports:read"), api.controller.Records)
	reports.Post("/:id/clone", middleware.RequirePermission(api.roleService, api.config.SkipAuth, "reports:create"), api.controller.Clone)
	reports.Post("/:id/favourite", middleware.RequirePermission(api.roleService, api.config.SkipAuth, "reports:update"), api.controller.Favourite)
	reports.Put("/:id/folder", middleware.RequirePermission(api.roleService, api.config.SkipAuth, "reports:update"), api.controller.Move)
}
