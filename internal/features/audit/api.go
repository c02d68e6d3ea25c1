package audit

import (
	"crm-reports/internal/config"
	"crm-reports/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuditApi struct {
	controller  *AuditController
	config      *config.Config
	roleService middleware.RoleService
}

func NewAuditApi(controller *AuditController, config *config.Config, roleService middleware.RoleService) *AuditApi {
	return &AuditApi{
		controller:  controller,
		config:      config,
		roleService: roleService,
	}
}

func (h *AuditApi) Setup(app *fiber.App) {
	audit := app.Group("/api/audit-logs", middleware.AuthMiddleware(h.config.SkipAuth, h.config.DefaultTenant))

	audit.Get("/", middleware.RequirePermission(h.roleService, h.config.SkipAuth, "audit:read"), h.controller.ListLogs)
}
