package draft

import (
	"crm-reports/internal/config"
	"crm-reports/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DraftApi struct {
	controller  *DraftController
	config      *config.Config
	roleService middleware.RoleService
}

func NewDraftApi(controller *DraftController, cfg *config.Config, roleService middleware.RoleService) *DraftApi {
	return &DraftApi{
		controller:  controller,
		config:      cfg,
		roleService: roleService,
	}
}

func (api *DraftApi) Setup(app *fiber.App) {
	drafts := app.Group("/api/reports/:id/draft", middleware.AuthMiddleware(api.config.SkipAuth, api.config.DefaultTenant))

	read := middleware.RequirePermission(api.roleService, api.config.SkipAuth, "reports:read")
	edit := middleware.RequirePermission(api.roleService, api.config.SkipAuth, "reports:update")

	drafts.Get("/", read, api.controller.State)
	drafts.Get("/preview", read, api.controller.Preview)
	drafts.Post("/save", edit, api.controller.Save)
	drafts.Post("/discard", edit, api.controller.Discard)

	drafts.Post("/columns/add", edit, api.controller.AddColumn)
	drafts.Post("/columns/remove", edit, api.controller.RemoveColumn)
	drafts.Post("/row-groups/toggle", edit, api.controller.ToggleRowGroup)
	drafts.Post("/row-groups/remove", edit, api.controller.RemoveRowGroup)
	drafts.Post("/column-groups/toggle", edit, api.controller.ToggleColumnGroup)
	drafts.Post("/column-groups/remove", edit, api.controller.RemoveColumnGroup)

	drafts.Post("/filters/add", edit, api.controller.AddFilter)
	drafts.Post("/filters/operator", edit, api.controller.UpdateFilterOperator)
	drafts.Post("/filters/value", edit, api.controller.UpdateFilterValue)
	drafts.Post("/filters/logic", edit, api.controller.UpdateFilterLogic)
	drafts.Post("/filters/remove", edit, api.controller.RemoveFilter)

	drafts.Post("/aggregates/toggle", edit, api.controller.ToggleAggregate)
	drafts.Post("/aggregates/function", edit, api.controller.UpdateAggregateFunc)
	drafts.Post("/aggregates/remove", edit, api.controller.RemoveAggregate)

	drafts.Post("/chart/type", edit, api.controller.UpdateChartType)
	drafts.Post("/chart/fields", edit, api.controller.UpdateChartFields)
}
