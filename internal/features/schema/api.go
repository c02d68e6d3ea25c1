package schema

import (
	"crm-reports/internal/config"
	"crm-reports/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SchemaApi struct {
	Controller *SchemaController
	Config     *config.Config
}

func NewSchemaApi(controller *SchemaController, config *config.Config) *SchemaApi {
	return &SchemaApi{
		Controller: controller,
		Config:     config,
	}
}

func (api *SchemaApi) Setup(app *fiber.App) {
	group := app.Group("/api/schema", middleware.AuthMiddleware(api.Config.SkipAuth, api.Config.DefaultTenant))

	group.Get("/sections", api.Controller.ListSections)
	group.Get("/sections/:name/fields", api.Controller.ListFields)
	group.Get("/sections/:name/fields/search", api.Controller.SearchFields)
	group.Get("/sections/:name/fields/:field/choices", api.Controller.FieldChoices)
}
