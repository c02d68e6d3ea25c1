package record

import (
	"crm-reports/internal/config"
	"crm-reports/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type RecordApi struct {
	controller *RecordController
	config     *config.Config
}

func NewRecordApi(controller *RecordController, cfg *config.Config) *RecordApi {
	return &RecordApi{
		controller: controller,
		config:     cfg,
	}
}

func (api *RecordApi) Setup(app *fiber.App) {
	records := app.Group("/api/records", middleware.AuthMiddleware(api.config.SkipAuth, api.config.DefaultTenant))

	records.Post("/:section", api.controller.CreateRecord)
	records.Get("/:section", api.controller.ListRecords)
	records.Get("/:section/:id", api.controller.GetRecord)
	records.Put("/:section/:id", api.controller.UpdateRecord)
	records.Delete("/:section/:id", api.controller.DeleteRecord)
}
