package export

import (
	"fmt"

	"crm-reports/internal/common/apperr"

	"github.com/gofiber/fiber/v2"
)

type ExportController struct {
	Service ExportService
}

func NewExportController(service ExportService) *ExportController {
	return &ExportController{Service: service}
}

// Export godoc
// @Summary Export a report pivot
// @Description Runs the report with the caller's draft applied and streams the pivot as excel, csv or pdf
// @Tags reports
// @Produce application/octet-stream
// @Param id path string true "Report ID"
// @Param format query string false "excel, csv or pdf" default(excel)
// @Success 200 {file} binary
// @Router /api/reports/{id}/export [get]
func (ctrl *ExportController) Export(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	format := c.Query("format", FormatExcel)

	file, err := ctrl.Service.Export(c.UserContext(), c.Params("id"), userID, format)
	if err != nil {
		return apperr.JSON(c, err)
	}

	c.Set("Content-Type", file.ContentType)
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	return c.Send(file.Data)
}
