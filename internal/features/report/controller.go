package report

import (
	"crm-reports/internal/common/apperr"
	"crm-reports/internal/features/record"

	"github.com/gofiber/fiber/v2"
)

type ReportController struct {
	Service ReportService
	Overlay DraftOverlay
}

func NewReportController(service ReportService, overlay DraftOverlay) *ReportController {
	return &ReportController{Service: service, Overlay: overlay}
}

// Create godoc
// @Summary      Create a report
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        input body Report true "Report configuration"
// @Success      201 {object} Report
// @Failure      400 {object} apperr.ErrorResponse
// @Router       /api/reports [post]
func (ctrl *ReportController) Create(c *fiber.Ctx) error {
	var report Report
	if err := c.BodyParser(&report); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	userID, _ := c.Locals("user_id").(string)
	if err := ctrl.Service.CreateReport(c.UserContext(), &report, userID); err != nil {
		return apperr.JSON(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// List godoc
func (ctrl *ReportController) List(c *fiber.Ctx) error {
	filter := ListFilter{
		FolderID:   c.Query("folder_id"),
		Favourites: c.Query("favourites") == "true",
		Section:    c.Query("section"),
		Search:     c.Query("search"),
	}

	reports, err := ctrl.Service.ListReports(c.UserContext(), filter)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(reports)
}

// Get godoc
func (ctrl *ReportController) Get(c *fiber.Ctx) error {
	report, err := ctrl.Service.GetReport(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(report)
}

// Update godoc
func (ctrl *ReportController) Update(c *fiber.Ctx) error {
	var report Report
	if err := c.BodyParser(&report); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	userID, _ := c.Locals("user_id").(string)
	if err := ctrl.Service.UpdateReport(c.UserContext(), c.Params("id"), &report, userID); err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(report)
}

// Delete godoc
func (ctrl *ReportController) Delete(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if err := ctrl.Service.DeleteReport(c.UserContext(), c.Params("id"), userID); err != nil {
		return apperr.JSON(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Run godoc
// @Summary      Run a report
// @Description  Pass preview=true to run with the caller's unsaved
// @Description  draft applied instead of the persisted configuration.
// @Tags         reports
// @Produce      json
// @Param        id path string true "Report id"
// @Param        preview query bool false "Apply the caller's draft"
// @Success      200 {object} RunResult
// @Failure      404 {object} apperr.ErrorResponse
// @Router       /api/reports/{id}/run [get]
func (ctrl *ReportController) Run(c *fiber.Ctx) error {
	if c.Query("preview") == "true" && ctrl.Overlay != nil {
		userID, _ := c.Locals("user_id").(string)
		merged, hasDraft, err := ctrl.Overlay.MergedReport(c.UserContext(), c.Params("id"), userID)
		if err != nil {
			return apperr.JSON(c, err)
		}
		if hasDraft {
			result, err := ctrl.Service.RunConfig(c.UserContext(), merged, false)
			if err != nil {
				return apperr.JSON(c, err)
			}
			return c.JSON(result)
		}
	}

	result, err := ctrl.Service.RunReport(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(result)
}

// Preview godoc
func (ctrl *ReportController) Preview(c *fiber.Ctx) error {
	var report Report
	if err := c.BodyParser(&report); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result, err := ctrl.Service.PreviewConfig(c.UserContext(), &report)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(result)
}

// Records godoc
// @Summary      List the records behind a report
// @Description  Applies the report's filters; pass field, operator and
// @Description  value with apply_filter=true to drill into one group.
// @Tags         reports
// @Produce      json
// @Param        id path string true "Report id"
// @Success      200 {object} map[string]interface{}
// @Router       /api/reports/{id}/records [get]
func (ctrl *ReportController) Records(c *fiber.Ctx) error {
	var drill []record.FilterSpec
	if field := c.Query("field"); field != "" && c.Query("apply_filter") == "true" {
		drill = append(drill, record.FilterSpec{
			Field:    field,
			Operator: c.Query("operator", record.OpExact),
			Value:    c.Query("value"),
			Logic:    "and",
		})
	}

	opts := record.ListOptions{
		Limit:     record.ParseInt64(c.Query("limit"), 25),
		Offset:    record.ParseInt64(c.Query("offset"), 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: int(record.ParseInt64(c.Query("sort_order"), 0)),
	}

	rows, total, err := ctrl.Service.ListReportRecords(c.UserContext(), c.Params("id"), drill, opts)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(fiber.Map{"records": rows, "total": total})
}

// Clone godoc
func (ctrl *ReportController) Clone(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	clone, err := ctrl.Service.CloneReport(c.UserContext(), c.Params("id"), userID)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(clone)
}

// Favourite godoc
func (ctrl *ReportController) Favourite(c *fiber.Ctx) error {
	favourite, err := ctrl.Service.ToggleFavourite(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(fiber.Map{"is_favourite": favourite})
}

// Move godoc
func (ctrl *ReportController) Move(c *fiber.Ctx) error {
	var body struct {
		FolderID string `json:"folder_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := ctrl.Service.MoveToFolder(c.UserContext(), c.Params("id"), body.FolderID); err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(fiber.Map{"message": "Report moved"})
}
