package record

import (
	"crm-reports/internal/common/apperr"

	"github.com/gofiber/fiber/v2"
)

type RecordController struct {
	Service RecordService
}

func NewRecordController(service RecordService) *RecordController {
	return &RecordController{Service: service}
}

// CreateRecord godoc
// @Summary      Create a record
// @Tags         records
// @Accept       json
// @Produce      json
// @Param        section path string true "Section name"
// @Param        input body map[string]interface{} true "Field values"
// @Success      201 {object} map[string]interface{}
// @Failure      400 {object} apperr.ErrorResponse
// @Router       /api/records/{section} [post]
func (ctrl *RecordController) CreateRecord(c *fiber.Ctx) error {
	section := c.Params("section")

	var data map[string]interface{}
	if err := c.BodyParser(&data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	userID, _ := c.Locals("user_id").(string)

	id, err := ctrl.Service.CreateRecord(c.UserContext(), section, data, userID)
	if err != nil {
		return apperr.JSON(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id.Hex()})
}

// ListRecords godoc
func (ctrl *RecordController) ListRecords(c *fiber.Ctx) error {
	section := c.Params("section")

	var specs []FilterSpec
	if field := c.Query("field"); field != "" && c.Query("apply_filter") == "true" {
		operator := c.Query("operator", OpExact)
		specs = append(specs, FilterSpec{
			Field:    field,
			Operator: operator,
			Value:    c.Query("value"),
			Logic:    "and",
		})
	}

	opts := ListOptions{
		Limit:     ParseInt64(c.Query("limit"), 25),
		Offset:    ParseInt64(c.Query("offset"), 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: int(ParseInt64(c.Query("sort_order"), 0)),
	}

	rows, total, err := ctrl.Service.ListRecords(c.UserContext(), section, specs, opts)
	if err != nil {
		return apperr.JSON(c, err)
	}

	return c.JSON(fiber.Map{
		"records": rows,
		"total":   total,
	})
}

// GetRecord godoc
func (ctrl *RecordController) GetRecord(c *fiber.Ctx) error {
	record, err := ctrl.Service.GetRecord(c.UserContext(), c.Params("section"), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Record not found",
		})
	}
	return c.JSON(record)
}

// UpdateRecord godoc
func (ctrl *RecordController) UpdateRecord(c *fiber.Ctx) error {
	var data map[string]interface{}
	if err := c.BodyParser(&data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	userID, _ := c.Locals("user_id").(string)

	if err := ctrl.Service.UpdateRecord(c.UserContext(), c.Params("section"), c.Params("id"), data, userID); err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(fiber.Map{"message": "Record updated"})
}

// DeleteRecord godoc
func (ctrl *RecordController) DeleteRecord(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	if err := ctrl.Service.DeleteRecord(c.UserContext(), c.Params("section"), c.Params("id"), userID); err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(fiber.Map{"message": "Record deleted"})
}
