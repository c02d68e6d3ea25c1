package draft

import (
	"crm-reports/internal/common/apperr"

	"github.com/gofiber/fiber/v2"
)

type DraftController struct {
	Service DraftService
}

func NewDraftController(service DraftService) *DraftController {
	return &DraftController{Service: service}
}

type versionRequest struct {
	Version int64 `json:"version"`
}

type fieldRequest struct {
	Version int64  `json:"version"`
	Field   string `json:"field"`
}

type filterRequest struct {
	Version  int64  `json:"version"`
	Key      string `json:"key"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
	Logic    string `json:"logic"`
}

type aggregateRequest struct {
	Version int64  `json:"version"`
	Field   string `json:"field"`
	AggFunc string `json:"aggfunc"`
}

type chartTypeRequest struct {
	Version   int64  `json:"version"`
	ChartType string `json:"chart_type"`
}

type chartFieldsRequest struct {
	Version           int64  `json:"version"`
	ChartField        string `json:"chart_field"`
	ChartFieldStacked string `json:"chart_field_stacked"`
}

func (ctrl *DraftController) session(c *fiber.Ctx, version int64) Session {
	userID, _ := c.Locals("user_id").(string)
	return Session{ReportID: c.Params("id"), UserID: userID, Version: version}
}

func (ctrl *DraftController) respond(c *fiber.Ctx, state *DraftState, err error) error {
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(state)
}

// State godoc
// @Summary      Current draft state of a report
// @Description  Returns the report with the caller's unsaved edits
// @Description  applied, and the version token mutations must echo.
// @Tags         drafts
// @Produce      json
// @Param        id path string true "Report id"
// @Success      200 {object} DraftState
// @Failure      404 {object} apperr.ErrorResponse
// @Router       /api/reports/{id}/draft [get]
func (ctrl *DraftController) State(c *fiber.Ctx) error {
	state, err := ctrl.Service.GetState(c.UserContext(), ctrl.session(c, 0))
	return ctrl.respond(c, state, err)
}

// Preview godoc
// @Summary      Run the draft configuration
// @Tags         drafts
// @Produce      json
// @Param        id path string true "Report id"
// @Success      200 {object} DraftPreview
// @Router       /api/reports/{id}/draft/preview [get]
func (ctrl *DraftController) Preview(c *fiber.Ctx) error {
	preview, err := ctrl.Service.Preview(c.UserContext(), ctrl.session(c, 0))
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(preview)
}

// Save godoc
// @Summary      Apply the draft to the saved report
// @Description  Validates the merged configuration, persists it and
// @Description  drops the draft. A stale version yields 409.
// @Tags         drafts
// @Accept       json
// @Produce      json
// @Param        id path string true "Report id"
// @Success      200 {object} report.Report
// @Failure      409 {object} apperr.ErrorResponse
// @Router       /api/reports/{id}/draft/save [post]
func (ctrl *DraftController) Save(c *fiber.Ctx) error {
	var body versionRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	saved, err := ctrl.Service.Save(c.UserContext(), ctrl.session(c, body.Version))
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(saved)
}

// Discard godoc
func (ctrl *DraftController) Discard(c *fiber.Ctx) error {
	if err := ctrl.Service.Discard(c.UserContext(), ctrl.session(c, 0)); err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(fiber.Map{"message": "Draft discarded"})
}

// AddColumn godoc
func (ctrl *DraftController) AddColumn(c *fiber.Ctx) error {
	var body fieldRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	state, err := ctrl.Service.AddColumn(c.UserContext(), ctrl.session(c, body.Version), body.Field)
	return ctrl.respond(c, state, err)
}

// RemoveColumn godoc
func (ctrl *DraftController) RemoveColumn(c *fiber.Ctx) error {
	var body fieldRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	state, err := ctrl.Service.RemoveColumn(c.UserContext(), ctrl.session(c, body.Version), body.Field)
	return ctrl.respond(c, state, err)
}

// ToggleRowGroup godoc
func (ctrl *DraftController) ToggleRowGroup(c *fiber.Ctx) error {
	var body fieldRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	state, err := ctrl.Service.ToggleRowGroup(c.UserContext(), ctrl.session(c, body.Version), body.Field)
	return ctrl.respond(c, state, err)
}

// RemoveRowGroup godoc
func (ctrl *DraftController) RemoveRowGroup(c *fiber.Ctx) error {
	var body fieldRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	state, err := ctrl.Service.RemoveRowGroup(c.UserContext(), ctrl.session(c, body.Version), body.Field)
	return ctrl.respond(c, state, err)
}

// ToggleColumnGroup godoc
func (ctrl *DraftController) ToggleColumnGroup(c *fiber.Ctx) error {
	var body fieldRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	state, err := ctrl.Service.ToggleColumnGroup(c.UserContext(), ctrl.session(c, body.Version), body.Field)
	return ctrl.respond(c, state, err)
}

// RemoveColumnGroup godoc
func (ctrl *DraftController) RemoveColumnGroup(c *fiber.Ctx) error {
	var body fieldRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	state, err := ctrl.Service.RemoveColumnGroup(c.UserContext(), ctrl.session(c, body.Version), body.Field)
	return ctrl.respond(c, state, err)
}

// AddFilter godoc
func (ctrl *DraftController) AddFilter(c *fiber.Ctx) error {
	var body fieldRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	state, err := ctrl.Service.AddFilter(c.UserContext(), ctrl.session(c, body.Version), body.Field)
	return ctrl.respond(c, state, err)
}

// UpdateFilterOperator godoc
func (ctrl *DraftController) UpdateFilterOperator(c *fiber.Ctx) error {
	var body filterRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	state, err := ctrl.Service.UpdateFilterOperator(c.UserContext(), ctrl.session(c, body.Version), body.Key, body.Operator)
	return ctrl.respond(c, state, err)
}

// UpdateFilterValue godoc
func (ctrl *DraftController) UpdateFilterValue(c *fiber.Ctx) error {
	var body filterRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	state, err := ctrl.Service.UpdateFilterValue(c.UserContext(), ctrl.session(c, body.Version), body.Key, body.Value)
	return ctrl.respond(c, state, err)
}

// UpdateFilterLogic godoc
func (ctrl *DraftController) UpdateFilterLogic(c *fiber.Ctx) error {
	var body filterRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	state, err := ctrl.Service.UpdateFilterLogic(c.UserContext(), ctrl.session(c, body.Version), body.Key, body.Logic)
	return ctrl.respond(c, state, err)
}

// RemoveFilter godoc
func (ctrl *DraftController) RemoveFilter(c *fiber.Ctx) error {
	var body filterRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	state, err := ctrl.Service.RemoveFilter(c.UserContext(), ctrl.session(c, body.Version), body.Key)
	return ctrl.respond(c, state, err)
}

// ToggleAggregate godoc
func (ctrl *DraftController) ToggleAggregate(c *fiber.Ctx) error {
	var body aggregateRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	state, err := ctrl.Service.ToggleAggregate(c.UserContext(), ctrl.session(c, body.Version), body.Field)
	return ctrl.respond(c, state, err)
}

// UpdateAggregateFunc godoc
func (ctrl *DraftController) UpdateAggregateFunc(c *fiber.Ctx) error {
	var body aggregateRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	state, err := ctrl.Service.UpdateAggregateFunc(c.UserContext(), ctrl.session(c, body.Version), body.Field, body.AggFunc)
	return ctrl.respond(c, state, err)
}

// RemoveAggregate godoc
func (ctrl *DraftController) RemoveAggregate(c *fiber.Ctx) error {
	var body aggregateRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	state, err := ctrl.Service.RemoveAggregate(c.UserContext(), ctrl.session(c, body.Version), body.Field)
	return ctrl.respond(c, state, err)
}

// UpdateChartType godoc
func (ctrl *DraftController) UpdateChartType(c *fiber.Ctx) error {
	var body chartTypeRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	state, err := ctrl.Service.UpdateChartType(c.UserContext(), ctrl.session(c, body.Version), body.ChartType)
	return ctrl.respond(c, state, err)
}

// UpdateChartFields godoc
func (ctrl *DraftController) UpdateChartFields(c *fiber.Ctx) error {
	var body chartFieldsRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	state, err := ctrl.Service.UpdateChartFields(c.UserContext(), ctrl.session(c, body.Version), body.ChartField, body.ChartFieldStacked)
	return ctrl.respond(c, state, err)
}
