package schema

import (
	"crm-reports/internal/common/apperr"

	"github.com/gofiber/fiber/v2"
)

type SchemaController struct {
	Registry *Registry
}

func NewSchemaController(registry *Registry) *SchemaController {
	return &SchemaController{Registry: registry}
}

// ListSections godoc
// @Summary      List sections
// @Description  Lists every record type reports can be built on
// @Tags         schema
// @Produce      json
// @Success      200 {array} Section
// @Router       /api/schema/sections [get]
func (ctrl *SchemaController) ListSections(c *fiber.Ctx) error {
	return c.JSON(ctrl.Registry.Sections())
}

// ListFields godoc
// @Summary      List fields of a section
// @Tags         schema
// @Produce      json
// @Param        name path string true "Section name"
// @Success      200 {array} FieldInfo
// @Failure      404 {object} apperr.ErrorResponse
// @Router       /api/schema/sections/{name}/fields [get]
func (ctrl *SchemaController) ListFields(c *fiber.Ctx) error {
	infos, err := ctrl.Registry.FieldInfos(c.Params("name"))
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(infos)
}

// SearchFields godoc
func (ctrl *SchemaController) SearchFields(c *fiber.Ctx) error {
	infos, err := ctrl.Registry.SearchFields(c.Params("name"), c.Query("q"))
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(infos)
}

// FieldChoices godoc
func (ctrl *SchemaController) FieldChoices(c *fiber.Ctx) error {
	choices, err := ctrl.Registry.FieldChoices(c.UserContext(), c.Params("name"), c.Params("field"))
	if err != nil {
		return apperr.JSON(c, err)
	}
	if choices == nil {
		choices = []Choice{}
	}
	return c.JSON(choices)
}
