package role

import (
	"crm-reports/internal/common/apperr"

	"github.com/gofiber/fiber/v2"
)

type RoleController struct {
	Service RoleService
}

func NewRoleController(service RoleService) *RoleController {
	return &RoleController{Service: service}
}

// List godoc
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Success      200 {array} Role
// @Router       /api/roles [get]
func (ctrl *RoleController) List(c *fiber.Ctx) error {
	roles, err := ctrl.Service.ListRoles(c.UserContext())
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(roles)
}

// Get godoc
// @Summary      Get one role
// @Tags         roles
// @Produce      json
// @Param        id path string true "Role ID"
// @Success      200 {object} Role
// @Failure      404 {object} apperr.ErrorResponse
// @Router       /api/roles/{id} [get]
func (ctrl *RoleController) Get(c *fiber.Ctx) error {
	role, err := ctrl.Service.GetRole(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(role)
}

// Permissions godoc
// @Summary      List every permission string roles can carry
// @Tags         roles
// @Produce      json
// @Success      200 {array} string
// @Router       /api/roles/permissions [get]
func (ctrl *RoleController) Permissions(c *fiber.Ctx) error {
	return c.JSON(AllPermissions)
}

// Create godoc
// @Summary      Create a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        input body Role true "Role"
// @Success      201 {object} Role
// @Failure      400 {object} apperr.ErrorResponse
// @Router       /api/roles [post]
func (ctrl *RoleController) Create(c *fiber.Ctx) error {
	var role Role
	if err := c.BodyParser(&role); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	userID, _ := c.Locals("user_id").(string)
	if err := ctrl.Service.CreateRole(c.UserContext(), &role, userID); err != nil {
		return apperr.JSON(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(role)
}

// Update godoc
// @Summary      Update a role's description or permissions
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        id path string true "Role ID"
// @Param        input body RoleUpdate true "Fields to change"
// @Success      200 {object} map[string]string
// @Failure      400 {object} apperr.ErrorResponse
// @Router       /api/roles/{id} [put]
func (ctrl *RoleController) Update(c *fiber.Ctx) error {
	var update RoleUpdate
	if err := c.BodyParser(&update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	userID, _ := c.Locals("user_id").(string)
	if err := ctrl.Service.UpdateRole(c.UserContext(), c.Params("id"), update, userID); err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(fiber.Map{"message": "Role updated"})
}

// Delete godoc
// @Summary      Delete a role
// @Tags         roles
// @Param        id path string true "Role ID"
// @Success      204
// @Failure      400 {object} apperr.ErrorResponse
// @Router       /api/roles/{id} [delete]
func (ctrl *RoleController) Delete(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if err := ctrl.Service.DeleteRole(c.UserContext(), c.Params("id"), userID); err != nil {
		return apperr.JSON(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
