package user

import (
	"strconv"

	"crm-reports/internal/common/apperr"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Service UserService
}

func NewUserController(service UserService) *UserController {
	return &UserController{Service: service}
}

type UpdateUserRolesRequest struct {
	RoleIDs []string `json:"role_ids"`
}

type UpdateUserStatusRequest struct {
	Status string `json:"status"`
}

// Me godoc
// @Summary      Get the authenticated user
// @Tags         users
// @Produce      json
// @Success      200 {object} models.User
// @Failure      404 {object} apperr.ErrorResponse
// @Router       /api/users/me [get]
func (ctrl *UserController) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	usr, err := ctrl.Service.GetUser(c.UserContext(), userID)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(usr)
}

// List godoc
// @Summary      List users of the organization
// @Tags         users
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Items per page" default(20)
// @Param        status query string false "Filter by status"
// @Success      200 {object} map[string]interface{}
// @Router       /api/users [get]
func (ctrl *UserController) List(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	users, total, err := ctrl.Service.ListUsers(c.UserContext(), c.Query("status"), page, limit)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(fiber.Map{
		"users": users,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// Get godoc
// @Summary      Get user by ID
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} models.User
// @Failure      404 {object} apperr.ErrorResponse
// @Router       /api/users/{id} [get]
func (ctrl *UserController) Get(c *fiber.Ctx) error {
	usr, err := ctrl.Service.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(usr)
}

// Create godoc
// @Summary      Add a user to the organization
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        input body CreateUserInput true "New user"
// @Success      201 {object} models.User
// @Failure      400 {object} apperr.ErrorResponse
// @Router       /api/users [post]
func (ctrl *UserController) Create(c *fiber.Ctx) error {
	var input CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	actorID, _ := c.Locals("user_id").(string)
	usr, err := ctrl.Service.CreateUser(c.UserContext(), input, actorID)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(usr)
}

// UpdateStatus godoc
func (ctrl *UserController) UpdateStatus(c *fiber.Ctx) error {
	var req UpdateUserStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	actorID, _ := c.Locals("user_id").(string)
	if err := ctrl.Service.UpdateUserStatus(c.UserContext(), c.Params("id"), req.Status, actorID); err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(fiber.Map{"message": "User status updated"})
}

// UpdateRoles godoc
func (ctrl *UserController) UpdateRoles(c *fiber.Ctx) error {
	var req UpdateUserRolesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	actorID, _ := c.Locals("user_id").(string)
	if err := ctrl.Service.UpdateUserRoles(c.UserContext(), c.Params("id"), req.RoleIDs, actorID); err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(fiber.Map{"message": "User roles updated"})
}

// Delete godoc
func (ctrl *UserController) Delete(c *fiber.Ctx) error {
	actorID, _ := c.Locals("user_id").(string)
	if err := ctrl.Service.DeleteUser(c.UserContext(), c.Params("id"), actorID); err != nil {
		return apperr.JSON(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
