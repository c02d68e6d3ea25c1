package folder

import (
	"crm-reports/internal/common/apperr"

	"github.com/gofiber/fiber/v2"
)

type FolderController struct {
	Service FolderService
}

func NewFolderController(service FolderService) *FolderController {
	return &FolderController{Service: service}
}

// Create godoc
// @Summary      Create a report folder
// @Tags         folders
// @Accept       json
// @Produce      json
// @Param        input body Folder true "Folder"
// @Success      201 {object} Folder
// @Failure      400 {object} apperr.ErrorResponse
// @Router       /api/folders [post]
func (ctrl *FolderController) Create(c *fiber.Ctx) error {
	var folder Folder
	if err := c.BodyParser(&folder); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	userID, _ := c.Locals("user_id").(string)
	if err := ctrl.Service.CreateFolder(c.UserContext(), &folder, userID); err != nil {
		return apperr.JSON(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(folder)
}

// List godoc
// @Summary      List report folders with report counts
// @Tags         folders
// @Produce      json
// @Param        roots query bool false "Top-level folders only"
// @Param        parent_id query string false "Children of one folder"
// @Param        favourites query bool false "Favourite folders only"
// @Success      200 {array} FolderWithCount
// @Router       /api/folders [get]
func (ctrl *FolderController) List(c *fiber.Ctx) error {
	filter := ListFilter{
		ParentID:   c.Query("parent_id"),
		RootsOnly:  c.Query("roots") == "true",
		Favourites: c.Query("favourites") == "true",
		Search:     c.Query("search"),
	}

	folders, err := ctrl.Service.ListFolders(c.UserContext(), filter)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(folders)
}

// Get godoc
func (ctrl *FolderController) Get(c *fiber.Ctx) error {
	detail, err := ctrl.Service.GetFolder(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(detail)
}

// Update godoc
func (ctrl *FolderController) Update(c *fiber.Ctx) error {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	folder, err := ctrl.Service.RenameFolder(c.UserContext(), c.Params("id"), body.Name)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(folder)
}

// Move godoc
func (ctrl *FolderController) Move(c *fiber.Ctx) error {
	var body struct {
		ParentID string `json:"parent_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := ctrl.Service.MoveFolder(c.UserContext(), c.Params("id"), body.ParentID); err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(fiber.Map{"message": "Folder moved"})
}

// Favourite godoc
func (ctrl *FolderController) Favourite(c *fiber.Ctx) error {
	favourite, err := ctrl.Service.ToggleFavourite(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(fiber.Map{"is_favourite": favourite})
}

// Delete godoc
func (ctrl *FolderController) Delete(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if err := ctrl.Service.DeleteFolder(c.UserContext(), c.Params("id"), userID); err != nil {
		return apperr.JSON(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
