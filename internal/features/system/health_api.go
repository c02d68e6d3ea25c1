package system

import (
	"context"
	"time"

	"crm-reports/internal/common/api"
	"crm-reports/internal/database"

	"github.com/gofiber/fiber/v2"
)

type HealthApi struct {
	db *database.MongodbDB
}

func NewHealthApi(db *database.MongodbDB) api.Route {
	return &HealthApi{db: db}
}

func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/api/health", h.health)
}

// health godoc
// @Summary      Service health
// @Tags         system
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /api/health [get]
func (h *HealthApi) health(c *fiber.Ctx) error {
	status := fiber.StatusOK
	dbState := "up"

	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if err := h.db.DB.Client().Ping(ctx, nil); err != nil {
		status = fiber.StatusServiceUnavailable
		dbState = "down"
	}

	return c.Status(status).JSON(fiber.Map{
		"status":   statusWord(status),
		"database": dbState,
	})
}

func statusWord(status int) string {
	if status == fiber.StatusOK {
		return "ok"
	}
	return "degraded"
}
