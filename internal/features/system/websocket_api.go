package system

import (
	"crm-reports/internal/common/api"
	"crm-reports/internal/config"
	"crm-reports/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type WebSocketApi struct {
	hub    *Hub
	config *config.Config
}

func NewWebSocketApi(hub *Hub, cfg *config.Config) api.Route {
	return &WebSocketApi{hub: hub, config: cfg}
}

func (h *WebSocketApi) Setup(app *fiber.App) {
	app.Get("/api/ws/reports",
		middleware.AuthMiddleware(h.config.SkipAuth, h.config.DefaultTenant),
		upgradeRequired,
		websocket.New(h.hub.HandleConnection),
	)
}

func upgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}
