package auth

import (
	"github.com/gofiber/fiber/v2"
)

type AuthApi struct {
	controller *AuthController
}

func NewAuthApi(controller *AuthController) *AuthApi {
	return &AuthApi{controller: controller}
}

// Setup registers the public auth routes. Everything else in the API
// sits behind the auth middleware.
func (api *AuthApi) Setup(app *fiber.App) {
	app.Post("/api/register", api.controller.Register)
	app.Post("/api/login", api.controller.Login)
}
