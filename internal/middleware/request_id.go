package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type requestIDKey string

const RequestIDKey requestIDKey = "request_id"

// RequestID propagates the caller's X-Request-ID header into the request
// context, generating one when absent, and echoes it on the response so
// log lines can be correlated across services.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}

		ctx := context.WithValue(c.UserContext(), RequestIDKey, id)
		c.SetUserContext(ctx)
		c.Set("X-Request-ID", id)

		return c.Next()
	}
}
