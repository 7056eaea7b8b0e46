package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dubflow/api/pkg/response"
)

// GatewayAuthMiddleware trusts the identity headers stamped by Traefik's
// ForwardAuth step. Only safe when the service is unreachable except
// through the gateway.
func GatewayAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-User-Id")
		if id == "" {
			return response.Unauthorized(c, "Missing user identity headers")
		}
		storeIdentity(c, id, c.Get("X-User-Email"), c.Get("X-User-Name"))
		return c.Next()
	}
}
