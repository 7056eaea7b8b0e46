// Package middleware holds the request-level concerns shared across routes:
// bearer-token auth (direct or behind the gateway) and per-user rate limits.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/dubflow/api/internal/auth"
	"github.com/dubflow/api/pkg/response"
)

// AuthMiddleware authenticates requests when the service fronts its own
// auth. OIDC tokens are checked against the JWKS verifier; legacy HMAC
// tokens are accepted as a fallback when a shared secret is configured.
type AuthMiddleware struct {
	verifier  auth.TokenVerifier
	jwtSecret string
}

func NewAuthMiddleware(verifier auth.TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

func NewAuthMiddlewareWithFallback(verifier auth.TokenVerifier, jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, jwtSecret: jwtSecret}
}

// NewLegacyAuthMiddleware accepts only HMAC tokens. Used in dev and tests
// where no OIDC provider is reachable.
func NewLegacyAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{jwtSecret: jwtSecret}
}

func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		scheme, token, found := strings.Cut(c.Get("Authorization"), " ")
		if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
			return response.Unauthorized(c, "Missing or malformed authorization header")
		}

		if m.verifier != nil {
			if claims, err := m.verifier.Validate(token); err == nil {
				storeIdentity(c, claims.UserID, claims.Email, claims.Name)
				c.Locals("claims", claims)
				return c.Next()
			}
			if m.jwtSecret == "" {
				return response.Unauthorized(c, "Invalid or expired token")
			}
		}

		if m.jwtSecret == "" {
			return response.Unauthorized(c, "Authentication not configured")
		}

		claims, err := auth.ValidateLegacyToken(token, m.jwtSecret)
		if err != nil {
			return response.Unauthorized(c, "Invalid or expired token")
		}
		storeIdentity(c, claims.UserID, claims.Email, "")
		c.Locals("claims", claims)
		return c.Next()
	}
}

func storeIdentity(c *fiber.Ctx, userID, email, name string) {
	c.Locals("userId", userID)
	c.Locals("email", email)
	if name != "" {
		c.Locals("name", name)
	}
}

// GetUserID returns the authenticated user ID, or "" before auth ran.
func GetUserID(c *fiber.Ctx) string {
	id, _ := c.Locals("userId").(string)
	return id
}
