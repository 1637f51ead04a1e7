package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/tair/commerce-core/pkg/auth"
)

// bearerClaims extracts and validates the Bearer token on the request.
func bearerClaims(c *fiber.Ctx) (*auth.Claims, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("authorization header required")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, fmt.Errorf("invalid authorization header format")
	}
	claims, err := auth.ValidateToken(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// forwardIdentity stores the caller in locals and relays it to the backend
// service, which uses the username as the actor on ledger entries and
// order status events.
func forwardIdentity(c *fiber.Ctx, claims *auth.Claims) {
	c.Locals("user_id", claims.UserID)
	c.Locals("username", claims.Username)
	c.Locals("role", claims.Role)

	c.Request().Header.Set("X-User-ID", fmt.Sprintf("%d", claims.UserID))
	c.Request().Header.Set("X-Username", claims.Username)
	c.Request().Header.Set("X-User-Role", claims.Role)
}

// RequireUser rejects requests without a valid token. Orders and warehouse
// documents are always identity-scoped: the order service filters listings
// by the forwarded user unless the caller is staff.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := bearerClaims(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}
		forwardIdentity(c, claims)
		return c.Next()
	}
}

// AdminWrites lets reads through untouched and requires the admin role for
// every mutating method. The catalog and the stock ledger are browsable
// without a token, but only staff may move stock or edit products.
func AdminWrites() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !mutating(c.Method()) {
			// attach identity when present so reads are attributed
			if claims, err := bearerClaims(c); err == nil {
				forwardIdentity(c, claims)
			}
			return c.Next()
		}

		role := c.Locals("role")
		if role == nil {
			claims, err := bearerClaims(c)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"success": false,
					"error":   err.Error(),
				})
			}
			forwardIdentity(c, claims)
			role = claims.Role
		}

		if role.(string) != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error":   "Admin access required",
			})
		}
		return c.Next()
	}
}
