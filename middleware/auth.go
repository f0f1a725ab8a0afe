package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront-auth/constants"
	"storefront-auth/services/session"
	"storefront-auth/types"
)

// RequireSession validates the session token (cookie or bearer header) and
// stores the subject identity and privileged flag in locals.
func RequireSession(sessions *session.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(constants.SessionCookieName)
		if tokenString == "" {
			authHeader := c.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ErrorResponse{
				Message: "Authentication required",
				Status:  fiber.StatusUnauthorized,
			})
		}

		claims, err := sessions.Parse(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ErrorResponse{
				Message: "Invalid or expired session",
				Status:  fiber.StatusUnauthorized,
			})
		}

		c.Locals(constants.LocalsAccountUUID, claims.Subject)
		c.Locals(constants.LocalsIsAdmin, claims.IsAdmin)
		return c.Next()
	}
}

// RequireAdmin gates a route on the privileged-role flag. Must run after
// RequireSession.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		isAdmin, ok := c.Locals(constants.LocalsIsAdmin).(bool)
		if !ok || !isAdmin {
			return c.Status(fiber.StatusForbidden).JSON(types.ErrorResponse{
				Message: "Admin access required",
				Status:  fiber.StatusForbidden,
			})
		}
		return c.Next()
	}
}

// AccountUUID returns the authenticated subject from locals, empty when
// the request is anonymous.
func AccountUUID(c *fiber.Ctx) string {
	if v, ok := c.Locals(constants.LocalsAccountUUID).(string); ok {
		return v
	}
	return ""
}
