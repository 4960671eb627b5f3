package serverutils

import (
	"time"

	"orl-assistant/internal/session"

	"github.com/gofiber/fiber/v2"
)

// RequireSession rejects requests while no unexpired credential is held.
func RequireSession(m *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st := m.Status(time.Now())
		if !st.Authenticated || st.Expired {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Not signed in"))
		}
		return c.Next()
	}
}
