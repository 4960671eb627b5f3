package controller

import (
	"time"

	"orl-assistant/internal/pkg/serverutils"
	"orl-assistant/internal/service"
	"orl-assistant/internal/session"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Status(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
}

type sessionController struct {
	session *session.Manager
	auth    service.IAuthService
}

func NewSessionController(sess *session.Manager, auth service.IAuthService) ISessionController {
	return &sessionController{session: sess, auth: auth}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session")
	h.Get("/", c.Status)
	h.Post("/logout", c.Logout)
}

func (c *sessionController) Status(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Session status", c.session.Status(time.Now())))
}

// Logout always ends the local session; a failing backend call is reported
// but does not keep the user signed in.
func (c *sessionController) Logout(ctx *fiber.Ctx) error {
	if err := c.auth.Logout(ctx.UserContext()); err != nil {
		return ctx.JSON(serverutils.BaseResponse[any]{
			Success: true,
			Code:    fiber.StatusOK,
			Message: "Signed out locally, backend logout failed: " + err.Error(),
		})
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Signed out", nil))
}
