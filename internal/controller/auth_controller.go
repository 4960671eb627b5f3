package controller

import (
	"errors"
	"net/url"
	"strings"

	"orl-assistant/internal/dto"
	"orl-assistant/internal/pkg/serverutils"
	"orl-assistant/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	RegisterCallback(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	Register(ctx *fiber.Ctx) error
	Me(ctx *fiber.Ctx) error
	ForgotPassword(ctx *fiber.Ctx) error
	MagicLink(ctx *fiber.Ctx) error
	UpdatePassword(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
}

type authController struct {
	service   service.IAuthService
	clientURL string
}

func NewAuthController(service service.IAuthService, clientURL string) IAuthController {
	return &authController{service: service, clientURL: strings.TrimRight(clientURL, "/")}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Post("/login", c.Login)
	h.Post("/register", c.Register)
	h.Get("/me", c.Me)
	h.Post("/forgot-password", c.ForgotPassword)
	h.Post("/magic-link", c.MagicLink)
	h.Post("/update-password", c.UpdatePassword)
}

// RegisterCallback mounts the social-login landing route at the root.
func (c *authController) RegisterCallback(r fiber.Router) {
	r.Get("/auth/callback", c.Callback)
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := c.service.Login(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Login successful", fiber.Map{"user_id": res.UserID}))
}

func (c *authController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := c.service.Register(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Account created", fiber.Map{"user_id": res.UserID}))
}

func (c *authController) Me(ctx *fiber.Ctx) error {
	user, err := c.service.Me(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Profile", user))
}

func (c *authController) ForgotPassword(ctx *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := c.service.RequestPasswordReset(ctx.UserContext(), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("If the email exists, a reset link was sent", nil))
}

func (c *authController) MagicLink(ctx *fiber.Ctx) error {
	var req dto.MagicLinkRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := c.service.MagicLinkLogin(ctx.UserContext(), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Link accepted, choose a new password", nil))
}

func (c *authController) UpdatePassword(ctx *fiber.Ctx) error {
	var req dto.UpdatePasswordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := c.service.UpdatePassword(ctx.UserContext(), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Password updated", nil))
}

// Callback stores the token handed back by the social-login redirect and
// sends the browser on to the dashboard, or back to login with the error code.
func (c *authController) Callback(ctx *fiber.Ctx) error {
	err := c.service.HandleOAuthCallback(ctx.UserContext(), ctx.Query("token"), ctx.Query("error"))
	if err != nil {
		code := service.CallbackCodeAuthFailed
		var cbErr *service.CallbackError
		if errors.As(err, &cbErr) {
			code = cbErr.Code
		}
		return ctx.Redirect(c.clientURL + "/login?error=" + url.QueryEscape(code))
	}
	return ctx.Redirect(c.clientURL + "/dashboard")
}
