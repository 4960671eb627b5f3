package controller

import (
	"orl-assistant/internal/dto"
	"orl-assistant/internal/pkg/serverutils"
	"orl-assistant/internal/workflow"

	"github.com/gofiber/fiber/v2"
)

type IWorkflowController interface {
	RegisterRoutes(r fiber.Router, middleware ...fiber.Handler)
	Start(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	Patch(ctx *fiber.Ctx) error
	Advance(ctx *fiber.Ctx) error
	Back(ctx *fiber.Ctx) error
	Transition(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
	Finish(ctx *fiber.Ctx) error
}

type workflowController struct {
	registry *workflow.Registry
}

func NewWorkflowController(registry *workflow.Registry) IWorkflowController {
	return &workflowController{registry: registry}
}

func (c *workflowController) RegisterRoutes(r fiber.Router, middleware ...fiber.Handler) {
	h := r.Group("/workflows")
	for _, mw := range middleware {
		h.Use(mw)
	}
	h.Post("/", c.Start)
	h.Get("/", c.List)
	h.Get("/:id", c.Get)
	h.Patch("/:id", c.Patch)
	h.Post("/:id/advance", c.Advance)
	h.Post("/:id/back", c.Back)
	h.Post("/:id/transition", c.Transition)
	h.Post("/:id/reset", c.Reset)
	h.Delete("/:id", c.Finish)
}

func (c *workflowController) Start(ctx *fiber.Ctx) error {
	flow := c.registry.Start()
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Workflow started", dto.NewWorkflowResponse(flow)))
}

func (c *workflowController) List(ctx *fiber.Ctx) error {
	flows := c.registry.List()
	res := make([]dto.WorkflowResponse, 0, len(flows))
	for _, flow := range flows {
		res = append(res, dto.NewWorkflowResponse(flow))
	}
	return ctx.JSON(serverutils.SuccessResponse("Workflows", res))
}

func (c *workflowController) Get(ctx *fiber.Ctx) error {
	flow, err := c.registry.Get(ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Workflow", dto.NewWorkflowResponse(flow)))
}

func (c *workflowController) Patch(ctx *fiber.Ctx) error {
	flow, err := c.registry.Get(ctx.Params("id"))
	if err != nil {
		return err
	}

	var req dto.WorkflowPatchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := req.Apply(flow.Store); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Workflow updated", dto.NewWorkflowResponse(flow)))
}

func (c *workflowController) Advance(ctx *fiber.Ctx) error {
	return c.step(ctx, func(s *workflow.Store) (workflow.State, error) { return s.Advance() })
}

func (c *workflowController) Back(ctx *fiber.Ctx) error {
	return c.step(ctx, func(s *workflow.Store) (workflow.State, error) { return s.Back() })
}

func (c *workflowController) Transition(ctx *fiber.Ctx) error {
	var req dto.TransitionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	return c.step(ctx, func(s *workflow.Store) (workflow.State, error) {
		return s.TransitionTo(workflow.Step(req.Step))
	})
}

func (c *workflowController) Reset(ctx *fiber.Ctx) error {
	return c.step(ctx, func(s *workflow.Store) (workflow.State, error) {
		s.Reset()
		return s.State(), nil
	})
}

func (c *workflowController) Finish(ctx *fiber.Ctx) error {
	if err := c.registry.Finish(ctx.Params("id")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Workflow finished", nil))
}

func (c *workflowController) step(ctx *fiber.Ctx, fn func(*workflow.Store) (workflow.State, error)) error {
	flow, err := c.registry.Get(ctx.Params("id"))
	if err != nil {
		return err
	}
	if _, err := fn(flow.Store); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Workflow updated", dto.NewWorkflowResponse(flow)))
}
