package serverutils

import (
	"errors"

	"orl-assistant/internal/dto"
	"orl-assistant/internal/pkg/logger"
	"orl-assistant/internal/service"
	"orl-assistant/internal/workflow"
	"orl-assistant/internal/xano"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps domain errors onto HTTP statuses.
func StatusFor(err error) int {
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.Is(err, dto.ErrValidation),
		errors.Is(err, workflow.ErrUnknownValue),
		errors.Is(err, service.ErrInvalidLink):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, xano.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrAccountDisabled):
		return fiber.StatusForbidden
	case errors.Is(err, workflow.ErrFlowNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrSuperseded):
		return fiber.StatusConflict
	case errors.Is(err, xano.ErrTransport):
		return fiber.StatusBadGateway
	}
	if apiErr, ok := xano.AsAPIError(err); ok && apiErr.Status >= 400 && apiErr.Status < 500 {
		return apiErr.Status
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler renders every returned error as a BaseResponse.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := StatusFor(err)
		res := ErrorResponse(code, err.Error())

		var vErr *dto.ValidationError
		if errors.As(err, &vErr) {
			res.Field = vErr.Field
		} else if apiErr, ok := xano.AsAPIError(err); ok {
			res.Field = apiErr.Field
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("HTTP", "Request failed", map[string]interface{}{
				"method": c.Method(),
				"path":   c.Path(),
				"error":  err.Error(),
			})
			if code == fiber.StatusInternalServerError {
				res.Message = "Internal Server Error"
			}
		}
		return c.Status(code).JSON(res)
	}
}
