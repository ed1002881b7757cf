package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/bloomly/internal/services"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func (handler *Handler) localizedError(c *fiber.Ctx, status int, key string) error {
	return apiError(c, status, handler.i18n.Translate(currentLanguage(c), key))
}

// respondWizardError maps controller errors to status codes. Validation
// failures carry the field and the unchanged state so clients can re-render.
func (handler *Handler) respondWizardError(c *fiber.Ctx, err error, extra fiber.Map) error {
	_, state := currentSession(c)
	language := currentLanguage(c)

	var validation *services.ValidationFailure
	switch {
	case errors.As(err, &validation):
		payload := fiber.Map{
			"error": handler.i18n.Translate(language, services.MessageKey(validation.Err)),
			"field": validation.Field,
			"step":  validation.Step,
			"state": newStateView(state),
		}
		for key, value := range extra {
			payload[key] = value
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(payload)
	case errors.Is(err, services.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": handler.i18n.Translate(language, "error.invalid_transition"),
			"step":  state.Step,
			"state": newStateView(state),
		})
	case errors.Is(err, services.ErrInvalidSnapshot):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  handler.i18n.Translate(language, "error.invalid_snapshot"),
			"field":  "snapshot",
			"detail": err.Error(),
		})
	default:
		return handler.localizedError(c, fiber.StatusInternalServerError, "error.internal")
	}
}

// parseOptionalBody leaves target untouched when the request has no body.
func parseOptionalBody(c *fiber.Ctx, target any) error {
	if len(strings.TrimSpace(string(c.Body()))) == 0 {
		return nil
	}
	return c.BodyParser(target)
}
