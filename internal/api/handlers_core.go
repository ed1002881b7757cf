package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/bloomly/internal/models"
)

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Options lists the closed sets a client needs to build the wizard forms.
func (handler *Handler) Options(c *fiber.Ctx) error {
	language := currentLanguage(c)
	steps := make(map[string]string, 5)
	for _, step := range []models.Step{models.StepSplash, models.StepLogin, models.StepCycleInput, models.StepPMSMood, models.StepResults} {
		steps[step.String()] = handler.i18n.Translate(language, "step."+step.String())
	}

	return c.JSON(fiber.Map{
		"moods":        handler.wizard.Moods(),
		"symptoms":     handler.symptoms,
		"none_symptom": models.SymptomNone,
		"providers":    models.LoginProviders(),
		"date_formats": handler.wizard.DateLayouts(),
		"languages":    handler.i18n.SupportedLanguages(),
		"language":     language,
		"steps":        steps,
	})
}

func (handler *Handler) NotFound(c *fiber.Ctx) error {
	return apiError(c, fiber.StatusNotFound, "not found")
}
