package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api")
	api.Get("/options", handler.Options)

	api.Post("/wizard", handler.StartWizard)

	wizard := api.Group("/wizard", handler.SessionRequired)
	wizard.Get("", handler.GetWizard)
	wizard.Delete("", handler.EndWizard)
	wizard.Post("/continue", handler.ContinueWizard)
	wizard.Post("/login", handler.LoginWizard)
	wizard.Post("/cycle", handler.SubmitCycle)
	wizard.Post("/symptoms", handler.SubmitSymptoms)
	wizard.Get("/results", handler.GetResults)
}
