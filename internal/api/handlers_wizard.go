package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/bloomly/internal/models"
	"github.com/terraincognita07/bloomly/internal/services"
)

// StartWizard opens a new session, optionally seeded from a snapshot body,
// and replaces any session the client already holds.
func (handler *Handler) StartWizard(c *fiber.Ctx) error {
	if !handler.startLimiter.allow(requestLimiterKey(c), handler.now(), sessionStartLimit, sessionStartWindow) {
		return handler.localizedError(c, fiber.StatusTooManyRequests, "error.too_many_sessions")
	}

	state := handler.wizard.NewState()
	if len(c.Body()) > 0 {
		snapshot := snapshotInput{}
		if err := parseOptionalBody(c, &snapshot); err != nil {
			return handler.localizedError(c, fiber.StatusBadRequest, "error.invalid_input")
		}
		seeded, err := snapshot.toState()
		if err != nil {
			return handler.respondWizardError(c, errors.Join(services.ErrInvalidSnapshot, err), nil)
		}
		restored, err := handler.wizard.RestoreState(seeded)
		if err != nil {
			return handler.respondWizardError(c, err, nil)
		}
		state = restored
	}

	if previous, err := handler.sessionIDFromRequest(c); err == nil {
		handler.sessions.Delete(previous)
	}
	id := handler.sessions.Create(state)
	if err := handler.setSessionCookie(c, id); err != nil {
		handler.sessions.Delete(id)
		return handler.localizedError(c, fiber.StatusInternalServerError, "error.internal")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"state": newStateView(state)})
}

func (handler *Handler) GetWizard(c *fiber.Ctx) error {
	_, state := currentSession(c)
	return c.JSON(fiber.Map{
		"state":      newStateView(state),
		"step_title": handler.i18n.Translate(currentLanguage(c), "step."+state.Step.String()),
	})
}

func (handler *Handler) ContinueWizard(c *fiber.Ctx) error {
	_, state := currentSession(c)
	next, err := handler.wizard.Continue(state)
	if err != nil {
		return handler.respondWizardError(c, err, nil)
	}
	return handler.saveAndRespond(c, next, fiber.Map{})
}

func (handler *Handler) LoginWizard(c *fiber.Ctx) error {
	input := services.LoginInput{}
	if err := parseOptionalBody(c, &input); err != nil {
		return handler.localizedError(c, fiber.StatusBadRequest, "error.invalid_input")
	}

	_, state := currentSession(c)
	next, err := handler.wizard.Login(state, input)
	if err != nil {
		return handler.respondWizardError(c, err, nil)
	}
	return handler.saveAndRespond(c, next, fiber.Map{})
}

func (handler *Handler) SubmitCycle(c *fiber.Ctx) error {
	input := services.CycleInput{}
	if err := parseOptionalBody(c, &input); err != nil {
		return handler.localizedError(c, fiber.StatusBadRequest, "error.invalid_input")
	}

	_, state := currentSession(c)
	next, report, err := handler.wizard.SubmitCycle(state, input)
	if err != nil {
		return handler.respondWizardError(c, err, fiber.Map{"rejected": report.Rejected})
	}
	return handler.saveAndRespond(c, next, fiber.Map{"report": report})
}

// SubmitSymptoms records symptoms and mood and moves to results in one call.
func (handler *Handler) SubmitSymptoms(c *fiber.Ctx) error {
	input := services.SymptomMoodInput{}
	if err := parseOptionalBody(c, &input); err != nil {
		return handler.localizedError(c, fiber.StatusBadRequest, "error.invalid_input")
	}

	_, state := currentSession(c)
	next, results, err := handler.wizard.Submit(c.UserContext(), state, input)
	if err != nil {
		return handler.respondWizardError(c, err, nil)
	}
	return handler.saveAndRespond(c, next, fiber.Map{
		"results": handler.newResultsView(currentLanguage(c), results),
	})
}

func (handler *Handler) GetResults(c *fiber.Ctx) error {
	_, state := currentSession(c)
	results, err := handler.wizard.Results(c.UserContext(), state)
	if err != nil {
		return handler.respondWizardError(c, err, nil)
	}
	return c.JSON(fiber.Map{
		"state":   newStateView(state),
		"results": handler.newResultsView(currentLanguage(c), results),
	})
}

func (handler *Handler) EndWizard(c *fiber.Ctx) error {
	id, _ := currentSession(c)
	handler.sessions.Delete(id)
	handler.clearSessionCookie(c)
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) saveAndRespond(c *fiber.Ctx, state models.WizardState, payload fiber.Map) error {
	id, _ := currentSession(c)
	if err := handler.sessions.Put(id, state); err != nil {
		handler.clearSessionCookie(c)
		return handler.localizedError(c, fiber.StatusUnauthorized, "error.session_required")
	}
	payload["state"] = newStateView(state)
	return c.JSON(payload)
}
