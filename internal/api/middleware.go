package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/bloomly/internal/models"
)

const (
	sessionCookieName  = "bloomly_session"
	languageCookieName = "bloomly_lang"
	contextSessionKey  = "session_id"
	contextStateKey    = "wizard_state"
	contextLanguageKey = "current_language"
)

func (handler *Handler) LanguageMiddleware(c *fiber.Ctx) error {
	cookieLanguage := c.Cookies(languageCookieName)
	language := handler.i18n.DetectFromAcceptLanguage(c.Get("Accept-Language"))
	if requested := c.Query("lang"); requested != "" {
		language = handler.i18n.NormalizeLanguage(requested)
	} else if cookieLanguage != "" {
		language = handler.i18n.NormalizeLanguage(cookieLanguage)
	}

	if cookieLanguage != language {
		c.Cookie(&fiber.Cookie{
			Name:     languageCookieName,
			Value:    language,
			Path:     "/",
			Secure:   handler.cookieSecure,
			SameSite: "Lax",
			Expires:  handler.now().AddDate(1, 0, 0),
		})
	}

	c.Locals(contextLanguageKey, language)
	return c.Next()
}

// SessionRequired resolves the session cookie to a stored wizard state.
func (handler *Handler) SessionRequired(c *fiber.Ctx) error {
	id, err := handler.sessionIDFromRequest(c)
	if err != nil {
		handler.clearSessionCookie(c)
		return handler.localizedError(c, fiber.StatusUnauthorized, "error.session_required")
	}
	state, err := handler.sessions.Get(id)
	if err != nil {
		handler.clearSessionCookie(c)
		return handler.localizedError(c, fiber.StatusUnauthorized, "error.session_required")
	}

	if err := handler.setSessionCookie(c, id); err != nil {
		return handler.localizedError(c, fiber.StatusInternalServerError, "error.internal")
	}
	c.Locals(contextSessionKey, id)
	c.Locals(contextStateKey, state)
	return c.Next()
}

func currentSession(c *fiber.Ctx) (string, models.WizardState) {
	id, _ := c.Locals(contextSessionKey).(string)
	state, _ := c.Locals(contextStateKey).(models.WizardState)
	return id, state
}

func currentLanguage(c *fiber.Ctx) string {
	language, _ := c.Locals(contextLanguageKey).(string)
	return language
}

func (handler *Handler) cookieExpiry() time.Time {
	return handler.now().Add(handler.sessionTTL)
}
