package api

import (
	"errors"
	"time"

	"github.com/terraincognita07/bloomly/internal/i18n"
	"github.com/terraincognita07/bloomly/internal/models"
	"github.com/terraincognita07/bloomly/internal/security"
	"github.com/terraincognita07/bloomly/internal/services"
	"github.com/terraincognita07/bloomly/internal/session"
)

const (
	defaultSessionTTL    = time.Hour
	sessionStartLimit    = 20
	sessionStartWindow   = 10 * time.Minute
	sessionCookiePurpose = "session-cookie"
)

type Handler struct {
	wizard       *services.WizardController
	sessions     *session.Store
	i18n         *i18n.Manager
	sessionKey   []byte
	sessionTTL   time.Duration
	cookieSecure bool
	symptoms     []models.BuiltinSymptom
	startLimiter *attemptLimiter
	now          func() time.Time
}

type HandlerOptions struct {
	Wizard       *services.WizardController
	Sessions     *session.Store
	I18n         *i18n.Manager
	SecretKey    string
	SessionTTL   time.Duration
	CookieSecure bool
}

func NewHandler(options HandlerOptions) (*Handler, error) {
	if options.Wizard == nil {
		return nil, errors.New("wizard controller is required")
	}
	if options.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if options.I18n == nil {
		return nil, errors.New("i18n manager is required")
	}

	key, err := security.DeriveKey(options.SecretKey, sessionCookiePurpose)
	if err != nil {
		return nil, err
	}

	ttl := options.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	return &Handler{
		wizard:       options.Wizard,
		sessions:     options.Sessions,
		i18n:         options.I18n,
		sessionKey:   key,
		sessionTTL:   ttl,
		cookieSecure: options.CookieSecure,
		symptoms:     models.DefaultBuiltinSymptoms(),
		startLimiter: newAttemptLimiter(),
		now:          time.Now,
	}, nil
}
