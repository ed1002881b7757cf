package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/bloomly/internal/classifier"
	"github.com/terraincognita07/bloomly/internal/i18n"
	"github.com/terraincognita07/bloomly/internal/models"
	"github.com/terraincognita07/bloomly/internal/services"
	"github.com/terraincognita07/bloomly/internal/session"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

type wizardTestApp struct {
	app      *fiber.App
	handler  *Handler
	sessions *session.Store
	cookie   *http.Cookie
}

func testClassifiers(t *testing.T) (classifier.Classifier, classifier.Classifier) {
	t.Helper()

	nextPeriod, err := classifier.Build(classifier.Artifact{
		Name:      "next_period",
		Kind:      classifier.KindLinear,
		Output:    "value",
		NFeatures: 2,
		Linear:    &classifier.LinearSpec{Coefficients: []float64{0.5, 0}},
	}, time.Second)
	if err != nil {
		t.Fatalf("build next period model: %v", err)
	}

	phase, err := classifier.Build(classifier.Artifact{
		Name:      "cycle_phase",
		Kind:      classifier.KindTree,
		Output:    "index",
		NFeatures: 2,
		Classes:   []string{"follicular", "luteal"},
		Tree: &classifier.TreeSpec{Nodes: []classifier.TreeNode{
			{Feature: 1, Threshold: 0.5, Left: 1, Right: 2},
			{Leaf: true, Value: 0},
			{Leaf: true, Value: 1},
		}},
	}, time.Second)
	if err != nil {
		t.Fatalf("build phase model: %v", err)
	}
	return nextPeriod, phase
}

func newWizardTestApp(t *testing.T) *wizardTestApp {
	t.Helper()
	nextPeriod, phase := testClassifiers(t)
	return newWizardTestAppWith(t, services.NewPredictionService(nextPeriod, phase, services.PhaseDecodingAuto))
}

func newWizardTestAppWith(t *testing.T, predictor services.OutcomePredictor) *wizardTestApp {
	t.Helper()

	manager, err := i18n.NewManager("en", i18n.Locales())
	if err != nil {
		t.Fatalf("init i18n: %v", err)
	}

	matcher := services.NewRecommendationMatcher([]models.RecommendationEntry{
		{Phase: "follicular", Mood: "Good", Category: "Exercise", Recommendation: "Try interval training"},
		{Phase: "luteal", Mood: "Bad", Category: "Rest", Recommendation: "Take a warm bath"},
		{Phase: "follicular", Mood: "Good", Category: "Nutrition", Recommendation: "Add lean protein"},
	}, true)

	wizard := services.NewWizardController(services.WizardOptions{
		Parser:          services.StrictDateParser{Location: time.UTC},
		Predictor:       predictor,
		Recommendations: matcher,
		PseudoIdentity: func(provider string) (string, error) {
			return "guest-" + provider, nil
		},
	})

	sessions := session.NewStore()
	handler, err := NewHandler(HandlerOptions{
		Wizard:     wizard,
		Sessions:   sessions,
		I18n:       manager,
		SecretKey:  testSecretKey,
		SessionTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New()
	app.Use(handler.LanguageMiddleware)
	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return &wizardTestApp{app: app, handler: handler, sessions: sessions}
}

// do sends a JSON request carrying the current session cookie and keeps any
// session cookie the response sets.
func (ta *wizardTestApp) do(t *testing.T, method string, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if ta.cookie != nil {
		request.AddCookie(ta.cookie)
	}

	response, err := ta.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	if cookie := responseCookie(response.Cookies(), sessionCookieName); cookie != nil {
		if cookie.Value == "" {
			ta.cookie = nil
		} else {
			ta.cookie = &http.Cookie{Name: cookie.Name, Value: cookie.Value}
		}
	}

	payload := map[string]any{}
	raw, err := io.ReadAll(response.Body)
	response.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			t.Fatalf("decode body %q: %v", raw, err)
		}
	}
	return response, payload
}

func (ta *wizardTestApp) expectStatus(t *testing.T, response *http.Response, payload map[string]any, want int) {
	t.Helper()
	if response.StatusCode != want {
		t.Fatalf("expected status %d, got %d: %v", want, response.StatusCode, payload)
	}
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func stateStep(t *testing.T, payload map[string]any) string {
	t.Helper()
	state, ok := payload["state"].(map[string]any)
	if !ok {
		t.Fatalf("response has no state: %v", payload)
	}
	step, _ := state["step"].(string)
	return step
}

// advanceToMoodStep drives a fresh session through splash, login and cycle input.
func (ta *wizardTestApp) advanceToMoodStep(t *testing.T) {
	t.Helper()

	response, payload := ta.do(t, http.MethodPost, "/api/wizard", nil)
	ta.expectStatus(t, response, payload, http.StatusCreated)
	response, payload = ta.do(t, http.MethodPost, "/api/wizard/continue", nil)
	ta.expectStatus(t, response, payload, http.StatusOK)
	response, payload = ta.do(t, http.MethodPost, "/api/wizard/login", map[string]any{"provider": "Email", "email": "Alex@Example.com"})
	ta.expectStatus(t, response, payload, http.StatusOK)
	response, payload = ta.do(t, http.MethodPost, "/api/wizard/cycle", map[string]any{"dates": []string{"2025-12-01", "2025-12-28"}})
	ta.expectStatus(t, response, payload, http.StatusOK)
}
