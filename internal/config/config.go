// Package config resolves runtime settings from .env, an optional YAML file
// and the environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/terraincognita07/bloomly/internal/catalog"
	"github.com/terraincognita07/bloomly/internal/models"
	"github.com/terraincognita07/bloomly/internal/security"
	"github.com/terraincognita07/bloomly/internal/services"
	"github.com/terraincognita07/bloomly/internal/session"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath        = "config.yaml"
	defaultPort              = "8080"
	defaultClassifierTimeout = 10
	defaultSessionTTL        = 60
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Port            string `yaml:"port"`
	DBPath          string `yaml:"db_path"`
	SecretKey       string `yaml:"secret_key"`
	CookieSecure    bool   `yaml:"cookie_secure"`
	Timezone        string `yaml:"timezone"`
	DefaultLanguage string `yaml:"default_language"`

	RecommendationsPath     string `yaml:"recommendations_path"`
	RecommendationsEncoding string `yaml:"recommendations_encoding"`
	RecommendationMatch     string `yaml:"recommendation_match"`

	NextPeriodModelPath      string `yaml:"next_period_model_path"`
	CyclePhaseModelPath      string `yaml:"cycle_phase_model_path"`
	PhaseDecoding            string `yaml:"phase_decoding"`
	ClassifierTimeoutSeconds int    `yaml:"classifier_timeout_seconds"`

	DateParsing         string   `yaml:"date_parsing"`
	Moods               []string `yaml:"moods"`
	DefaultMood         string   `yaml:"default_mood"`
	DefaultCycleLength  int      `yaml:"default_cycle_length"`
	DefaultPeriodLength int      `yaml:"default_period_length"`

	SessionTTLMinutes    int    `yaml:"session_ttl_minutes"`
	SessionSweepSchedule string `yaml:"session_sweep_schedule"`

	TelegramBotToken string `yaml:"telegram_bot_token"`

	Location *time.Location `yaml:"-"`
}

// Load reads .env (if present), then CONFIG_PATH or config.yaml (if present),
// then applies environment overrides and defaults, and validates the result.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	path := DefaultConfigPath
	if fromEnv := strings.TrimSpace(os.Getenv("CONFIG_PATH")); fromEnv != "" {
		path = fromEnv
	}
	return LoadFile(path)
}

// LoadFile is Load without the .env step; a missing file is not an error.
func LoadFile(path string) (Config, error) {
	var cfg Config
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	envOverride(&cfg.Port, "PORT")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.SecretKey, "SECRET_KEY")
	envOverrideBool(&cfg.CookieSecure, "COOKIE_SECURE")
	envOverride(&cfg.Timezone, "TZ")
	envOverride(&cfg.DefaultLanguage, "DEFAULT_LANGUAGE")
	envOverride(&cfg.RecommendationsPath, "RECOMMENDATIONS_PATH")
	envOverride(&cfg.RecommendationsEncoding, "RECOMMENDATIONS_ENCODING")
	envOverride(&cfg.RecommendationMatch, "RECOMMENDATION_MATCH")
	envOverride(&cfg.NextPeriodModelPath, "NEXT_PERIOD_MODEL_PATH")
	envOverride(&cfg.CyclePhaseModelPath, "CYCLE_PHASE_MODEL_PATH")
	envOverride(&cfg.PhaseDecoding, "PHASE_DECODING")
	envOverride(&cfg.DateParsing, "DATE_PARSING")
	envOverride(&cfg.DefaultMood, "DEFAULT_MOOD")
	envOverride(&cfg.SessionSweepSchedule, "SESSION_SWEEP_SCHEDULE")
	envOverride(&cfg.TelegramBotToken, "TELEGRAM_BOT_TOKEN")
	if moods := os.Getenv("MOODS"); moods != "" {
		cfg.Moods = splitList(moods)
	}

	for key, field := range map[string]*int{
		"CLASSIFIER_TIMEOUT_SECONDS": &cfg.ClassifierTimeoutSeconds,
		"DEFAULT_CYCLE_LENGTH":       &cfg.DefaultCycleLength,
		"DEFAULT_PERIOD_LENGTH":      &cfg.DefaultPeriodLength,
		"SESSION_TTL_MINUTES":        &cfg.SessionTTLMinutes,
	} {
		if err := envOverrideInt(field, key); err != nil {
			return err
		}
	}
	return nil
}

func applyDefaults(cfg *Config) {
	setDefault(&cfg.Port, defaultPort)
	setDefault(&cfg.DBPath, filepath.Join("data", "bloomly.db"))
	setDefault(&cfg.Timezone, "UTC")
	setDefault(&cfg.DefaultLanguage, "en")
	setDefault(&cfg.RecommendationsEncoding, catalog.DefaultEncoding)
	setDefault(&cfg.RecommendationMatch, string(services.MatchAuto))
	setDefault(&cfg.PhaseDecoding, string(services.PhaseDecodingAuto))
	setDefault(&cfg.DateParsing, DateParsingStrict)
	setDefault(&cfg.DefaultMood, models.DefaultMood)
	setDefault(&cfg.SessionSweepSchedule, session.DefaultSweepSchedule)

	if cfg.ClassifierTimeoutSeconds == 0 {
		cfg.ClassifierTimeoutSeconds = defaultClassifierTimeout
	}
	if cfg.DefaultCycleLength == 0 {
		cfg.DefaultCycleLength = models.DefaultCycleLength
	}
	if cfg.DefaultPeriodLength == 0 {
		cfg.DefaultPeriodLength = models.DefaultPeriodLength
	}
	if cfg.SessionTTLMinutes == 0 {
		cfg.SessionTTLMinutes = defaultSessionTTL
	}
	if len(cfg.Moods) == 0 {
		cfg.Moods = models.DefaultMoods()
	}
}

// Validate checks everything except SECRET_KEY, which only the server needs.
func (cfg *Config) Validate() error {
	if _, err := ResolvePort(cfg.Port); err != nil {
		return err
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("%w: TZ %q: %v", ErrInvalidConfig, cfg.Timezone, err)
	}
	cfg.Location = location

	if _, err := catalog.LookupEncoding(cfg.RecommendationsEncoding); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := services.ParseMatchMode(cfg.RecommendationMatch); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := services.ParsePhaseDecoding(cfg.PhaseDecoding); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := DateParserFor(cfg.DateParsing, location); err != nil {
		return err
	}
	if _, err := session.ParseSchedule(cfg.SessionSweepSchedule); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if cfg.ClassifierTimeoutSeconds < 1 {
		return fmt.Errorf("%w: CLASSIFIER_TIMEOUT_SECONDS must be >= 1, got %d", ErrInvalidConfig, cfg.ClassifierTimeoutSeconds)
	}
	if cfg.SessionTTLMinutes < 1 {
		return fmt.Errorf("%w: SESSION_TTL_MINUTES must be >= 1, got %d", ErrInvalidConfig, cfg.SessionTTLMinutes)
	}
	if !services.IsValidCycleLength(cfg.DefaultCycleLength) {
		return fmt.Errorf("%w: DEFAULT_CYCLE_LENGTH %d outside %d-%d", ErrInvalidConfig, cfg.DefaultCycleLength, services.MinCycleLength, services.MaxCycleLength)
	}
	if !services.IsValidPeriodLength(cfg.DefaultPeriodLength) {
		return fmt.Errorf("%w: DEFAULT_PERIOD_LENGTH %d outside %d-%d", ErrInvalidConfig, cfg.DefaultPeriodLength, services.MinPeriodLength, services.MaxPeriodLength)
	}

	found := false
	for _, mood := range cfg.Moods {
		if strings.EqualFold(strings.TrimSpace(mood), strings.TrimSpace(cfg.DefaultMood)) {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: DEFAULT_MOOD %q is not one of MOODS", ErrInvalidConfig, cfg.DefaultMood)
	}
	return nil
}

// ValidateServer adds the checks that only apply when serving HTTP.
func (cfg *Config) ValidateServer() error {
	if err := security.ValidateSecretKey(cfg.SecretKey); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (cfg Config) ClassifierTimeout() time.Duration {
	return time.Duration(cfg.ClassifierTimeoutSeconds) * time.Second
}

func (cfg Config) SessionTTL() time.Duration {
	return time.Duration(cfg.SessionTTLMinutes) * time.Minute
}

func ResolvePort(raw string) (string, error) {
	port := strings.TrimSpace(raw)
	if port == "" {
		return defaultPort, nil
	}
	value, err := strconv.Atoi(port)
	if err != nil || value < 1 || value > 65535 {
		return "", fmt.Errorf("%w: PORT must be a number between 1 and 65535, got %q", ErrInvalidConfig, raw)
	}
	return port, nil
}

func envOverride(field *string, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		*field = value
	}
}

func envOverrideBool(field *bool, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		*field = strings.EqualFold(value, "true") || value == "1"
	}
}

func envOverrideInt(field *int, key string) error {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%w: %s %q: %v", ErrInvalidConfig, key, value, err)
	}
	*field = parsed
	return nil
}

func setDefault(field *string, fallback string) {
	if strings.TrimSpace(*field) == "" {
		*field = fallback
	}
}

func splitList(raw string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
