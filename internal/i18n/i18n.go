package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

const (
	LangEN = "en"
	LangRU = "ru"
)

//go:embed locales/*.json
var embeddedLocales embed.FS

// Locales returns the message catalogs compiled into the binary.
func Locales() fs.FS {
	sub, err := fs.Sub(embeddedLocales, "locales")
	if err != nil {
		panic(err)
	}
	return sub
}

type Manager struct {
	defaultLanguage string
	locales         map[string]map[string]string
	supported       []string
}

// NewManager loads every <lang>.json at the root of locales. Both en and ru
// must be present.
func NewManager(defaultLanguage string, locales fs.FS) (*Manager, error) {
	entries, err := fs.ReadDir(locales, ".")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}

	manager := &Manager{locales: make(map[string]map[string]string)}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".json" {
			continue
		}
		language := strings.ToLower(strings.TrimSuffix(name, path.Ext(name)))

		content, err := fs.ReadFile(locales, name)
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", language, err)
		}
		messages := make(map[string]string)
		if err := json.Unmarshal(content, &messages); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", language, err)
		}
		if len(messages) == 0 {
			return nil, fmt.Errorf("locale %s is empty", language)
		}

		manager.locales[language] = messages
		manager.supported = append(manager.supported, language)
	}

	for _, required := range []string{LangEN, LangRU} {
		if _, ok := manager.locales[required]; !ok {
			return nil, fmt.Errorf("required locale %q missing", required)
		}
	}

	sort.Strings(manager.supported)
	manager.defaultLanguage = LangEN
	manager.defaultLanguage = manager.NormalizeLanguage(defaultLanguage)
	return manager, nil
}

func (manager *Manager) DefaultLanguage() string {
	return manager.defaultLanguage
}

func (manager *Manager) SupportedLanguages() []string {
	return append([]string(nil), manager.supported...)
}

// NormalizeLanguage reduces a tag like "ru-RU" to a supported base language,
// falling back to the default.
func (manager *Manager) NormalizeLanguage(raw string) string {
	if language := baseLanguage(raw); manager.isSupported(language) {
		return language
	}
	return manager.defaultLanguage
}

// DetectFromAcceptLanguage picks the first supported language in header order.
func (manager *Manager) DetectFromAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag, _, _ := strings.Cut(part, ";")
		if language := baseLanguage(tag); manager.isSupported(language) {
			return language
		}
	}
	return manager.defaultLanguage
}

// Translate looks key up in language, then the default language, then
// English, and returns the key itself when none has it.
func (manager *Manager) Translate(language string, key string) string {
	for _, candidate := range []string{manager.NormalizeLanguage(language), manager.defaultLanguage, LangEN} {
		if value, ok := manager.lookup(candidate, key); ok {
			return value
		}
	}
	return key
}

func (manager *Manager) Translatef(language string, key string, args ...any) string {
	return fmt.Sprintf(manager.Translate(language, key), args...)
}

func (manager *Manager) lookup(language string, key string) (string, bool) {
	value, ok := manager.locales[language][key]
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

func (manager *Manager) isSupported(language string) bool {
	_, ok := manager.locales[language]
	return language != "" && ok
}

func baseLanguage(raw string) string {
	language := strings.ToLower(strings.TrimSpace(raw))
	language = strings.ReplaceAll(language, "_", "-")
	language, _, _ = strings.Cut(language, "-")
	return language
}
