package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/bloomly/internal/services"
)

const (
	DateParsingStrict     = "strict"
	DateParsingPermissive = "permissive"
)

// DateParserFor maps the DATE_PARSING setting to a parser.
func DateParserFor(mode string, location *time.Location) (services.DateParser, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", DateParsingStrict:
		return services.StrictDateParser{Location: location}, nil
	case DateParsingPermissive:
		return services.PermissiveDateParser{Location: location}, nil
	default:
		return nil, fmt.Errorf("%w: DATE_PARSING must be %q or %q, got %q", ErrInvalidConfig, DateParsingStrict, DateParsingPermissive, mode)
	}
}
