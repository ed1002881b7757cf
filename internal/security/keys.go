package security

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const (
	MinSecretKeyLength = 32
	derivedKeyLength   = 32
)

var (
	ErrSecretKeyMissing     = errors.New("SECRET_KEY is required")
	ErrSecretKeyPlaceholder = errors.New("SECRET_KEY uses a placeholder value")
	ErrSecretKeyTooShort    = errors.New("SECRET_KEY is too short")
)

var placeholderSecrets = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
	"changeme":                                   {},
	"secret":                                     {},
}

// ValidateSecretKey rejects empty, placeholder and short secrets.
func ValidateSecretKey(secret string) error {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return ErrSecretKeyMissing
	}
	if _, placeholder := placeholderSecrets[strings.ToLower(trimmed)]; placeholder {
		return ErrSecretKeyPlaceholder
	}
	if len(trimmed) < MinSecretKeyLength {
		return fmt.Errorf("%w: need at least %d characters", ErrSecretKeyTooShort, MinSecretKeyLength)
	}
	return nil
}

// DeriveKey expands secret into a 32-byte key bound to purpose.
func DeriveKey(secret string, purpose string) ([]byte, error) {
	if err := ValidateSecretKey(secret); err != nil {
		return nil, err
	}
	reader := hkdf.New(sha256.New, []byte(strings.TrimSpace(secret)), nil, []byte("bloomly/"+purpose))
	key := make([]byte, derivedKeyLength)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", purpose, err)
	}
	return key, nil
}
