package security

import (
	"errors"
	"strings"
)

const guestSuffixLength = 8

var ErrProviderRequired = errors.New("provider is required")

// PseudoIdentity makes a throwaway identifier for a mocked provider login,
// such as "google:guest-7kq2m9xa".
func PseudoIdentity(provider string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(provider))
	if name == "" {
		return "", ErrProviderRequired
	}
	suffix, err := RandomString(guestSuffixLength, GuestAlphabet)
	if err != nil {
		return "", err
	}
	return name + ":guest-" + suffix, nil
}
