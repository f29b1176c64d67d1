package domain

import (
	"fmt"
	"strings"
)

// AlphaVantageAPIKey is where the portfolio probe finds its API key.
const AlphaVantageAPIKey = "alphavantage://api_key"

// CredentialKey addresses a secret as scheme://name, e.g. alphavantage://api_key.
type CredentialKey struct {
	Scheme string
	Name   string
}

func ParseCredentialKey(raw string) (CredentialKey, error) {
	scheme, name, ok := strings.Cut(strings.TrimSpace(raw), "://")
	if !ok || !validSegment(scheme) || name == "" {
		return CredentialKey{}, fmt.Errorf("invalid credential key %q: want scheme://name", raw)
	}

	for _, part := range strings.Split(name, "/") {
		if !validSegment(part) {
			return CredentialKey{}, fmt.Errorf("invalid credential key %q", raw)
		}
	}

	return CredentialKey{Scheme: scheme, Name: name}, nil
}

func (k CredentialKey) String() string {
	return k.Scheme + "://" + k.Name
}

// Path renders the key as a slash separated path below a store root.
func (k CredentialKey) Path() string {
	return k.Scheme + "/" + k.Name
}

func validSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, `\:`)
}
