package llm

import (
	"errors"
	"strings"
)

// ErrorKind is the closed taxonomy every dispatch failure is mapped into
// before it reaches the presentation layer.
type ErrorKind string

const (
	// ErrCredentialMissing means no credential resolved; raised before any
	// network call is attempted.
	ErrCredentialMissing ErrorKind = "credential_missing"
	// ErrInvalidCredential covers unauthorized / key-not-valid /
	// entity-not-found provider responses.
	ErrInvalidCredential ErrorKind = "invalid_credential"
	// ErrQuotaExceeded covers rate-limit / quota / 429-class conditions.
	ErrQuotaExceeded ErrorKind = "quota_exceeded"
	// ErrProviderUnavailable covers overloaded / 503-class conditions.
	ErrProviderUnavailable ErrorKind = "provider_unavailable"
	// ErrProviderUnsupported means the provider selector was not recognized.
	ErrProviderUnsupported ErrorKind = "provider_unsupported"
	// ErrUnknown is the catch-all; it carries the raw message verbatim.
	ErrUnknown ErrorKind = "unknown"
)

// DispatchError is the classified failure of one dispatch invocation.
type DispatchError struct {
	Kind    ErrorKind
	Message string
}

func (e *DispatchError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// KindOf extracts the taxonomy tag from an error, ErrUnknown when the error
// did not come out of a dispatch.
func KindOf(err error) ErrorKind {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ErrUnknown
}

// classifyPatterns maps provider error text to taxonomy tags. Vendor error
// messages are not structured consistently enough for field-based
// classification, so this is substring matching and inherently best-effort:
// the first entry with any matching pattern wins, so more specific classes
// sit above more generic ones. All patterns are lowercase; matching is
// case-insensitive.
var classifyPatterns = []struct {
	patterns []string
	kind     ErrorKind
}{
	{
		patterns: []string{"429", "resource_exhausted", "quota", "rate limit", "too many requests"},
		kind:     ErrQuotaExceeded,
	},
	{
		patterns: []string{"503", "overloaded", "unavailable", "service_unavailable"},
		kind:     ErrProviderUnavailable,
	},
	{
		patterns: []string{
			"api key not valid", "invalid_argument", "requested entity was not found",
			"unauthorized", "invalid api key", "permission denied", "401", "403",
			"authentication_error", "incorrect api key",
		},
		kind: ErrInvalidCredential,
	},
}

// classify maps a raw provider failure into exactly one taxonomy tag. The
// original message text is always preserved for display.
func classify(err error) *DispatchError {
	var de *DispatchError
	if errors.As(err, &de) {
		return de
	}

	msg := err.Error()
	lower := strings.ToLower(msg)
	for _, entry := range classifyPatterns {
		for _, p := range entry.patterns {
			if strings.Contains(lower, p) {
				return &DispatchError{Kind: entry.kind, Message: msg}
			}
		}
	}
	return &DispatchError{Kind: ErrUnknown, Message: msg}
}
