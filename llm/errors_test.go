package llm

import (
	"errors"
	"testing"
)

func TestClassifyVendorErrors(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want ErrorKind
	}{
		{"http 429", "API error (status 429): too many requests", ErrQuotaExceeded},
		{"gemini quota", "RESOURCE_EXHAUSTED: You exceeded your current quota, please check your plan", ErrQuotaExceeded},
		{"rate limit", "rate limit reached for gpt-4-turbo-preview", ErrQuotaExceeded},
		{"gemini bad key", "API key not valid. Please pass a valid API key.", ErrInvalidCredential},
		{"openai bad key", "Incorrect API key provided: sk-abc123", ErrInvalidCredential},
		{"unauthorized", "401 unauthorized", ErrInvalidCredential},
		{"entity not found", "Requested entity was not found.", ErrInvalidCredential},
		{"overloaded", "Overloaded", ErrProviderUnavailable},
		{"http 503", "API error (status 503): service temporarily unavailable", ErrProviderUnavailable},
		{"garbage", "something nobody has ever seen before", ErrUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(errors.New(tt.msg))
			if got.Kind != tt.want {
				t.Errorf("classify(%q).Kind = %s, want %s", tt.msg, got.Kind, tt.want)
			}
			// Classification must be deterministic.
			again := classify(errors.New(tt.msg))
			if again.Kind != got.Kind {
				t.Errorf("classify(%q) not deterministic: %s then %s", tt.msg, got.Kind, again.Kind)
			}
		})
	}
}

func TestClassifyPreservesMessage(t *testing.T) {
	raw := "something nobody has ever seen before"
	got := classify(errors.New(raw))
	if got.Message != raw {
		t.Errorf("unknown errors must carry the original message verbatim, got %q", got.Message)
	}
}

func TestClassifyPassesDispatchErrorsThrough(t *testing.T) {
	orig := &DispatchError{Kind: ErrCredentialMissing, Message: "nenhuma chave de API configurada"}
	if got := classify(orig); got != orig {
		t.Error("already-classified errors must not be reclassified")
	}
}

func TestKindOf(t *testing.T) {
	err := error(&DispatchError{Kind: ErrQuotaExceeded, Message: "quota"})
	if KindOf(err) != ErrQuotaExceeded {
		t.Errorf("KindOf = %s, want %s", KindOf(err), ErrQuotaExceeded)
	}
	if KindOf(errors.New("plain")) != ErrUnknown {
		t.Error("non-dispatch errors should report ErrUnknown")
	}
}
