package llm

import (
	"context"
	"errors"
	"testing"
)

type stubProvider struct{}

func (stubProvider) GenerateContent(ctx context.Context, prompt, requestID string) (*GenerationResponse, error) {
	return &GenerationResponse{Content: "ok"}, nil
}
func (stubProvider) GetProviderName() string { return "stub" }

func TestRegistry(t *testing.T) {
	RegisterProvider("stub", func() (Provider, error) { return stubProvider{}, nil })

	p, err := NewProvider("stub")
	if err != nil {
		t.Fatalf("NewProvider returned error: %v", err)
	}
	if p.GetProviderName() != "stub" {
		t.Fatalf("unexpected provider name: %s", p.GetProviderName())
	}

	if _, err := NewProvider("missing"); err == nil {
		t.Fatal("expected error for unregistered provider")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		msg  string
		code string
	}{
		{"invalid API key supplied", ErrCodeAPIKey},
		{"you exceeded your current quota", ErrCodeQuota},
		{"rate limit exceeded, slow down", ErrCodeRateLimit},
		{"model is overloaded (529)", ErrCodeOverloaded},
		{"context deadline exceeded", ErrCodeTimeout},
		{"connection refused", ErrCodeServiceDown},
	}

	for _, tt := range tests {
		pe := Classify("test", errors.New(tt.msg))
		if pe.Code != tt.code {
			t.Fatalf("Classify(%q) = %s, want %s", tt.msg, pe.Code, tt.code)
		}
	}
}

func TestClassifyPassthrough(t *testing.T) {
	orig := &ProviderError{Provider: "p", Code: ErrCodeQuota, Message: "m"}
	if got := Classify("p", orig); got != orig {
		t.Fatal("expected existing ProviderError to pass through unchanged")
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(&ProviderError{Code: ErrCodeAPIKey}) {
		t.Fatal("api key errors must not be retried")
	}
	if Retryable(&ProviderError{Code: ErrCodeQuota}) {
		t.Fatal("quota errors must not be retried")
	}
	if !Retryable(&ProviderError{Code: ErrCodeOverloaded}) {
		t.Fatal("overloaded errors should be retried")
	}
	if Retryable(errors.New("plain")) {
		t.Fatal("plain errors are not retryable")
	}
}
