package llm

import (
	"context"
	"errors"
	"strings"
)

// defines the interface for LLM providers
type Provider interface {
	GenerateContent(ctx context.Context, prompt string, requestID string) (*GenerationResponse, error)
	GetProviderName() string
}

// GenerationResponse is the raw text output of one provider call.
type GenerationResponse struct {
	Content  string
	Metadata GenerationMetadata
}

type GenerationMetadata struct {
	ProcessingTime int `json:"processing_time_ms"`
	Provider       string
	Model          string
}

// represents an error from an LLM provider
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeAPIKey       = "invalid_api_key"
	ErrCodeQuota        = "quota_exceeded"
	ErrCodeRateLimit    = "rate_limit_exceeded"
	ErrCodeOverloaded   = "service_overloaded"
	ErrCodeServiceDown  = "service_unavailable"
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeTimeout      = "timeout"
)

// Classify maps an upstream SDK error onto a ProviderError by substring
// matching on the error text. The hosted APIs do not expose stable typed
// errors for these conditions.
func Classify(provider string, err error) *ProviderError {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}

	msg := strings.ToLower(err.Error())
	code := ErrCodeServiceDown
	switch {
	case strings.Contains(msg, "api key") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "401"):
		code = ErrCodeAPIKey
	case strings.Contains(msg, "quota"):
		code = ErrCodeQuota
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429"):
		code = ErrCodeRateLimit
	case strings.Contains(msg, "overloaded") || strings.Contains(msg, "529"):
		code = ErrCodeOverloaded
	case strings.Contains(msg, "deadline exceeded") || strings.Contains(msg, "timeout"):
		code = ErrCodeTimeout
	}

	return &ProviderError{
		Provider: provider,
		Code:     code,
		Message:  "upstream call failed",
		Err:      err,
	}
}

// Retryable reports whether the error is worth another attempt. Only
// transient overload conditions qualify; auth and quota failures never do.
func Retryable(err error) bool {
	var pe *ProviderError
	if !errors.As(err, &pe) {
		return false
	}
	switch pe.Code {
	case ErrCodeRateLimit, ErrCodeOverloaded, ErrCodeServiceDown, ErrCodeTimeout:
		return true
	}
	return false
}
