package questions

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"voxa/internal/llm"
	"voxa/internal/prompts"
)

type stubProvider struct {
	responses []string
	errs      []error
	calls     int
}

func (s *stubProvider) GenerateContent(ctx context.Context, prompt, requestID string) (*llm.GenerationResponse, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	var content string
	if i < len(s.responses) {
		content = s.responses[i]
	}
	return &llm.GenerationResponse{Content: content}, nil
}

func (s *stubProvider) GetProviderName() string { return "stub" }

func newService(t *testing.T, p llm.Provider) *Service {
	t.Helper()
	pm, err := prompts.NewPromptManager()
	if err != nil {
		t.Fatalf("NewPromptManager error: %v", err)
	}
	return NewService(p, pm, zap.NewNop())
}

func disableBackoff(t *testing.T) {
	t.Helper()
	orig := after
	after = func(time.Duration) <-chan time.Time {
		ch := make(chan time.Time, 1)
		ch <- time.Time{}
		return ch
	}
	t.Cleanup(func() { after = orig })
}

func TestGenericParsesProviderJSON(t *testing.T) {
	provider := &stubProvider{responses: []string{
		`[{"question":"What is a goroutine?","type":"technical"}]`,
	}}
	svc := newService(t, provider)

	got, err := svc.Generic(context.Background(), "Backend Engineer")
	if err != nil {
		t.Fatalf("Generic error: %v", err)
	}
	if len(got) != 1 || got[0].Question != "What is a goroutine?" {
		t.Fatalf("unexpected questions: %+v", got)
	}
}

func TestGenericStripsMarkdownFences(t *testing.T) {
	provider := &stubProvider{responses: []string{
		"```json\n[{\"question\":\"Why this company?\",\"type\":\"behavioral\"}]\n```",
	}}
	svc := newService(t, provider)

	got, err := svc.Generic(context.Background(), "Product Manager")
	if err != nil {
		t.Fatalf("Generic error: %v", err)
	}
	if len(got) != 1 || got[0].Type != "behavioral" {
		t.Fatalf("unexpected questions: %+v", got)
	}
}

func TestGenerateFallsBackOnProviderFailure(t *testing.T) {
	disableBackoff(t)
	apiErr := &llm.ProviderError{Provider: "stub", Code: llm.ErrCodeAPIKey, Message: "bad key"}
	provider := &stubProvider{errs: []error{apiErr}}
	svc := newService(t, provider)

	got, err := svc.Generic(context.Background(), "Data Scientist")
	if err != nil {
		t.Fatalf("expected fallback, got error: %v", err)
	}
	if len(got) != 7 {
		t.Fatalf("expected 7 fallback questions, got %d", len(got))
	}
	if provider.calls != 1 {
		t.Fatalf("non-retryable error should not be retried, got %d calls", provider.calls)
	}
	// role-specific pair for a known role
	if got[5].Question != "Explain a machine learning project you've worked on from start to finish." {
		t.Fatalf("expected Data Scientist bank, got %q", got[5].Question)
	}
}

func TestGenerateFallsBackOnInvalidJSON(t *testing.T) {
	provider := &stubProvider{responses: []string{"I think good questions would be..."}}
	svc := newService(t, provider)

	got, err := svc.Generic(context.Background(), "Mystery Role")
	if err != nil {
		t.Fatalf("expected fallback, got error: %v", err)
	}
	// unknown role gets the generic role-specific pair
	if got[5].Question != "What specific skills and experience make you a good fit for this role?" {
		t.Fatalf("expected generic role pair, got %q", got[5].Question)
	}
}

func TestCallWithRetryRetriesTransientErrors(t *testing.T) {
	disableBackoff(t)
	overloaded := &llm.ProviderError{Provider: "stub", Code: llm.ErrCodeOverloaded, Message: "overloaded"}
	provider := &stubProvider{
		errs:      []error{overloaded, overloaded, nil},
		responses: []string{"", "", `[{"question":"Recovered on retry?","type":"technical"}]`},
	}
	svc := newService(t, provider)

	got, err := svc.Personalized(context.Background(), "Frontend Developer", "build UIs", "ten years of CSS")
	if err != nil {
		t.Fatalf("Personalized error: %v", err)
	}
	if provider.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", provider.calls)
	}
	if got[0].Question != "Recovered on retry?" {
		t.Fatalf("unexpected questions: %+v", got)
	}
}

func TestCallWithRetryExhaustsAndFallsBack(t *testing.T) {
	disableBackoff(t)
	rateLimited := &llm.ProviderError{Provider: "stub", Code: llm.ErrCodeRateLimit, Message: "429"}
	provider := &stubProvider{errs: []error{rateLimited, rateLimited, rateLimited}}
	svc := newService(t, provider)

	got, err := svc.Generic(context.Background(), "Frontend Developer")
	if err != nil {
		t.Fatalf("expected fallback, got error: %v", err)
	}
	if provider.calls != maxRetries {
		t.Fatalf("expected %d attempts, got %d", maxRetries, provider.calls)
	}
	if len(got) != 7 {
		t.Fatalf("expected fallback bank, got %d questions", len(got))
	}
}

func TestCallWithRetryStopsWhenContextCancelled(t *testing.T) {
	overloaded := &llm.ProviderError{Provider: "stub", Code: llm.ErrCodeOverloaded, Message: "overloaded"}
	provider := &stubProvider{errs: []error{overloaded, overloaded, overloaded}}
	svc := newService(t, provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// the real one-second backoff is in play; cancellation must win it
	_, err := svc.callWithRetry(ctx, "prompt")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("expected a single attempt before bailing out, got %d", provider.calls)
	}
}

func TestParseQuestionsRejectsEmptySet(t *testing.T) {
	if _, err := parseQuestions("[]"); err == nil {
		t.Fatal("expected error for empty set")
	}
	if _, err := parseQuestions(`[{"question":"","type":"technical"}]`); err == nil {
		t.Fatal("expected error for blank question text")
	}
}

func TestFallbackQuestionsShape(t *testing.T) {
	for _, role := range []string{"Frontend Developer", "Product Manager", "Data Scientist", "Surprise Role"} {
		got := FallbackQuestions(role)
		if len(got) != 7 {
			t.Fatalf("role %q: expected 7 questions, got %d", role, len(got))
		}
	}
}
