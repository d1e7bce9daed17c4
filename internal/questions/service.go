// Package questions generates interview question sets via the configured
// LLM provider, falling back to a built-in bank when the provider fails.
package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"voxa/internal/llm"
	"voxa/internal/metrics"
	"voxa/internal/models"
	"voxa/internal/prompts"
	"voxa/internal/utils"
)

const (
	maxRetries = 3
	baseDelay  = time.Second
)

// test seam
var after = time.After

type Service struct {
	provider llm.Provider
	prompts  prompts.PromptProvider
	logger   *zap.Logger
}

func NewService(provider llm.Provider, pm prompts.PromptProvider, logger *zap.Logger) *Service {
	return &Service{provider: provider, prompts: pm, logger: logger}
}

// Generic returns 5-7 questions for a role. On provider failure the
// built-in bank is served instead, so the caller always gets a set.
func (s *Service) Generic(ctx context.Context, role string) ([]models.Question, error) {
	prompt, err := s.prompts.BuildPrompt("questions", "generic", map[string]string{"Role": role})
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, prompt, role)
}

// Personalized returns 6-8 questions tailored to the job description and
// resume. Falls back to the built-in bank like Generic.
func (s *Service) Personalized(ctx context.Context, role, jobDescription, resume string) ([]models.Question, error) {
	prompt, err := s.prompts.BuildPrompt("questions", "personalized", map[string]string{
		"Role":           role,
		"JobDescription": jobDescription,
		"Resume":         resume,
	})
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, prompt, role)
}

func (s *Service) generate(ctx context.Context, prompt, role string) ([]models.Question, error) {
	content, err := s.callWithRetry(ctx, prompt)
	if err == nil {
		parsed, parseErr := parseQuestions(content)
		if parseErr == nil {
			metrics.LLMRequests.WithLabelValues(s.provider.GetProviderName(), "success").Inc()
			return parsed, nil
		}
		err = parseErr
	}

	metrics.LLMRequests.WithLabelValues(s.provider.GetProviderName(), "error").Inc()
	metrics.FallbackQuestionsServed.Inc()
	s.logger.Warn("question generation failed, serving fallback bank",
		zap.String("role", role),
		zap.Error(err))
	return FallbackQuestions(role), nil
}

// callWithRetry retries transient provider failures with exponential
// backoff. Non-retryable errors (bad key, quota, invalid input) surface
// immediately.
func (s *Service) callWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := s.provider.GenerateContent(ctx, prompt, "")
		if err == nil {
			return resp.Content, nil
		}
		lastErr = err

		if !llm.Retryable(err) {
			return "", err
		}
		if attempt < maxRetries-1 {
			delay := baseDelay * (1 << attempt)
			s.logger.Info("retrying LLM call",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-after(delay):
			}
		}
	}
	return "", lastErr
}

func parseQuestions(content string) ([]models.Question, error) {
	cleaned := utils.StripFences(content)

	var parsed []models.Question
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON response from provider: %w", err)
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("provider returned an empty question set")
	}
	for _, q := range parsed {
		if q.Question == "" {
			return nil, fmt.Errorf("provider returned a question with no text")
		}
	}
	return parsed, nil
}
