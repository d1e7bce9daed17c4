// Package evaluation scores finished interviews with the configured LLM
// provider and persists interview records. Persistence happens exactly
// once per attempt; the caller chooses the evaluate or save path.
package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"voxa/internal/llm"
	"voxa/internal/metrics"
	"voxa/internal/models"
	"voxa/internal/prompts"
	"voxa/internal/repositories"
	"voxa/internal/utils"
)

// Defaults applied when the transcript is empty or the model's reply
// cannot be parsed. An unparseable reply still yields a record.
const (
	defaultScore    = 7
	defaultFeedback = "Interview completed successfully."
)

type EvaluateInput struct {
	UserID         *uint
	CandidateName  string
	Role           string
	JobDescription string
	Resume         string
	Transcript     string
	Duration       *int
}

type SaveInput struct {
	UserID     *uint
	Role       string
	Transcript string
	Duration   *int
	Status     string
	Feedback   *string
	Score      *int
}

type Service struct {
	provider llm.Provider
	prompts  prompts.PromptProvider
	sessions *repositories.SessionRepository
	logger   *zap.Logger
}

func NewService(provider llm.Provider, pm prompts.PromptProvider, sessions *repositories.SessionRepository, logger *zap.Logger) *Service {
	return &Service{provider: provider, prompts: pm, sessions: sessions, logger: logger}
}

// Evaluate scores a completed interview and inserts one record with
// status completed. A blank transcript skips the LLM call and records
// the defaults. A model reply that is not valid JSON is stored verbatim
// as feedback with the default score.
func (s *Service) Evaluate(ctx context.Context, in EvaluateInput) (*models.InterviewSession, error) {
	feedback := defaultFeedback
	score := defaultScore

	if strings.TrimSpace(in.Transcript) != "" {
		ev, raw, err := s.score(ctx, in)
		switch {
		case err != nil:
			return nil, err
		case ev != nil:
			if ev.Feedback != "" {
				feedback = ev.Feedback
			}
			if ev.Score != 0 {
				score = clampScore(ev.Score)
			}
		case raw != "":
			feedback = raw
		}
	}

	transcript := in.Transcript
	if transcript == "" {
		transcript = "Voice interview completed"
	}

	session := &models.InterviewSession{
		UserID:     in.UserID,
		Role:       in.Role,
		Transcript: &transcript,
		Feedback:   &feedback,
		Score:      &score,
		Duration:   in.Duration,
		Status:     models.StatusCompleted,
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, fmt.Errorf("failed to save interview session: %w", err)
	}
	metrics.InterviewsFinished.WithLabelValues(models.StatusCompleted).Inc()
	return session, nil
}

// Save inserts one record without calling the LLM. Incomplete sessions
// with no feedback get the fixed placeholder.
func (s *Service) Save(ctx context.Context, in SaveInput) (*models.InterviewSession, error) {
	status := in.Status
	if status == "" {
		status = models.StatusCompleted
	}

	transcript := in.Transcript
	if transcript == "" {
		transcript = fmt.Sprintf("Interview for %s position - Session ended unexpectedly", in.Role)
	}

	feedback := in.Feedback
	if feedback == nil && status == models.StatusIncomplete {
		placeholder := models.PlaceholderIncompleteFeedback
		feedback = &placeholder
	}

	duration := in.Duration
	if duration == nil {
		zero := 0
		duration = &zero
	}

	session := &models.InterviewSession{
		UserID:     in.UserID,
		Role:       in.Role,
		Transcript: &transcript,
		Feedback:   feedback,
		Score:      in.Score,
		Duration:   duration,
		Status:     status,
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, fmt.Errorf("failed to save interview session: %w", err)
	}
	metrics.InterviewsFinished.WithLabelValues(status).Inc()
	return session, nil
}

// score runs the LLM evaluation. Returns a parsed evaluation, or the raw
// reply when the model ignored the JSON instruction, or an error when
// the provider itself failed.
func (s *Service) score(ctx context.Context, in EvaluateInput) (*models.Evaluation, string, error) {
	candidate := in.CandidateName
	if candidate == "" {
		candidate = "The candidate"
	}

	prompt, err := s.prompts.BuildPrompt("evaluation", "voice", map[string]string{
		"CandidateName":  candidate,
		"Role":           in.Role,
		"JobDescription": in.JobDescription,
		"Resume":         in.Resume,
		"Transcript":     in.Transcript,
	})
	if err != nil {
		return nil, "", err
	}

	resp, err := s.provider.GenerateContent(ctx, prompt, "")
	if err != nil {
		metrics.LLMRequests.WithLabelValues(s.provider.GetProviderName(), "error").Inc()
		return nil, "", err
	}
	metrics.LLMRequests.WithLabelValues(s.provider.GetProviderName(), "success").Inc()

	cleaned := utils.StripFences(resp.Content)
	var ev models.Evaluation
	if err := json.Unmarshal([]byte(cleaned), &ev); err != nil {
		s.logger.Warn("evaluation reply was not valid JSON, storing raw text",
			zap.String("role", in.Role),
			zap.Error(err))
		return nil, resp.Content, nil
	}
	return &ev, "", nil
}

func clampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}
