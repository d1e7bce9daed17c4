// Package interview holds the lifecycle controller for one live mock
// interview attempt: setup, the countdown, engine callbacks, and the
// guarantee that every attempt ends in at most one persisted record.
package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"voxa/internal/engine"
	"voxa/internal/evaluation"
	"voxa/internal/metrics"
	"voxa/internal/models"
)

// Stage of a single interview attempt. A controller instance moves
// forward only; a new attempt needs a new controller.
type Stage string

const (
	StageSetup     Stage = "setup"
	StageInterview Stage = "interview"
	StageCompleted Stage = "completed"
)

// test seam
var now = time.Now

// QuestionSource produces the question set an attempt opens with.
type QuestionSource interface {
	Personalized(ctx context.Context, role, jobDescription, resume string) ([]models.Question, error)
}

// Persister is the evaluate/save surface. Evaluate scores and inserts;
// Save inserts without scoring. They are not interchangeable: Evaluate
// may be unreachable after an engine error.
type Persister interface {
	Evaluate(ctx context.Context, in evaluation.EvaluateInput) (*models.InterviewSession, error)
	Save(ctx context.Context, in evaluation.SaveInput) (*models.InterviewSession, error)
}

// PromptSource builds the interviewer persona prompt.
type PromptSource interface {
	BuildPrompt(mode, variant string, data map[string]string) (string, error)
}

// Notifier receives controller events for delivery to the client.
type Notifier interface {
	StageChanged(stage Stage)
	Tick(secondsRemaining int)
	TranscriptUpdated(text string, final bool)
	SessionSaved(session *models.InterviewSession)
	Notify(level, message string)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) StageChanged(Stage)                    {}
func (NopNotifier) Tick(int)                              {}
func (NopNotifier) TranscriptUpdated(string, bool)        {}
func (NopNotifier) SessionSaved(*models.InterviewSession) {}
func (NopNotifier) Notify(string, string)                 {}

// SetupData is what the candidate fills in before starting.
type SetupData struct {
	Role           string
	JobDescription string
	Resume         string
}

func (d SetupData) validate() error {
	if strings.TrimSpace(d.Role) == "" ||
		strings.TrimSpace(d.JobDescription) == "" ||
		strings.TrimSpace(d.Resume) == "" {
		return errors.New("role, job description, and resume are required")
	}
	return nil
}

// Config wires one controller instance.
type Config struct {
	UserID        *uint
	CandidateName string

	Duration time.Duration // countdown ceiling
	Grace    time.Duration // engine errors before this elapsed time are setup noise

	Engine    engine.Engine
	Questions QuestionSource
	Persister Persister
	Prompts   PromptSource
	Notifier  Notifier
	Logger    *zap.Logger
}

// Controller owns all mutable state of one attempt. Engine callbacks,
// timer ticks, and client commands interleave; the mutex plus the
// ending/persisted flags keep persistence exactly-once.
type Controller struct {
	cfg Config

	mu         sync.Mutex
	stage      Stage
	setup      SetupData
	transcript string
	startedAt  time.Time
	starting   bool
	ending     bool
	persisted  bool
	stopTimer  chan struct{}
}

func NewController(cfg Config) *Controller {
	if cfg.Notifier == nil {
		cfg.Notifier = NopNotifier{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Controller{cfg: cfg, stage: StageSetup}
}

// Stage returns the current attempt stage.
func (c *Controller) Stage() Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stage
}

// Transcript returns the latest whole-utterance snapshot.
func (c *Controller) Transcript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript
}

// Start validates the setup, fetches questions, and starts the voice
// engine. Any failure leaves the controller in Setup with no side
// effects beyond the attempted upstream calls.
func (c *Controller) Start(ctx context.Context, data SetupData) error {
	if err := data.validate(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.stage != StageSetup {
		stage := c.stage
		c.mu.Unlock()
		return fmt.Errorf("interview already %s", stage)
	}
	if c.starting {
		c.mu.Unlock()
		return errors.New("interview start already in progress")
	}
	// the upstream calls below run unlocked; starting keeps a second
	// Start from racing past the stage check meanwhile
	c.starting = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.starting = false
		c.mu.Unlock()
	}()

	qs, err := c.cfg.Questions.Personalized(ctx, data.Role, data.JobDescription, data.Resume)
	if err != nil {
		return fmt.Errorf("failed to generate interview questions: %w", err)
	}

	assistant, err := c.buildAssistant(data.Role, qs)
	if err != nil {
		return err
	}

	c.cfg.Engine.On(engine.EventCallEnd, func(engine.Payload) { c.onCallEnd() })
	c.cfg.Engine.On(engine.EventError, func(p engine.Payload) { c.onEngineError(p) })
	c.cfg.Engine.On(engine.EventTranscript, func(p engine.Payload) {
		if p.Transcript != "" {
			c.RecordTranscript(p.Transcript, p.Final)
		}
	})
	c.cfg.Engine.On(engine.EventCallStart, func(engine.Payload) {
		c.cfg.Notifier.Notify("info", "Voice session connected")
	})

	if err := c.cfg.Engine.Start(ctx, assistant); err != nil {
		return fmt.Errorf("failed to start voice session: %w", err)
	}

	c.mu.Lock()
	c.stage = StageInterview
	c.setup = data
	c.transcript = ""
	c.startedAt = now()
	c.stopTimer = make(chan struct{})
	stop := c.stopTimer
	c.mu.Unlock()

	go c.runCountdown(stop)

	metrics.InterviewsStarted.Inc()
	c.cfg.Notifier.StageChanged(StageInterview)
	return nil
}

// RecordTranscript replaces the transcript with the latest snapshot.
// The engine sends whole utterances, not diffs, so latest wins.
func (c *Controller) RecordTranscript(text string, final bool) {
	c.mu.Lock()
	c.transcript = text
	c.mu.Unlock()
	c.cfg.Notifier.TranscriptUpdated(text, final)
}

// End terminates the attempt. Idempotent: the first caller wins and
// every later call is a no-op. With abrupt set, the incomplete record
// is assumed already persisted by the error path and only local
// teardown happens.
func (c *Controller) End(ctx context.Context, abrupt bool) error {
	c.mu.Lock()
	if c.stage != StageInterview || c.ending {
		c.mu.Unlock()
		return nil
	}
	c.ending = true
	setup := c.setup
	transcript := c.transcript
	duration := int(now().Sub(c.startedAt).Seconds())
	c.stopCountdownLocked()
	c.mu.Unlock()

	// best effort: a "not active" error just means the engine beat us to it
	if err := c.cfg.Engine.Stop(); err != nil {
		c.cfg.Logger.Debug("engine stop during teardown", zap.Error(err))
	}

	if !abrupt {
		c.persistCompleted(ctx, setup, transcript, duration)
	}

	c.mu.Lock()
	c.stage = StageCompleted
	c.mu.Unlock()
	c.cfg.Notifier.StageChanged(StageCompleted)
	return nil
}

func (c *Controller) persistCompleted(ctx context.Context, setup SetupData, transcript string, duration int) {
	c.mu.Lock()
	if c.persisted {
		c.mu.Unlock()
		return
	}
	c.persisted = true
	c.mu.Unlock()

	session, err := c.cfg.Persister.Evaluate(ctx, evaluation.EvaluateInput{
		UserID:         c.cfg.UserID,
		CandidateName:  c.cfg.CandidateName,
		Role:           setup.Role,
		JobDescription: setup.JobDescription,
		Resume:         setup.Resume,
		Transcript:     transcript,
		Duration:       &duration,
	})
	if err != nil {
		// the attempt must never be dropped: fall back to a plain save
		c.cfg.Logger.Warn("evaluation failed, saving without score", zap.Error(err))
		feedback := models.PlaceholderEvaluationFailed
		session, err = c.cfg.Persister.Save(ctx, evaluation.SaveInput{
			UserID:     c.cfg.UserID,
			Role:       setup.Role,
			Transcript: transcript,
			Duration:   &duration,
			Status:     models.StatusCompleted,
			Feedback:   &feedback,
		})
		if err != nil {
			c.cfg.Logger.Error("fallback save failed, interview record lost", zap.Error(err))
			c.cfg.Notifier.Notify("error", "Failed to save interview session")
			return
		}
	}

	c.cfg.Notifier.SessionSaved(session)
	c.cfg.Notifier.Notify("success", "Interview completed and saved")
}

// saveIncomplete persists the abrupt-termination record. Failure is
// logged only; teardown proceeds regardless.
func (c *Controller) saveIncomplete(ctx context.Context, setup SetupData, transcript string, duration int) {
	c.mu.Lock()
	if c.persisted {
		c.mu.Unlock()
		return
	}
	c.persisted = true
	c.mu.Unlock()

	session, err := c.cfg.Persister.Save(ctx, evaluation.SaveInput{
		UserID:     c.cfg.UserID,
		Role:       setup.Role,
		Transcript: transcript,
		Duration:   &duration,
		Status:     models.StatusIncomplete,
	})
	if err != nil {
		c.cfg.Logger.Error("failed to save incomplete session", zap.Error(err))
		return
	}
	c.cfg.Notifier.SessionSaved(session)
}

func (c *Controller) onCallEnd() {
	// engine-initiated hangup is a normal termination
	_ = c.End(context.Background(), false)
}

// onEngineError classifies an engine failure by elapsed time. Past the
// grace threshold the attempt is persisted as incomplete before the
// engine stop is requested; within it the attempt resets to Setup.
func (c *Controller) onEngineError(p engine.Payload) {
	c.mu.Lock()
	if c.stage != StageInterview || c.ending {
		c.mu.Unlock()
		return
	}
	elapsed := now().Sub(c.startedAt)
	setup := c.setup
	transcript := c.transcript
	c.mu.Unlock()

	c.cfg.Logger.Warn("voice engine error",
		zap.String("message", p.Message),
		zap.Duration("elapsed", elapsed))

	if elapsed >= c.cfg.Grace {
		c.cfg.Notifier.Notify("error", "Interview session ended unexpectedly. Saving your progress...")
		c.saveIncomplete(context.Background(), setup, transcript, int(elapsed.Seconds()))
		_ = c.End(context.Background(), true)
		return
	}

	// early failure: treat as a setup problem, nothing is persisted
	c.mu.Lock()
	c.stopCountdownLocked()
	c.stage = StageSetup
	c.transcript = ""
	c.mu.Unlock()

	if err := c.cfg.Engine.Stop(); err != nil {
		c.cfg.Logger.Debug("engine stop after early error", zap.Error(err))
	}
	c.cfg.Notifier.StageChanged(StageSetup)
	c.cfg.Notifier.Notify("error", "Voice interview error. Please try again.")
}

// runCountdown ticks once per second and fires the timeout termination
// exactly once. Closing stopTimer before End prevents a double fire.
func (c *Controller) runCountdown(stop chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	remaining := int(c.cfg.Duration.Seconds())
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			remaining--
			c.cfg.Notifier.Tick(remaining)
			if remaining <= 0 {
				c.cfg.Notifier.Notify("info", "Interview time limit reached")
				_ = c.End(context.Background(), false)
				return
			}
		}
	}
}

func (c *Controller) stopCountdownLocked() {
	if c.stopTimer != nil {
		close(c.stopTimer)
		c.stopTimer = nil
	}
}

func (c *Controller) buildAssistant(role string, qs []models.Question) (engine.AssistantConfig, error) {
	var list strings.Builder
	for i, q := range qs {
		fmt.Fprintf(&list, "%d. [%s] %s\n", i+1, q.Type, q.Question)
	}

	system, err := c.cfg.Prompts.BuildPrompt("interviewer", "personalized", map[string]string{
		"Role":      role,
		"Questions": list.String(),
	})
	if err != nil {
		return engine.AssistantConfig{}, fmt.Errorf("failed to build interviewer prompt: %w", err)
	}

	return engine.AssistantConfig{
		Model:    "gpt-4",
		Provider: "openai",
		Messages: []engine.SystemMessage{{Role: "system", Content: system}},
		FirstMessage: "Hello! Welcome to your technical mock interview. I've reviewed your resume " +
			"and the job description. Let's start with a technical question: Can you walk me through " +
			"your experience with the main technologies mentioned in this job posting?",
		VoiceID: "michael",
	}, nil
}
