package interview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"voxa/internal/engine"
)

// ErrActiveAttempt means the user already has a live interview. The
// voice engine supports at most one active session per caller.
var ErrActiveAttempt = errors.New("an interview is already in progress for this user")

// EngineFactory builds a fresh engine client per attempt.
type EngineFactory func() engine.Engine

type ManagerConfig struct {
	Redis     *redis.Client
	Engine    EngineFactory
	Questions QuestionSource
	Persister Persister
	Prompts   PromptSource
	Duration  time.Duration
	Grace     time.Duration
	Logger    *zap.Logger
}

// Manager creates and tracks live interview attempts. Each attempt gets
// a fresh controller and a uuid; signed-in users additionally hold a
// redis lock so they cannot run two interviews at once.
type Manager struct {
	cfg ManagerConfig

	mu       sync.Mutex
	attempts map[string]*attempt
}

type attempt struct {
	controller *Controller
	lockKey    string
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Manager{cfg: cfg, attempts: make(map[string]*attempt)}
}

// Begin registers a new attempt and returns its id and controller. The
// attempt releases itself once the controller reaches a terminal stage;
// Finish remains available for callers that tear down earlier.
func (m *Manager) Begin(ctx context.Context, userID *uint, candidateName string, notifier Notifier) (string, *Controller, error) {
	var lockKey string
	if userID != nil {
		lockKey = fmt.Sprintf("interview:active:%d", *userID)
		// lock expires on its own in case a crash skips Finish
		ttl := m.cfg.Duration + 5*time.Minute
		ok, err := m.cfg.Redis.SetNX(ctx, lockKey, "1", ttl).Result()
		if err != nil {
			return "", nil, fmt.Errorf("failed to check active interviews: %w", err)
		}
		if !ok {
			return "", nil, ErrActiveAttempt
		}
	}

	id := uuid.NewString()
	if notifier == nil {
		notifier = NopNotifier{}
	}
	notifier = &releasingNotifier{
		Notifier: notifier,
		release:  func() { m.Finish(context.Background(), id) },
	}

	controller := NewController(Config{
		UserID:        userID,
		CandidateName: candidateName,
		Duration:      m.cfg.Duration,
		Grace:         m.cfg.Grace,
		Engine:        m.cfg.Engine(),
		Questions:     m.cfg.Questions,
		Persister:     m.cfg.Persister,
		Prompts:       m.cfg.Prompts,
		Notifier:      notifier,
		Logger:        m.cfg.Logger,
	})

	m.mu.Lock()
	m.attempts[id] = &attempt{controller: controller, lockKey: lockKey}
	m.mu.Unlock()

	return id, controller, nil
}

// releasingNotifier frees the attempt (and the user lock) as soon as
// the controller leaves the interview: completion and the
// return-to-setup error branch both end the attempt, whether or not the
// client ever sends an end command.
type releasingNotifier struct {
	Notifier
	release func()
}

func (n *releasingNotifier) StageChanged(stage Stage) {
	n.Notifier.StageChanged(stage)
	if stage == StageCompleted || stage == StageSetup {
		n.release()
	}
}

// Get looks up a live attempt by id.
func (m *Manager) Get(id string) (*Controller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[id]
	if !ok {
		return nil, false
	}
	return a.controller, true
}

// Finish releases the user lock and forgets the attempt. Safe to call
// for unknown ids.
func (m *Manager) Finish(ctx context.Context, id string) {
	m.mu.Lock()
	a, ok := m.attempts[id]
	delete(m.attempts, id)
	m.mu.Unlock()

	if !ok || a.lockKey == "" {
		return
	}
	if err := m.cfg.Redis.Del(ctx, a.lockKey).Err(); err != nil {
		m.cfg.Logger.Warn("failed to release interview lock",
			zap.String("key", a.lockKey),
			zap.Error(err))
	}
}
