package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"voxa/internal/interview"
	"voxa/internal/middleware"
	"voxa/internal/models"
	"voxa/internal/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// LiveHandler runs interviews server-side: one POST creates and starts
// an attempt, then a websocket streams controller events to the browser
// and accepts the end command.
type LiveHandler struct {
	manager *interview.Manager
	logger  *zap.Logger

	mu        sync.Mutex
	notifiers map[string]*sessionNotifier
}

func NewLiveHandler(manager *interview.Manager, logger *zap.Logger) *LiveHandler {
	return &LiveHandler{
		manager:   manager,
		logger:    logger,
		notifiers: make(map[string]*sessionNotifier),
	}
}

// StartHandler begins a new attempt. Failure to fetch questions or to
// start the voice engine leaves nothing behind and reports why.
func (h *LiveHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.StartInterviewRequest](r)

	userID := middleware.UserIDFromContext(r.Context())
	candidate := middleware.UsernameFromContext(r.Context())

	notifier := newSessionNotifier(h.logger)
	id, controller, err := h.manager.Begin(r.Context(), userID, candidate, notifier)
	if err != nil {
		if errors.Is(err, interview.ErrActiveAttempt) {
			utils.JSON(w, http.StatusConflict, models.ErrorResponse{
				Code:    "interview_active",
				Message: "An interview is already in progress",
			})
			return
		}
		h.logger.Error("Failed to begin interview attempt", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "interview_error",
			Message: "Failed to start interview",
		})
		return
	}

	h.mu.Lock()
	h.notifiers[id] = notifier
	h.mu.Unlock()
	notifier.setTerminal(func() { h.forget(id) })

	if err := controller.Start(r.Context(), interview.SetupData{
		Role:           req.Role,
		JobDescription: req.JobDescription,
		Resume:         req.Resume,
	}); err != nil {
		h.forget(id)
		h.manager.Finish(r.Context(), id)
		h.logger.Warn("Interview start failed", zap.Error(err), zap.String("role", req.Role))
		utils.JSON(w, http.StatusBadGateway, models.ErrorResponse{
			Code:    "start_failed",
			Message: err.Error(),
		})
		return
	}

	utils.JSON(w, http.StatusCreated, map[string]string{"attemptId": id})
}

// SocketHandler attaches a websocket to a live attempt.
func (h *LiveHandler) SocketHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	controller, ok := h.manager.Get(id)
	if !ok {
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "attempt_not_found",
			Message: "No live interview with that id",
		})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	notifier := h.notifiers[id]
	h.mu.Unlock()
	if notifier != nil {
		notifier.attach(conn, controller)
	}

	go h.readCommands(conn, id, controller)
}

func (h *LiveHandler) forget(id string) {
	h.mu.Lock()
	delete(h.notifiers, id)
	h.mu.Unlock()
}

func (h *LiveHandler) readCommands(conn *websocket.Conn, id string, controller *interview.Controller) {
	defer conn.Close()
	for {
		var cmd struct {
			Type string `json:"type"`
		}
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}
		switch cmd.Type {
		case "end":
			// attempt cleanup rides on the stage change the End triggers
			if err := controller.End(context.Background(), false); err != nil {
				h.logger.Warn("End command failed", zap.Error(err), zap.String("attempt_id", id))
			}
		default:
			h.logger.Debug("Unknown live command", zap.String("type", cmd.Type))
		}
	}
}

// sessionNotifier forwards controller events over the attached
// websocket. Events before the socket attaches are summarized and
// replayed on attach.
type sessionNotifier struct {
	mu         sync.Mutex
	conn       *websocket.Conn
	logger     *zap.Logger
	lastStage  interview.Stage
	lastTick   int
	onTerminal func()
}

func newSessionNotifier(logger *zap.Logger) *sessionNotifier {
	return &sessionNotifier{logger: logger}
}

type liveEvent struct {
	Type       string                   `json:"type"`
	Stage      interview.Stage          `json:"stage,omitempty"`
	Remaining  int                      `json:"remaining,omitempty"`
	Transcript string                   `json:"transcript,omitempty"`
	Final      bool                     `json:"final,omitempty"`
	Level      string                   `json:"level,omitempty"`
	Message    string                   `json:"message,omitempty"`
	Session    *models.InterviewSession `json:"session,omitempty"`
}

func (n *sessionNotifier) attach(conn *websocket.Conn, controller *interview.Controller) {
	n.mu.Lock()
	n.conn = conn
	stage := n.lastStage
	tick := n.lastTick
	n.mu.Unlock()

	if stage == "" {
		stage = controller.Stage()
	}
	n.send(liveEvent{Type: "stage", Stage: stage})
	if tick > 0 {
		n.send(liveEvent{Type: "tick", Remaining: tick})
	}
	if transcript := controller.Transcript(); transcript != "" {
		n.send(liveEvent{Type: "transcript", Transcript: transcript, Final: true})
	}
}

func (n *sessionNotifier) send(ev liveEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conn == nil {
		return
	}
	if err := n.conn.WriteJSON(ev); err != nil {
		n.logger.Debug("Dropping live event, socket gone", zap.Error(err))
		n.conn = nil
	}
}

// setTerminal registers the cleanup to run once the attempt leaves the
// interview stage.
func (n *sessionNotifier) setTerminal(fn func()) {
	n.mu.Lock()
	n.onTerminal = fn
	n.mu.Unlock()
}

func (n *sessionNotifier) StageChanged(stage interview.Stage) {
	n.mu.Lock()
	n.lastStage = stage
	terminal := n.onTerminal
	n.mu.Unlock()
	n.send(liveEvent{Type: "stage", Stage: stage})
	if terminal != nil && (stage == interview.StageCompleted || stage == interview.StageSetup) {
		terminal()
	}
}

func (n *sessionNotifier) Tick(remaining int) {
	n.mu.Lock()
	n.lastTick = remaining
	n.mu.Unlock()
	n.send(liveEvent{Type: "tick", Remaining: remaining})
}

func (n *sessionNotifier) TranscriptUpdated(text string, final bool) {
	n.send(liveEvent{Type: "transcript", Transcript: text, Final: final})
}

func (n *sessionNotifier) SessionSaved(session *models.InterviewSession) {
	n.send(liveEvent{Type: "session-saved", Session: session})
}

func (n *sessionNotifier) Notify(level, message string) {
	n.send(liveEvent{Type: "notice", Level: level, Message: message})
}
