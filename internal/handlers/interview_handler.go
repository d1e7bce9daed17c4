package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"voxa/internal/evaluation"
	"voxa/internal/middleware"
	"voxa/internal/models"
	"voxa/internal/questions"
	"voxa/internal/repositories"
	"voxa/internal/utils"
)

type InterviewHandler struct {
	questions *questions.Service
	evaluator *evaluation.Service
	sessions  *repositories.SessionRepository
	logger    *zap.Logger
}

func NewInterviewHandler(qs *questions.Service, ev *evaluation.Service, sessions *repositories.SessionRepository, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{
		questions: qs,
		evaluator: ev,
		sessions:  sessions,
		logger:    logger,
	}
}

// PersonalizedQuestionsHandler generates a question set from the job
// description and resume. The service falls back to the built-in bank,
// so this only fails on prompt or template problems.
func (h *InterviewHandler) PersonalizedQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.PersonalizedQuestionsRequest](r)

	qs, err := h.questions.Personalized(r.Context(), req.Role, req.JobDescription, req.Resume)
	if err != nil {
		h.logger.Error("Failed to generate personalized questions", zap.Error(err), zap.String("role", req.Role))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "question_error",
			Message: "Failed to generate personalized interview questions",
		})
		return
	}

	utils.JSON(w, http.StatusOK, models.QuestionsResponse{Questions: qs})
}

// GenericQuestionsHandler generates a question set from the role alone.
func (h *InterviewHandler) GenericQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.GenericQuestionsRequest](r)

	qs, err := h.questions.Generic(r.Context(), req.Role)
	if err != nil {
		h.logger.Error("Failed to generate questions", zap.Error(err), zap.String("role", req.Role))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "question_error",
			Message: "Failed to generate interview questions",
		})
		return
	}

	utils.JSON(w, http.StatusOK, models.QuestionsResponse{Questions: qs})
}

// EvaluateHandler scores a finished interview and persists the record.
// Anonymous callers are allowed; their records have no owner.
func (h *InterviewHandler) EvaluateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.EvaluateRequest](r)

	duration := req.Duration
	session, err := h.evaluator.Evaluate(r.Context(), evaluation.EvaluateInput{
		UserID:         middleware.UserIDFromContext(r.Context()),
		CandidateName:  middleware.UsernameFromContext(r.Context()),
		Role:           req.Role,
		JobDescription: req.JobDescription,
		Resume:         req.Resume,
		Transcript:     req.Transcript,
		Duration:       &duration,
	})
	if err != nil {
		h.logger.Error("Interview evaluation failed", zap.Error(err), zap.String("role", req.Role))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "evaluation_error",
			Message: "Failed to evaluate interview",
		})
		return
	}

	utils.JSON(w, http.StatusOK, session)
}

// SaveSessionHandler persists an interview record without scoring.
func (h *InterviewHandler) SaveSessionHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.SaveSessionRequest](r)

	duration := req.Duration
	session, err := h.evaluator.Save(r.Context(), evaluation.SaveInput{
		UserID:     middleware.UserIDFromContext(r.Context()),
		Role:       req.Role,
		Transcript: req.Transcript,
		Duration:   &duration,
		Status:     req.Status,
		Feedback:   req.Feedback,
		Score:      req.Score,
	})
	if err != nil {
		h.logger.Error("Failed to save interview session", zap.Error(err), zap.String("role", req.Role))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "save_error",
			Message: "Failed to save interview session",
		})
		return
	}

	utils.JSON(w, http.StatusOK, session)
}

// ListSessionsHandler returns the caller's newest sessions, capped by
// the repository's history limit.
func (h *InterviewHandler) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == nil {
		utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
			Code:    "unauthorized",
			Message: "Valid authentication is required",
		})
		return
	}

	sessions, err := h.sessions.ListByUser(*userID)
	if err != nil {
		h.logger.Error("Failed to list interview sessions", zap.Error(err), zap.Uint("user_id", *userID))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "list_error",
			Message: "Failed to fetch interview sessions",
		})
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}
