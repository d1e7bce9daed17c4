package routers

import (
	"github.com/go-chi/chi/v5"

	"voxa/internal/handlers"
	"voxa/internal/middleware"
	"voxa/internal/models"
)

// InterviewRoutes wires the question, evaluation, history, and live
// attempt endpoints. Question and persistence routes accept anonymous
// trial users; the history list requires a signed-in caller.
func InterviewRoutes(router *chi.Mux, handler *handlers.InterviewHandler, live *handlers.LiveHandler, jwtSecret string) {
	router.Route("/api/v1/interview", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.PersonalizedQuestionsRequest]()).
			Post("/personalized-questions", handler.PersonalizedQuestionsHandler)
		r.With(middleware.ValidateRequest[*models.GenericQuestionsRequest]()).
			Post("/questions", handler.GenericQuestionsHandler)
		r.With(middleware.OptionalAuth(jwtSecret), middleware.ValidateRequest[*models.EvaluateRequest]()).
			Post("/evaluate", handler.EvaluateHandler)
		r.With(middleware.OptionalAuth(jwtSecret), middleware.ValidateRequest[*models.SaveSessionRequest]()).
			Post("/save-session", handler.SaveSessionHandler)
		r.With(middleware.RequireAuth(jwtSecret)).
			Get("/sessions", handler.ListSessionsHandler)

		r.Route("/live", func(lr chi.Router) {
			lr.With(middleware.OptionalAuth(jwtSecret), middleware.ValidateRequest[*models.StartInterviewRequest]()).
				Post("/", live.StartHandler)
			lr.Get("/{id}/ws", live.SocketHandler)
		})
	})
}

// AuthRoutes wires account and session endpoints.
func AuthRoutes(router *chi.Mux, handler *handlers.AuthHandler) {
	router.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.RegisterRequest]()).Post("/register", handler.RegisterHandler)
		r.With(middleware.ValidateRequest[*models.LoginRequest]()).Post("/login", handler.LoginHandler)
		r.Post("/logout", handler.LogoutHandler)
	})
	router.Get("/auth/callback", handler.CallbackHandler)
}

// HealthRoutes wires liveness and readiness probes.
func HealthRoutes(router *chi.Mux, handler *handlers.HealthHandler) {
	router.Get("/healthz", handler.HealthzHandler)
	router.Get("/readyz", handler.ReadyzHandler)
	router.Get("/health", handler.HealthzHandler)
}
