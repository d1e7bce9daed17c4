package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"voxa/internal/middleware"
	"voxa/internal/models"
	"voxa/internal/repositories"
	"voxa/internal/utils"
)

const sessionTTL = 24 * time.Hour

type AuthHandler struct {
	users     *repositories.UserRepository
	jwtSecret string
	logger    *zap.Logger
}

func NewAuthHandler(users *repositories.UserRepository, jwtSecret string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, jwtSecret: jwtSecret, logger: logger}
}

type authResponse struct {
	Token    string `json:"token"`
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
}

// RegisterHandler creates an account, signs a session token, and sets
// the session cookie so the browser is signed in immediately.
func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.RegisterRequest](r)

	if _, err := h.users.GetUserByUsername(req.Username); err == nil {
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{
			Code:    "username_taken",
			Message: "Username is already in use",
		})
		return
	}
	if _, err := h.users.GetUserByEmail(req.Email); err == nil {
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{
			Code:    "email_taken",
			Message: "Email is already in use",
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("Failed to hash password", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "registration_error",
			Message: "Failed to create account",
		})
		return
	}

	user := &models.User{Username: req.Username, Email: req.Email, PasswordHash: string(hash)}
	if err := h.users.CreateUser(user); err != nil {
		h.logger.Error("Failed to create user", zap.Error(err), zap.String("username", req.Username))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "registration_error",
			Message: "Failed to create account",
		})
		return
	}

	h.issueSession(w, user, http.StatusCreated)
}

// LoginHandler verifies credentials and issues a fresh session.
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.LoginRequest](r)

	user, err := h.users.GetUserByUsername(req.Username)
	if err != nil {
		utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
			Code:    "invalid_credentials",
			Message: "Invalid username or password",
		})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
			Code:    "invalid_credentials",
			Message: "Invalid username or password",
		})
		return
	}

	h.issueSession(w, user, http.StatusOK)
}

// LogoutHandler clears the session cookie.
func (h *AuthHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     utils.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Signed out"})
}

// CallbackHandler finishes an external sign-in flow and forwards the
// browser to its remembered destination.
func (h *AuthHandler) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	destination := r.URL.Query().Get("redirectTo")
	if destination == "" {
		destination = "/interview"
	}
	http.Redirect(w, r, destination, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) issueSession(w http.ResponseWriter, user *models.User, status int) {
	token, err := utils.SignToken(user.ID, user.Username, h.jwtSecret, sessionTTL)
	if err != nil {
		h.logger.Error("Failed to sign session token", zap.Error(err), zap.Uint("user_id", user.ID))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "session_error",
			Message: "Failed to create session",
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     utils.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	utils.JSON(w, status, authResponse{Token: token, UserID: user.ID, Username: user.Username})
}
