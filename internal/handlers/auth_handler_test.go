package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"voxa/internal/handlers"
	"voxa/internal/repositories"
	"voxa/internal/routers"
	"voxa/internal/testhelpers"
	"voxa/internal/utils"
)

func newAuthApp(t *testing.T) *chi.Mux {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	users := &repositories.UserRepository{DB: db}

	router := chi.NewRouter()
	routers.AuthRoutes(router, handlers.NewAuthHandler(users, testSecret, zap.NewNop()))
	return router
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == utils.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestRegisterIssuesSession(t *testing.T) {
	router := newAuthApp(t)

	rec := postJSON(t, router, "/api/v1/auth/register", map[string]string{
		"username": "alex",
		"email":    "alex@example.com",
		"password": "long-enough-password",
	}, "")

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Token    string `json:"token"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Token == "" || resp.Username != "alex" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	cookie := sessionCookie(rec)
	if cookie == nil || cookie.Value == "" || !cookie.HttpOnly {
		t.Fatalf("expected HttpOnly session cookie, got %+v", cookie)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	router := newAuthApp(t)

	body := map[string]string{"username": "alex", "email": "alex@example.com", "password": "long-enough-password"}
	if rec := postJSON(t, router, "/api/v1/auth/register", body, ""); rec.Code != http.StatusCreated {
		t.Fatalf("first register failed: %d", rec.Code)
	}
	if rec := postJSON(t, router, "/api/v1/auth/register", body, ""); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", rec.Code)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	router := newAuthApp(t)

	rec := postJSON(t, router, "/api/v1/auth/register", map[string]string{
		"username": "alex",
		"email":    "alex@example.com",
		"password": "short",
	}, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLoginVerifiesCredentials(t *testing.T) {
	router := newAuthApp(t)

	if rec := postJSON(t, router, "/api/v1/auth/register", map[string]string{
		"username": "sam",
		"email":    "sam@example.com",
		"password": "long-enough-password",
	}, ""); rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d", rec.Code)
	}

	rec := postJSON(t, router, "/api/v1/auth/login", map[string]string{
		"username": "sam",
		"password": "long-enough-password",
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if cookie := sessionCookie(rec); cookie == nil || cookie.Value == "" {
		t.Fatal("expected session cookie on login")
	}

	rec = postJSON(t, router, "/api/v1/auth/login", map[string]string{
		"username": "sam",
		"password": "wrong-password-here",
	}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", rec.Code)
	}

	rec = postJSON(t, router, "/api/v1/auth/login", map[string]string{
		"username": "ghost",
		"password": "whatever-password",
	}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown user, got %d", rec.Code)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	router := newAuthApp(t)

	rec := postJSON(t, router, "/api/v1/auth/logout", map[string]string{}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cookie := sessionCookie(rec)
	if cookie == nil || cookie.MaxAge != -1 {
		t.Fatalf("expected expired session cookie, got %+v", cookie)
	}
}

func TestCallbackRedirects(t *testing.T) {
	router := newAuthApp(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?redirectTo=/sessions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/sessions" {
		t.Fatalf("unexpected destination: %s", got)
	}
}
