package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"voxa/internal/utils"
)

const gateSecret = "gate-test-secret"

func gateHandler() http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return AuthGate(gateSecret)(next)
}

func requestWithSession(t *testing.T, path string) *http.Request {
	t.Helper()
	token, err := utils.SignToken(1, "alex", gateSecret, time.Hour)
	if err != nil {
		t.Fatalf("SignToken error: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.AddCookie(&http.Cookie{Name: utils.SessionCookieName, Value: token})
	return req
}

func TestAuthGateAllowsPublicPaths(t *testing.T) {
	for _, path := range []string{"/", "/api/v1/interview/questions", "/health", "/healthz", "/readyz", "/metrics"} {
		rec := httptest.NewRecorder()
		gateHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("path %s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestAuthGateRedirectsAnonymousFromProtectedPage(t *testing.T) {
	rec := httptest.NewRecorder()
	gateHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/interview", nil))

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/auth?redirectTo=%2Finterview" {
		t.Fatalf("unexpected redirect target: %s", got)
	}
}

func TestAuthGateRedirectsAuthenticatedFromAuthPage(t *testing.T) {
	rec := httptest.NewRecorder()
	gateHandler().ServeHTTP(rec, requestWithSession(t, "/auth"))

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/interview" {
		t.Fatalf("unexpected redirect target: %s", got)
	}
}

func TestAuthGateHonorsRedirectToParam(t *testing.T) {
	rec := httptest.NewRecorder()
	gateHandler().ServeHTTP(rec, requestWithSession(t, "/auth?redirectTo=/sessions"))

	if got := rec.Header().Get("Location"); got != "/sessions" {
		t.Fatalf("unexpected redirect target: %s", got)
	}
}

func TestAuthGateLeavesOAuthCallbackAlone(t *testing.T) {
	rec := httptest.NewRecorder()
	gateHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("callback must pass through, got %d", rec.Code)
	}

	// even with a session cookie attached
	rec = httptest.NewRecorder()
	gateHandler().ServeHTTP(rec, requestWithSession(t, "/auth/callback"))
	if rec.Code != http.StatusOK {
		t.Fatalf("callback must pass through for signed-in users, got %d", rec.Code)
	}
}

func TestAuthGateAllowsAuthenticatedProtectedPage(t *testing.T) {
	rec := httptest.NewRecorder()
	gateHandler().ServeHTTP(rec, requestWithSession(t, "/interview"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
