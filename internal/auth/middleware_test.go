package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fitversal/coachmarket/internal/middleware"
)

func TestMiddleware_AnonymousPassesThrough(t *testing.T) {
	svc := NewJWTService(testSecret)
	var sawUser string
	handler := Middleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawUser = middleware.GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/search/coaches", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for anonymous request, got %d", rr.Code)
	}
	if sawUser != "" {
		t.Errorf("expected no user in context, got %q", sawUser)
	}
}

func TestMiddleware_ValidToken(t *testing.T) {
	svc := NewJWTService(testSecret)
	token, err := svc.GenerateAccessToken("user-9", RoleCoach)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var gotUser, gotRole string
	handler := Middleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = middleware.GetUserID(r.Context())
		gotRole = middleware.GetUserRole(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/search/coaches", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if gotUser != "user-9" || gotRole != RoleCoach {
		t.Errorf("expected user-9/coach, got %q/%q", gotUser, gotRole)
	}
}

func TestMiddleware_RejectsBadToken(t *testing.T) {
	svc := NewJWTService(testSecret)
	handler := Middleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run for invalid token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/search/coaches", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rr.Code)
	}
}

func TestMiddleware_RejectsRefreshTokenOnAPI(t *testing.T) {
	svc := NewJWTService(testSecret)
	token, err := svc.GenerateRefreshToken("user-9")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	handler := Middleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run for refresh token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/search/coaches", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rr.Code)
	}
}

func TestMiddleware_RejectsNonBearerScheme(t *testing.T) {
	svc := NewJWTService(testSecret)
	handler := Middleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run for basic auth")
	}))

	req := httptest.NewRequest(http.MethodGet, "/search/coaches", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rr.Code)
	}
}
