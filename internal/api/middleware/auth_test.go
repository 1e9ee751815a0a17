package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/voicedesk/callcenter-api/internal/core/domain"
	"github.com/voicedesk/callcenter-api/internal/core/service"
)

type nopRegistry struct{}

func (nopRegistry) Register(string)             {}
func (nopRegistry) IsValid(string) bool         { return true }
func (nopRegistry) Revoke(string)               {}
func (nopRegistry) RevokeAllForUser(string) int { return 0 }
func (nopRegistry) SweepExpired() int           { return 0 }

func newTokenService(accessTTL time.Duration) *service.TokenService {
	return service.NewTokenService("secret", accessTTL, 7*24*time.Hour, nopRegistry{}, zerolog.Nop())
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp["error"], resp["code"]
}

func TestAuth_ValidToken(t *testing.T) {
	e := echo.New()
	tokens := newTokenService(time.Hour)
	signed, err := tokens.IssueAccessToken(&domain.User{
		ID:       "u1",
		Username: "alice",
		Role:     domain.RoleAdmin,
		Email:    "alice@example.com",
	})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(tokens)(func(c echo.Context) error {
		called = true
		if c.Get(CtxUserID) != "u1" {
			t.Fatalf("userId not set")
		}
		if c.Get(CtxUsername) != "alice" {
			t.Fatalf("username not set")
		}
		if c.Get(CtxRole) != domain.RoleAdmin {
			t.Fatalf("role not set")
		}
		if c.Get(CtxEmail) != "alice@example.com" {
			t.Fatalf("email not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(newTokenService(time.Hour))(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if msg, code := decodeError(t, rec); msg != "Access token required" || code != "TOKEN_MISSING" {
		t.Fatalf("unexpected envelope: %s %s", msg, code)
	}
}

func TestAuth_MalformedHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(newTokenService(time.Hour))(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if _, code := decodeError(t, rec); code != "TOKEN_MISSING" {
		t.Fatalf("unexpected code: %s", code)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(newTokenService(time.Hour))(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if msg, code := decodeError(t, rec); msg != "Invalid or expired token" || code != "TOKEN_INVALID" {
		t.Fatalf("unexpected envelope: %s %s", msg, code)
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	e := echo.New()
	expiredIssuer := newTokenService(-time.Minute)
	signed, err := expiredIssuer.IssueAccessToken(&domain.User{ID: "u1", Username: "alice"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(newTokenService(time.Hour))(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if _, code := decodeError(t, rec); code != "TOKEN_INVALID" {
		t.Fatalf("unexpected code: %s", code)
	}
}
