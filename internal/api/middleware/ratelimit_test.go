package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type stubCounter struct {
	count int64
	err   error
	keys  []string
}

func (s *stubCounter) Incr(_ context.Context, key string, _ time.Duration) (int64, time.Duration, error) {
	s.keys = append(s.keys, key)
	if s.err != nil {
		return 0, 0, s.err
	}
	s.count++
	return s.count, 42 * time.Second, nil
}

func runLimited(t *testing.T, mw echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:12345"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func TestRateLimit_UnderLimit(t *testing.T) {
	counter := &stubCounter{}
	mw := RateLimit(counter, 3, time.Minute, zerolog.Nop())

	for i := 0; i < 3; i++ {
		if rec := runLimited(t, mw); rec.Code != http.StatusOK {
			t.Fatalf("request %d rejected: %d", i+1, rec.Code)
		}
	}
	if len(counter.keys) != 3 || counter.keys[0] != "ratelimit:203.0.113.9" {
		t.Fatalf("unexpected counter keys: %v", counter.keys)
	}
}

func TestRateLimit_OverLimit(t *testing.T) {
	counter := &stubCounter{count: 3}
	mw := RateLimit(counter, 3, time.Minute, zerolog.Nop())

	rec := runLimited(t, mw)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"error":"Too many requests"`) || !strings.Contains(body, `"retryAfter":42`) {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestRateLimit_FailsOpen(t *testing.T) {
	counter := &stubCounter{err: errors.New("redis down")}
	mw := RateLimit(counter, 1, time.Minute, zerolog.Nop())

	if rec := runLimited(t, mw); rec.Code != http.StatusOK {
		t.Fatalf("broken counter blocked request: %d", rec.Code)
	}
}
