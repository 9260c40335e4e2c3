package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestTokenBucket_AllowsBurst(t *testing.T) {
	b := newTokenBucket(1, 5)
	for i := 0; i < 5; i++ {
		if !b.allow() {
			t.Fatalf("request %d should be allowed within burst", i)
		}
	}
	if b.allow() {
		t.Error("request beyond burst should be denied")
	}
}

func TestTokenBucket_RetryAfter(t *testing.T) {
	b := newTokenBucket(1, 1)
	b.allow()
	if ra := b.retryAfter(); ra < 1 {
		t.Errorf("expected retry-after of at least 1 second, got %d", ra)
	}
}

func TestRateLimit_Returns429(t *testing.T) {
	e := echo.New()
	cfg := RateLimitConfig{RequestsPerSecond: 1, BurstSize: 2}
	mw := RateLimit(cfg)
	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := mw(handler)(c); err != nil {
			t.Fatalf("request %d: unexpected error: %v", i, err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := mw(handler)(c)
	if err == nil {
		t.Fatal("expected rate limit error")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %v", err)
	}
}

func TestRateLimit_SeparateClients(t *testing.T) {
	e := echo.New()
	cfg := RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1}
	mw := RateLimit(cfg)
	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	for _, addr := range []string{"10.0.0.1:1000", "10.0.0.2:1000"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := mw(handler)(c); err != nil {
			t.Errorf("client %s should have its own bucket: %v", addr, err)
		}
	}
}
