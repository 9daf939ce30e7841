package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/journal/internal/platform/markup"
)

func newRateLimitedServer(cfg RateLimitConfig) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = XMLErrorHandler(zerolog.Nop())
	e.Use(RateLimit(cfg))
	e.GET("/patients", func(c echo.Context) error {
		return c.Blob(http.StatusOK, "application/xml", []byte("<patients></patients>"))
	})
	return e
}

func getPatients(e *echo.Echo, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/patients", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_BurstIsServed(t *testing.T) {
	e := newRateLimitedServer(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 3})

	for i := 3; i > 0; i-- {
		rec := getPatients(e, "10.0.0.1:5000")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 within burst, got %d", rec.Code)
		}
		if got := rec.Header().Get("X-RateLimit-Limit"); got != "1" {
			t.Errorf("expected X-RateLimit-Limit 1, got %q", got)
		}
		if got := rec.Header().Get("X-RateLimit-Remaining"); got != fmt.Sprint(i-1) {
			t.Errorf("expected X-RateLimit-Remaining %d, got %q", i-1, got)
		}
	}
}

func TestRateLimit_RejectsWithXMLError(t *testing.T) {
	e := newRateLimitedServer(RateLimitConfig{RequestsPerSecond: 0.5, BurstSize: 1})

	if rec := getPatients(e, "10.0.0.1:5000"); rec.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", rec.Code)
	}

	rec := getPatients(e, "10.0.0.1:5000")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "<error>Rate limit exceeded</error>" {
		t.Errorf("unexpected body %q", got)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != markup.MIMEApplicationXML {
		t.Errorf("expected %q, got %q", markup.MIMEApplicationXML, ct)
	}
	// One token every two seconds.
	if got := rec.Header().Get("Retry-After"); got != "2" {
		t.Errorf("expected Retry-After 2, got %q", got)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("expected X-RateLimit-Remaining 0, got %q", got)
	}
}

func TestRateLimit_ClientsAreIsolated(t *testing.T) {
	e := newRateLimitedServer(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1})

	if rec := getPatients(e, "10.0.0.1:5000"); rec.Code != http.StatusOK {
		t.Fatalf("client A: expected 200, got %d", rec.Code)
	}
	if rec := getPatients(e, "10.0.0.1:5001"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("client A second port: expected 429, got %d", rec.Code)
	}
	if rec := getPatients(e, "10.0.0.2:5000"); rec.Code != http.StatusOK {
		t.Fatalf("client B: expected 200, got %d", rec.Code)
	}
}

func TestRateLimit_HonoursForwardedFor(t *testing.T) {
	e := newRateLimitedServer(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1})

	for _, ip := range []string{"203.0.113.7", "203.0.113.8"} {
		req := httptest.NewRequest(http.MethodGet, "/patients", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		req.Header.Set(echo.HeaderXForwardedFor, ip)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("forwarded client %s: expected 200, got %d", ip, rec.Code)
		}
	}
}

func TestRateLimit_RefillsOverTime(t *testing.T) {
	cfg := RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1, IdleTTL: time.Hour}
	limiters := newClientLimiters(cfg)
	now := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	limiters.now = func() time.Time { return now }

	if ok, _, _ := limiters.allow("10.0.0.1"); !ok {
		t.Fatal("expected first request to pass")
	}
	ok, _, wait := limiters.allow("10.0.0.1")
	if ok {
		t.Fatal("expected second request to be denied")
	}
	if wait != time.Second {
		t.Errorf("expected wait of 1s, got %s", wait)
	}

	now = now.Add(time.Second)
	if ok, _, _ := limiters.allow("10.0.0.1"); !ok {
		t.Error("expected request to pass after refill")
	}
}

func TestRateLimit_EvictsIdleClients(t *testing.T) {
	cfg := RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1, IdleTTL: time.Minute}
	limiters := newClientLimiters(cfg)
	now := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	limiters.now = func() time.Time { return now }

	for i := 0; i < 50; i++ {
		limiters.allow(fmt.Sprintf("10.0.1.%d", i))
	}
	if n := limiters.size(); n != 50 {
		t.Fatalf("expected 50 tracked clients, got %d", n)
	}

	now = now.Add(30 * time.Second)
	limiters.allow("10.0.2.1")

	now = now.Add(45 * time.Second)
	limiters.allow("10.0.2.2")

	// The 50 silent clients are past the TTL; 10.0.2.1 is not.
	if n := limiters.size(); n != 2 {
		t.Errorf("expected 2 tracked clients after sweep, got %d", n)
	}
}

func TestRateLimit_EvictedClientStartsFresh(t *testing.T) {
	cfg := RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1, IdleTTL: time.Minute}
	limiters := newClientLimiters(cfg)
	now := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	limiters.now = func() time.Time { return now }

	limiters.allow("10.0.0.1")
	if ok, _, _ := limiters.allow("10.0.0.1"); ok {
		t.Fatal("expected exhausted client to be denied")
	}

	now = now.Add(2 * time.Minute)
	if ok, _, _ := limiters.allow("10.0.0.1"); !ok {
		t.Error("expected evicted client to get a fresh burst")
	}
}

func TestRateLimit_ZeroIdleTTLUsesDefault(t *testing.T) {
	limiters := newClientLimiters(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1})
	if limiters.ttl != DefaultRateLimitIdleTTL {
		t.Errorf("expected default TTL %s, got %s", DefaultRateLimitIdleTTL, limiters.ttl)
	}
}

func TestDefaultRateLimitConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	if cfg.RequestsPerSecond != 100 || cfg.BurstSize != 200 || cfg.IdleTTL != DefaultRateLimitIdleTTL {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}
