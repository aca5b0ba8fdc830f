package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type memoryRateLimitStore struct {
	counts map[string]int64
}

func newMemoryRateLimitStore() *memoryRateLimitStore {
	return &memoryRateLimitStore{counts: map[string]int64{}}
}

func (m *memoryRateLimitStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	m.counts[key]++
	return m.counts[key], nil
}

func loginPolicy(ipLimit, emailLimit int64) AuthRateLimitPolicy {
	return AuthRateLimitPolicy{
		Name:       "login",
		IPLimit:    ipLimit,
		EmailLimit: emailLimit,
		Window:     time.Minute,
	}
}

func loginRequest(ip, email string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"`+email+`","password":"pw"}`))
	req.RemoteAddr = ip + ":54321"
	return req
}

func TestAuthRateLimitBlocksIPAfterLimit(t *testing.T) {
	store := newMemoryRateLimitStore()
	handler := AuthRateLimit(loginPolicy(2, 0), store, middlewareTestLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest("203.0.113.7", "a@example.com"))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d should pass, got %d", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("203.0.113.7", "a@example.com"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after the limit, got %d", rec.Code)
	}

	other := httptest.NewRecorder()
	handler.ServeHTTP(other, loginRequest("198.51.100.9", "a@example.com"))
	if other.Code != http.StatusOK {
		t.Fatalf("other IPs must not be affected, got %d", other.Code)
	}
}

func TestAuthRateLimitBlocksEmailAcrossIPs(t *testing.T) {
	store := newMemoryRateLimitStore()
	handler := AuthRateLimit(loginPolicy(0, 1), store, middlewareTestLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("203.0.113.7", "target@example.com"))
	if rec.Code != http.StatusOK {
		t.Fatalf("first attempt should pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("198.51.100.9", "Target@Example.com"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("email throttle should be IP independent and case insensitive, got %d", rec.Code)
	}
}

func TestAuthRateLimitRestoresBodyForHandler(t *testing.T) {
	store := newMemoryRateLimitStore()
	var seen string
	handler := AuthRateLimit(loginPolicy(10, 10), store, middlewareTestLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			buf := make([]byte, 1024)
			n, _ := r.Body.Read(buf)
			seen = string(buf[:n])
			w.WriteHeader(http.StatusOK)
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("203.0.113.7", "a@example.com"))
	if !strings.Contains(seen, "a@example.com") {
		t.Fatalf("handler should still see the body, got %q", seen)
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	if got := ClientIP(req); got != "203.0.113.7" {
		t.Fatalf("expected first forwarded hop, got %q", got)
	}

	req.Header.Del("X-Forwarded-For")
	req.Header.Set("X-Real-IP", "198.51.100.9")
	if got := ClientIP(req); got != "198.51.100.9" {
		t.Fatalf("expected real ip header, got %q", got)
	}

	req.Header.Del("X-Real-IP")
	if got := ClientIP(req); got != "10.0.0.1" {
		t.Fatalf("expected remote addr host, got %q", got)
	}
}
