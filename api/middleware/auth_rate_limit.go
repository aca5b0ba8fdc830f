package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/davidquint/raffle-backend/api/responses"
	"github.com/davidquint/raffle-backend/pkg/config"
	pkgerrors "github.com/davidquint/raffle-backend/pkg/errors"
	"github.com/davidquint/raffle-backend/pkg/logger"
)

// AuthRateLimitPolicy is a per-endpoint throttle keyed on caller IP and,
// when the body carries one, the submitted email.
type AuthRateLimitPolicy struct {
	Name       string
	IPLimit    int64
	EmailLimit int64
	Window     time.Duration
}

func NewLoginRateLimitPolicy(cfg config.AuthRateLimitConfig) AuthRateLimitPolicy {
	return AuthRateLimitPolicy{
		Name:       "login",
		IPLimit:    int64(cfg.LoginIPLimit),
		EmailLimit: int64(cfg.LoginEmailLimit),
		Window:     cfg.LoginWindow,
	}
}

type rateLimitStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

func AuthRateLimit(policy AuthRateLimitPolicy, store rateLimitStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if store == nil {
				next.ServeHTTP(w, r)
				return
			}

			if policy.IPLimit > 0 {
				key := "rl:ip:" + policy.Name + ":" + clientIP(r)
				count, err := store.IncrWithTTL(ctx, key, policy.Window)
				if err == nil && count > policy.IPLimit {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests"))
					return
				}
				if err != nil && logg != nil {
					logg.Warn(logg.WithField(ctx, "error", err.Error()), "rate limit check failed")
				}
			}

			if policy.EmailLimit > 0 {
				if email := extractEmail(r); email != "" {
					key := "rl:email:" + policy.Name + ":" + hashValue(email)
					count, err := store.IncrWithTTL(ctx, key, policy.Window)
					if err == nil && count > policy.EmailLimit {
						responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests"))
						return
					}
					if err != nil && logg != nil {
						logg.Warn(logg.WithField(ctx, "error", err.Error()), "rate limit check failed")
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP resolves the caller address, preferring proxy-set headers.
func ClientIP(r *http.Request) string {
	return clientIP(r)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// extractEmail peeks at the JSON body for an email field and restores the
// body so the handler can decode it again.
func extractEmail(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(payload.Email))
}

func hashValue(v string) string {
	sum := sha256.Sum256([]byte(v))
	return hex.EncodeToString(sum[:])
}
