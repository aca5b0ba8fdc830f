package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"

	"github.com/davidquint/raffle-backend/api/responses"
	pkgerrors "github.com/davidquint/raffle-backend/pkg/errors"
	"github.com/davidquint/raffle-backend/pkg/logger"
	"github.com/davidquint/raffle-backend/pkg/redis"
)

const (
	idempotencyHeader     = "Idempotency-Key"
	idempotencyDefaultTTL = 24 * time.Hour
	// Checkout replays are the costly ones, so those records live longer.
	idempotencyCriticalTTL = 7 * 24 * time.Hour
)

type matchKind int

const (
	matchExact matchKind = iota
	matchPrefix
)

type idempotencyRule struct {
	method   string
	pattern  string
	kind     matchKind
	ttl      time.Duration
	critical bool
}

var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, pattern: "/api/public/checkout/submit", kind: matchExact, ttl: idempotencyCriticalTTL, critical: true},
	{method: http.MethodPost, pattern: "/api/admin/", kind: matchPrefix, ttl: idempotencyDefaultTTL},
	{method: http.MethodPut, pattern: "/api/admin/", kind: matchPrefix, ttl: idempotencyDefaultTTL},
	{method: http.MethodPatch, pattern: "/api/admin/", kind: matchPrefix, ttl: idempotencyDefaultTTL},
}

type storedResponse struct {
	Status      int    `json:"status"`
	Body        string `json:"body"`
	ContentType string `json:"content_type"`
	RequestHash string `json:"request_hash"`
}

type responseCapture struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when the same key arrives again
// with an identical request body, and rejects key reuse across different
// payloads.
func Idempotency(store redis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rule, ok := matchIdempotencyRule(r)
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if key == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header is required"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			reqHash := hashRequest(r.Method, routePattern(r), body)
			storeKey := store.IdempotencyKey(scopeForRule(rule), key)

			if raw, err := store.Get(ctx, storeKey); err == nil {
				var stored storedResponse
				if jsonErr := json.Unmarshal([]byte(raw), &stored); jsonErr == nil {
					if stored.RequestHash != reqHash {
						responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with a different request"))
						return
					}
					if stored.ContentType != "" {
						w.Header().Set("Content-Type", stored.ContentType)
					}
					w.WriteHeader(stored.Status)
					_, _ = w.Write([]byte(stored.Body))
					return
				}
			} else if !errors.Is(err, goredis.Nil) {
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "error", err.Error()), "idempotency lookup failed")
				}
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)

			if capture.status == 0 {
				capture.status = http.StatusOK
			}

			// Only successful outcomes are pinned; failures may be retried.
			if capture.status >= 200 && capture.status < 300 {
				record := storedResponse{
					Status:      capture.status,
					Body:        capture.buf.String(),
					ContentType: capture.Header().Get("Content-Type"),
					RequestHash: reqHash,
				}
				encoded, err := json.Marshal(record)
				if err == nil {
					if _, err := store.SetNX(ctx, storeKey, string(encoded), rule.ttl); err != nil && logg != nil {
						logg.Warn(logg.WithField(ctx, "error", err.Error()), "idempotency record store failed")
					}
				}
			}
		})
	}
}

func matchIdempotencyRule(r *http.Request) (idempotencyRule, bool) {
	for _, rule := range idempotencyRules {
		if rule.method != r.Method {
			continue
		}
		switch rule.kind {
		case matchExact:
			if r.URL.Path == rule.pattern {
				return rule, true
			}
		case matchPrefix:
			if strings.HasPrefix(r.URL.Path, rule.pattern) {
				return rule, true
			}
		}
	}
	return idempotencyRule{}, false
}

func scopeForRule(rule idempotencyRule) string {
	if rule.critical {
		return "checkout"
	}
	return "admin"
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func hashRequest(method, pattern string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(pattern))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
