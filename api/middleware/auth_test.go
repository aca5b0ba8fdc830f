package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgAuth "github.com/davidquint/raffle-backend/pkg/auth"
	"github.com/davidquint/raffle-backend/pkg/auth/session"
	"github.com/davidquint/raffle-backend/pkg/config"
	"github.com/davidquint/raffle-backend/pkg/enums"
	"github.com/davidquint/raffle-backend/pkg/logger"
)

type stubSessionChecker struct {
	ok  bool
	err error
}

func (s *stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return s.ok, s.err
}

func middlewareTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func middlewareJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret-test-secret-test-secret",
		Issuer:            "raffle-test",
		ExpirationMinutes: 30,
	}
}

func mintTestToken(t *testing.T, role enums.UserRole) (string, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	token, err := pkgAuth.MintAccessToken(middlewareJWTConfig(), time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: userID,
		Email:  "admin@example.com",
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token, userID
}

func TestAuthSeedsContext(t *testing.T) {
	token, userID := mintTestToken(t, enums.UserRoleAdmin)

	var gotUserID, gotRole string
	handler := Auth(middlewareJWTConfig(), &stubSessionChecker{ok: true}, middlewareTestLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUserID = UserIDFromContext(r.Context())
			gotRole = RoleFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/events", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected pass-through, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotUserID != userID.String() {
		t.Fatalf("expected user id in context, got %q", gotUserID)
	}
	if gotRole != "admin" {
		t.Fatalf("expected role in context, got %q", gotRole)
	}
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	handler := Auth(middlewareJWTConfig(), &stubSessionChecker{ok: true}, middlewareTestLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/events", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	handler := Auth(middlewareJWTConfig(), &stubSessionChecker{ok: true}, middlewareTestLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/events", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	token, _ := mintTestToken(t, enums.UserRoleAdmin)

	handler := Auth(middlewareJWTConfig(), &stubSessionChecker{ok: false}, middlewareTestLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/events", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a revoked session, got %d", rec.Code)
	}
}

func TestRequireRoleAllowsListedRole(t *testing.T) {
	handler := RequireRole(middlewareTestLogger(), "admin", "staff")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/events", nil)
	req = req.WithContext(WithRole(req.Context(), "staff"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
}

func TestRequireRoleLayeredGateKeepsStaffReadOnly(t *testing.T) {
	subtree := RequireRole(middlewareTestLogger(), "admin", "staff")
	adminOnly := RequireRole(middlewareTestLogger(), "admin")

	router := chi.NewRouter()
	router.Use(subtree)
	router.Get("/events", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	router.With(adminOnly).Post("/events", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	send := func(method, role string) int {
		req := httptest.NewRequest(method, "/events", nil)
		req = req.WithContext(WithRole(req.Context(), role))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(http.MethodGet, "staff"); code != http.StatusNoContent {
		t.Fatalf("staff read should pass, got %d", code)
	}
	if code := send(http.MethodPost, "staff"); code != http.StatusForbidden {
		t.Fatalf("staff write should be forbidden, got %d", code)
	}
	if code := send(http.MethodPost, "admin"); code != http.StatusCreated {
		t.Fatalf("admin write should pass, got %d", code)
	}
}

func TestRequireRoleBlocksOthers(t *testing.T) {
	handler := RequireRole(middlewareTestLogger(), "admin")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/events", nil)
	req = req.WithContext(WithRole(req.Context(), "staff"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
