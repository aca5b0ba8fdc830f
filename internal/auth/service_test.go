package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/davidquint/raffle-backend/pkg/auth"
	"github.com/davidquint/raffle-backend/pkg/auth/session"
	"github.com/davidquint/raffle-backend/pkg/config"
	"github.com/davidquint/raffle-backend/pkg/db/models"
	"github.com/davidquint/raffle-backend/pkg/enums"
	pkgerrors "github.com/davidquint/raffle-backend/pkg/errors"
	"github.com/davidquint/raffle-backend/pkg/security"
)

type stubUserRepo struct {
	users         map[string]*models.User
	lastLoginSet  bool
	lastLoginUser uuid.UUID
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := s.users[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.lastLoginSet = true
	s.lastLoginUser = id
	return nil
}

type stubSessionManager struct {
	generated []string
	rotateErr error
	revoked   []string
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	s.generated = append(s.generated, accessID)
	return "refresh-" + accessID, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	newID := session.NewAccessID()
	return newID, "refresh-" + newID, nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

type stubRateLimiter struct {
	denied bool
	calls  int
}

func (s *stubRateLimiter) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	s.calls++
	if s.denied {
		return false, limit + 1, nil
	}
	return true, 1, nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret-test-secret-test-secret",
		Issuer:            "raffle-test",
		ExpirationMinutes: 30,
	}
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{
		ArgonMemoryKiB:   8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLength:  16,
		ArgonKeyLength:   32,
	})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func buildTestService(t *testing.T, repo *stubUserRepo, sessions *stubSessionManager, limiter *stubRateLimiter) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		RateLimiter:    limiter,
		JWTConfig:      testJWTConfig(),
		RateLimitConfig: config.AuthRateLimitConfig{
			LoginWindow:     time.Minute,
			LoginIPLimit:    10,
			LoginEmailLimit: 5,
		},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func seedUser(t *testing.T, repo *stubUserRepo, email, password string, active bool) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: mustHashPassword(t, password),
		FirstName:    "Dana",
		LastName:     "Quint",
		Role:         enums.UserRoleAdmin,
		IsActive:     active,
	}
	repo.users[email] = user
	return user
}

func TestLoginSuccess(t *testing.T) {
	repo := &stubUserRepo{users: map[string]*models.User{}}
	sessions := &stubSessionManager{}
	limiter := &stubRateLimiter{}
	svc := buildTestService(t, repo, sessions, limiter)
	user := seedUser(t, repo, "admin@example.com", "correct horse battery", true)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    " Admin@Example.com ",
		Password: "correct horse battery",
	}, "203.0.113.7")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected a token pair")
	}
	if resp.User == nil || resp.User.Email != user.Email {
		t.Fatalf("unexpected user payload %+v", resp.User)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("minted token should parse: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != enums.UserRoleAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.ID == "" {
		t.Fatal("expected a session id in the token")
	}
	if len(sessions.generated) != 1 || sessions.generated[0] != claims.ID {
		t.Fatal("refresh token should be bound to the token's session id")
	}
	if !repo.lastLoginSet || repo.lastLoginUser != user.ID {
		t.Fatal("expected last login to be recorded")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	repo := &stubUserRepo{users: map[string]*models.User{}}
	svc := buildTestService(t, repo, &stubSessionManager{}, &stubRateLimiter{})
	seedUser(t, repo, "admin@example.com", "correct horse battery", true)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "admin@example.com",
		Password: "wrong",
	}, "203.0.113.7")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if typed.Message() != invalidCredentialsMessage {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestLoginUnknownEmailMatchesWrongPassword(t *testing.T) {
	repo := &stubUserRepo{users: map[string]*models.User{}}
	svc := buildTestService(t, repo, &stubSessionManager{}, &stubRateLimiter{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	}, "203.0.113.7")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Message() != invalidCredentialsMessage {
		t.Fatalf("unknown emails must not be distinguishable, got %v", err)
	}
}

func TestLoginInactiveUser(t *testing.T) {
	repo := &stubUserRepo{users: map[string]*models.User{}}
	svc := buildTestService(t, repo, &stubSessionManager{}, &stubRateLimiter{})
	seedUser(t, repo, "former@example.com", "correct horse battery", false)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "former@example.com",
		Password: "correct horse battery",
	}, "203.0.113.7")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginRateLimited(t *testing.T) {
	repo := &stubUserRepo{users: map[string]*models.User{}}
	limiter := &stubRateLimiter{denied: true}
	svc := buildTestService(t, repo, &stubSessionManager{}, limiter)
	seedUser(t, repo, "admin@example.com", "correct horse battery", true)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "admin@example.com",
		Password: "correct horse battery",
	}, "203.0.113.7")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeRateLimit {
		t.Fatalf("expected rate limit, got %v", err)
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	repo := &stubUserRepo{users: map[string]*models.User{}}
	sessions := &stubSessionManager{}
	svc := buildTestService(t, repo, sessions, &stubRateLimiter{})
	user := seedUser(t, repo, "admin@example.com", "correct horse battery", true)

	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(testJWTConfig(), time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	resp, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  accessToken,
		RefreshToken: "refresh-" + accessID,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if resp.AccessToken == accessToken {
		t.Fatal("expected a new access token")
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("rotated token should parse: %v", err)
	}
	if claims.ID == accessID {
		t.Fatal("rotation should issue a new session id")
	}
	if claims.UserID != user.ID {
		t.Fatal("rotation must preserve the user claims")
	}
}

func TestRefreshInvalidRefreshToken(t *testing.T) {
	repo := &stubUserRepo{users: map[string]*models.User{}}
	sessions := &stubSessionManager{rotateErr: session.ErrInvalidRefreshToken}
	svc := buildTestService(t, repo, sessions, &stubRateLimiter{})
	user := seedUser(t, repo, "admin@example.com", "correct horse battery", true)

	accessToken, err := pkgAuth.MintAccessToken(testJWTConfig(), time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  accessToken,
		RefreshToken: "stolen",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	svc := buildTestService(t, &stubUserRepo{users: map[string]*models.User{}}, &stubSessionManager{}, &stubRateLimiter{})

	_, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  "not-a-jwt",
		RefreshToken: "whatever",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	repo := &stubUserRepo{users: map[string]*models.User{}}
	sessions := &stubSessionManager{}
	svc := buildTestService(t, repo, sessions, &stubRateLimiter{})
	user := seedUser(t, repo, "admin@example.com", "correct horse battery", true)

	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(testJWTConfig(), time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	if err := svc.Logout(context.Background(), LogoutRequest{AccessToken: accessToken}); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != accessID {
		t.Fatalf("expected the token's session to be revoked, got %v", sessions.revoked)
	}
}
