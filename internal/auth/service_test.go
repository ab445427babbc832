package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/rangershop/backend/pkg/auth"
	"github.com/rangershop/backend/pkg/auth/session"
	"github.com/rangershop/backend/pkg/config"
	"github.com/rangershop/backend/pkg/db/models"
	pkgerrors "github.com/rangershop/backend/pkg/errors"
	"github.com/rangershop/backend/pkg/security"
	"gorm.io/gorm"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "rangershop",
		ExpirationMinutes: 30,
	}
}

func TestServiceLoginIssuesTokens(t *testing.T) {
	password := "ranger-secret"
	hashed := mustHashPassword(t, password)
	user := &models.User{
		ID:           uuid.New(),
		Username:     "ranger",
		Email:        "ranger@example.com",
		PasswordHash: hashed,
		IsActive:     true,
	}
	cfg := testJWTConfig()

	svc, sessions, err := buildTestService(user, cfg)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Ranger@Example.com",
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id claim %s, got %s", user.ID, claims.UserID)
	}
	if claims.Username != "ranger" {
		t.Fatalf("unexpected username claim: %s", claims.Username)
	}
	if resp.RefreshToken != sessions.refreshToken {
		t.Fatalf("expected refresh token from session manager")
	}
	if resp.User == nil || resp.User.Email != "ranger@example.com" {
		t.Fatalf("expected user payload in response")
	}
	if user.LastLoginAt == nil {
		t.Fatalf("expected last login timestamp to be recorded")
	}
}

func TestServiceLoginRejectsWrongPassword(t *testing.T) {
	hashed := mustHashPassword(t, "right-password")
	user := &models.User{
		ID:           uuid.New(),
		Username:     "ranger",
		Email:        "ranger@example.com",
		PasswordHash: hashed,
		IsActive:     true,
	}

	svc, _, err := buildTestService(user, testJWTConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "wrong-password",
	})
	requireUnauthorized(t, err)
}

func TestServiceLoginRejectsUnknownEmail(t *testing.T) {
	svc, _, err := buildTestService(nil, testJWTConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	requireUnauthorized(t, err)
}

func TestServiceLoginRejectsInactiveUser(t *testing.T) {
	password := "inactive-secret"
	hashed := mustHashPassword(t, password)
	user := &models.User{
		ID:           uuid.New(),
		Username:     "sleeper",
		Email:        "sleeper@example.com",
		PasswordHash: hashed,
		IsActive:     false,
	}

	svc, _, err := buildTestService(user, testJWTConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	requireUnauthorized(t, err)
}

func TestServiceRefreshRotatesSession(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()
	accessToken, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:   userID,
		Username: "ranger",
		JTI:      "old-access-id",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	svc, sessions, err := buildTestService(nil, cfg)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	sessions.rotatedAccessID = "new-access-id"
	sessions.rotatedRefresh = "new-refresh"

	resp, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  accessToken,
		RefreshToken: sessions.refreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if sessions.rotateCalledWith != "old-access-id" {
		t.Fatalf("expected rotation keyed on old access id, got %s", sessions.rotateCalledWith)
	}
	if resp.RefreshToken != "new-refresh" {
		t.Fatalf("unexpected refresh token: %s", resp.RefreshToken)
	}
	claims, err := pkgAuth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated token: %v", err)
	}
	if claims.ID != "new-access-id" {
		t.Fatalf("expected new access id in claims, got %s", claims.ID)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user id to carry over, got %s", claims.UserID)
	}
}

func TestServiceRefreshRejectsBadRefreshToken(t *testing.T) {
	cfg := testJWTConfig()
	accessToken, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "ranger",
		JTI:      "old-access-id",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	svc, sessions, err := buildTestService(nil, cfg)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	sessions.rotateErr = session.ErrInvalidRefreshToken

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  accessToken,
		RefreshToken: "stolen-token",
	})
	requireUnauthorized(t, err)
}

func TestServiceLogoutRevokesSession(t *testing.T) {
	svc, sessions, err := buildTestService(nil, testJWTConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	if err := svc.Logout(context.Background(), "access-id"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if sessions.revokedAccessID != "access-id" {
		t.Fatalf("expected session revoked, got %q", sessions.revokedAccessID)
	}

	err = svc.Logout(context.Background(), "   ")
	requireUnauthorized(t, err)
}

func requireUnauthorized(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected unauthorized error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func buildTestService(user *models.User, jwtCfg config.JWTConfig) (Service, *stubSessionManager, error) {
	sessions := &stubSessionManager{refreshToken: "refresh-token"}
	svc, err := NewService(ServiceParams{
		UserRepo:       &stubUserRepo{user: user},
		SessionManager: sessions,
		JWTConfig:      jwtCfg,
	})
	return svc, sessions, err
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

type stubUserRepo struct {
	user *models.User
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if s.user != nil && s.user.ID == id {
		s.user.LastLoginAt = &at
	}
	return nil
}

type stubSessionManager struct {
	refreshToken     string
	rotatedAccessID  string
	rotatedRefresh   string
	rotateCalledWith string
	rotateErr        error
	revokedAccessID  string
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	return s.refreshToken, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	s.rotateCalledWith = oldAccessID
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	return s.rotatedAccessID, s.rotatedRefresh, nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	s.revokedAccessID = accessID
	return nil
}
