package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/pageturn/bookstore-backend/pkg/auth"
	"github.com/pageturn/bookstore-backend/pkg/config"
	"github.com/pageturn/bookstore-backend/pkg/db/models"
	"github.com/pageturn/bookstore-backend/pkg/enums"
	pkgerrors "github.com/pageturn/bookstore-backend/pkg/errors"
	"github.com/pageturn/bookstore-backend/pkg/security"
)

type stubUserRepo struct {
	users      map[string]*models.User
	lastLogins int
}

func (s *stubUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if user, ok := s.users[username]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) UpdateLastLogin(context.Context, uuid.UUID, time.Time) error {
	s.lastLogins++
	return nil
}

type stubSessionManager struct {
	generated []string
	revoked   []string
	rotateErr error
}

func (s *stubSessionManager) Generate(_ context.Context, accessID string) (string, error) {
	s.generated = append(s.generated, accessID)
	return "refresh-" + accessID, nil
}

func (s *stubSessionManager) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	return "new-" + oldAccessID, "rotated-" + provided, nil
}

func (s *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "bookstore",
		ExpirationMinutes: 15,
	}
}

func newTestUser(t *testing.T, username, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Provider:     enums.ProviderLocal,
		IsActive:     true,
		Roles:        []models.Role{{ID: uuid.New(), Name: enums.RoleUser}},
	}
}

func newTestService(t *testing.T, repo *stubUserRepo, sessions *stubSessionManager) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestLoginSuccess(t *testing.T) {
	user := newTestUser(t, "reader42", "correct-horse")
	repo := &stubUserRepo{users: map[string]*models.User{"reader42": user}}
	sessions := &stubSessionManager{}
	svc := newTestService(t, repo, sessions)

	resp, err := svc.Login(context.Background(), LoginRequest{Username: "reader42", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if repo.lastLogins != 1 {
		t.Fatal("expected last login update")
	}
	if len(sessions.generated) != 1 {
		t.Fatal("expected refresh session to be stored")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != enums.RoleUser {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.ID != sessions.generated[0] {
		t.Fatal("jti should match the stored session access id")
	}
}

func TestLoginAdminRole(t *testing.T) {
	user := newTestUser(t, "admin1", "correct-horse")
	user.Roles = append(user.Roles, models.Role{ID: uuid.New(), Name: enums.RoleAdmin})
	repo := &stubUserRepo{users: map[string]*models.User{"admin1": user}}
	svc := newTestService(t, repo, &stubSessionManager{})

	resp, err := svc.Login(context.Background(), LoginRequest{Username: "admin1", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.Role != enums.RoleAdmin {
		t.Fatalf("expected admin role, got %s", claims.Role)
	}
}

func TestLoginFailures(t *testing.T) {
	user := newTestUser(t, "reader42", "correct-horse")
	inactive := newTestUser(t, "ghost", "correct-horse")
	inactive.IsActive = false
	oauthUser := newTestUser(t, "oauthonly", "irrelevant")
	oauthUser.PasswordHash = security.UnusablePasswordHash

	repo := &stubUserRepo{users: map[string]*models.User{
		"reader42":  user,
		"ghost":     inactive,
		"oauthonly": oauthUser,
	}}
	svc := newTestService(t, repo, &stubSessionManager{})
	ctx := context.Background()

	cases := []struct {
		name string
		req  LoginRequest
	}{
		{"wrong password", LoginRequest{Username: "reader42", Password: "wrong"}},
		{"unknown user", LoginRequest{Username: "nobody", Password: "whatever"}},
		{"blank username", LoginRequest{Username: "  ", Password: "whatever"}},
		{"inactive user", LoginRequest{Username: "ghost", Password: "correct-horse"}},
		{"oauth-only account", LoginRequest{Username: "oauthonly", Password: "irrelevant"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tc.req)
			coded := pkgerrors.As(err)
			if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
				t.Fatalf("expected UNAUTHORIZED, got %v", err)
			}
		})
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	user := newTestUser(t, "reader42", "correct-horse")
	repo := &stubUserRepo{users: map[string]*models.User{"reader42": user}}
	sessions := &stubSessionManager{}
	svc := newTestService(t, repo, sessions)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Username: "reader42", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	resp, err := svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected rotated pair")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatal("rotated token should keep the user")
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	user := newTestUser(t, "reader42", "correct-horse")
	repo := &stubUserRepo{users: map[string]*models.User{"reader42": user}}
	sessions := &stubSessionManager{}
	svc := newTestService(t, repo, sessions)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Username: "reader42", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	loggedOut, err := svc.Logout(ctx, login.AccessToken)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	if loggedOut != user.ID {
		t.Fatalf("expected logout to report user %s, got %s", user.ID, loggedOut)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != sessions.generated[0] {
		t.Fatalf("expected the login session to be revoked, got %v", sessions.revoked)
	}
}
