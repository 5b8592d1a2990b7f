package auth

import (
	"context"
	"testing"

	"github.com/pageturn/bookstore-backend/pkg/db"
	"github.com/pageturn/bookstore-backend/pkg/db/models"
	"github.com/pageturn/bookstore-backend/pkg/enums"
	"github.com/pageturn/bookstore-backend/pkg/logger"
	"github.com/pageturn/bookstore-backend/pkg/security"
	"gorm.io/gorm"
)

func newTestOAuthService(t *testing.T, conn *gorm.DB) OAuthService {
	t.Helper()
	svc, err := NewOAuthService(OAuthServiceParams{
		DB:     db.NewFromConn(conn),
		Logger: logger.New(logger.Options{ServiceName: "oauth-test"}),
	})
	if err != nil {
		t.Fatalf("new oauth service: %v", err)
	}
	return svc
}

func TestProvisionUserCreatesOAuthAccount(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestOAuthService(t, conn)
	ctx := context.Background()

	name := uniqueHandle("oauth-reader")
	resp, err := svc.ProvisionUser(ctx, OAuthProfile{
		Email: name + "@example.com",
		Name:  name,
	})
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	if resp == nil {
		t.Fatal("expected a provisioned user")
	}
	cleanupUser(t, conn, resp.ID)

	if resp.Provider != enums.ProviderOAuth {
		t.Fatalf("expected oauth provider, got %s", resp.Provider)
	}
	if len(resp.Roles) != 1 || resp.Roles[0] != enums.RoleUser.String() {
		t.Fatalf("expected default user role, got %v", resp.Roles)
	}

	var persisted models.User
	if err := conn.Where("id = ?", resp.ID).First(&persisted).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if security.IsUsableHash(persisted.PasswordHash) {
		t.Fatal("oauth account must not carry a usable password hash")
	}
	valid, err := security.VerifyPassword("anything", persisted.PasswordHash)
	if err != nil || valid {
		t.Fatalf("oauth account must never verify a password, got valid=%v err=%v", valid, err)
	}
}

func TestProvisionUserReturnsExistingAccount(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestOAuthService(t, conn)
	ctx := context.Background()

	name := uniqueHandle("oauth-reader")
	first, err := svc.ProvisionUser(ctx, OAuthProfile{Email: name + "@example.com", Name: name})
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	cleanupUser(t, conn, first.ID)

	second, err := svc.ProvisionUser(ctx, OAuthProfile{Email: "other-" + name + "@example.com", Name: name})
	if err != nil {
		t.Fatalf("second provision: %v", err)
	}
	if second.ID != first.ID {
		t.Fatal("same username must resolve to the existing account")
	}

	var count int64
	if err := conn.Model(&models.User{}).Where("username = ?", name).Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single account, got %d", count)
	}
}

func TestProvisionUserSkipsIncompleteProfiles(t *testing.T) {
	svc := newTestOAuthService(t, nil)
	ctx := context.Background()

	cases := []struct {
		name    string
		profile OAuthProfile
	}{
		{"blank email", OAuthProfile{Name: "reader"}},
		{"blank name", OAuthProfile{Email: "reader@example.com"}},
		{"whitespace only", OAuthProfile{Email: "  ", Name: "\t"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := svc.ProvisionUser(ctx, tc.profile)
			if err != nil {
				t.Fatalf("expected silent skip, got %v", err)
			}
			if resp != nil {
				t.Fatal("incomplete profile must not provision an account")
			}
		})
	}
}
