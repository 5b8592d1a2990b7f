package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/pageturn/bookstore-backend/internal/users"
	"github.com/pageturn/bookstore-backend/pkg/db"
	"github.com/pageturn/bookstore-backend/pkg/enums"
	pkgerrors "github.com/pageturn/bookstore-backend/pkg/errors"
	"github.com/pageturn/bookstore-backend/pkg/logger"
	"github.com/pageturn/bookstore-backend/pkg/security"
)

// OAuthService provisions local accounts from verified external profiles.
type OAuthService interface {
	ProvisionUser(ctx context.Context, profile OAuthProfile) (*users.UserResponse, error)
}

// OAuthServiceParams packages the dependencies for oauth provisioning.
type OAuthServiceParams struct {
	DB     *db.Client
	Logger *logger.Logger
}

type oauthService struct {
	db   *db.Client
	logg *logger.Logger
}

// NewOAuthService builds an oauth provisioning service.
func NewOAuthService(params OAuthServiceParams) (OAuthService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &oauthService{db: params.DB, logg: params.Logger}, nil
}

// ProvisionUser ensures an account exists for the external profile. Profiles
// missing an email or display name are skipped with a warning; an account
// whose username already exists is treated as a returning user. Accounts
// created here carry an unusable password hash, so they can never log in
// with local credentials.
func (s *oauthService) ProvisionUser(ctx context.Context, profile OAuthProfile) (*users.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	username := strings.TrimSpace(profile.Name)
	if email == "" || username == "" {
		s.logg.Warn(ctx, "oauth profile incomplete, skipping provisioning")
		return nil, nil
	}

	var response users.UserResponse
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		existing, err := userRepo.FindByUsername(ctx, username)
		if err == nil {
			response = users.FromModel(existing)
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check username")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Username:     username,
			Email:        email,
			PasswordHash: security.UnusablePasswordHash,
			Provider:     enums.ProviderOAuth,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create oauth user")
		}

		role, err := userRepo.FindRoleByName(ctx, enums.RoleUser)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load default role")
		}
		if err := userRepo.AttachRole(ctx, user, role); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "grant default role")
		}
		if !user.HasRole(role.Name) {
			user.Roles = append(user.Roles, *role)
		}

		response = users.FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}
