package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/pageturn/bookstore-backend/internal/users"
	"github.com/pageturn/bookstore-backend/pkg/config"
	"github.com/pageturn/bookstore-backend/pkg/db"
	"github.com/pageturn/bookstore-backend/pkg/enums"
	pkgerrors "github.com/pageturn/bookstore-backend/pkg/errors"
	"github.com/pageturn/bookstore-backend/pkg/security"
)

// RegisterService handles local account creation.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserResponse, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

// Register creates the user and grants the default role in one transaction,
// so a failed role grant never leaves a role-less account behind.
func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.UserResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var response users.UserResponse
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		if _, err := userRepo.FindByUsername(ctx, username); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check username")
		}

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Username:     username,
			Email:        email,
			PasswordHash: passwordHash,
			Provider:     enums.ProviderLocal,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
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
