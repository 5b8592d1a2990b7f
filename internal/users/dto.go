package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/pageturn/bookstore-backend/pkg/db/models"
	"github.com/pageturn/bookstore-backend/pkg/enums"
)

// CreateUserDTO carries the fields required to insert a user row.
type CreateUserDTO struct {
	Username     string
	Email        string
	PasswordHash string
	Provider     enums.Provider
}

// ToModel converts the DTO into the persistence model.
func (d CreateUserDTO) ToModel() *models.User {
	return &models.User{
		ID:           uuid.New(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Provider:     d.Provider,
		IsActive:     true,
	}
}

// UserResponse is the public representation of an account.
type UserResponse struct {
	ID          uuid.UUID      `json:"id"`
	Username    string         `json:"username"`
	Email       string         `json:"email"`
	Provider    enums.Provider `json:"provider"`
	Roles       []string       `json:"roles"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// FromModel converts the persistence model to the API shape.
func FromModel(user *models.User) UserResponse {
	roles := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, role.Name.String())
	}
	return UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Provider:    user.Provider,
		Roles:       roles,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
