package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pageturn/bookstore-backend/pkg/enums"
)

// User represents the canonical identity entity.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Username     string         `gorm:"column:username;not null;uniqueIndex"`
	Email        string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Provider     enums.Provider `gorm:"column:provider;not null;default:local"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	Roles        []Role         `gorm:"many2many:user_roles"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// HasRole reports whether the user carries the named role.
func (u *User) HasRole(role enums.Role) bool {
	for _, r := range u.Roles {
		if r.Name == role {
			return true
		}
	}
	return false
}
