package models

import (
	"github.com/google/uuid"

	"github.com/pageturn/bookstore-backend/pkg/enums"
)

// Role is a grantable authority attached to users.
type Role struct {
	ID   uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name enums.Role `gorm:"column:name;not null;uniqueIndex"`
}
