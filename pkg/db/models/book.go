package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Book represents a catalog listing with its sellable stock.
type Book struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string          `gorm:"column:title;not null"`
	Author      string          `gorm:"column:author;not null"`
	Description *string         `gorm:"column:description"`
	ImageURL    *string         `gorm:"column:image_url"`
	CategoryID  *uuid.UUID      `gorm:"column:category_id;type:uuid"`
	Category    *Category       `gorm:"foreignKey:CategoryID"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Stock       int             `gorm:"column:stock;not null;default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
