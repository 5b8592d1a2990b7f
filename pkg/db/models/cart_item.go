package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one persisted cart line. Position preserves insertion order so
// a reloaded cart renders the way the shopper left it.
type CartItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID    uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;index"`
	BookID    uuid.UUID       `gorm:"column:book_id;type:uuid;not null"`
	BookTitle string          `gorm:"column:book_title;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Position  int             `gorm:"column:position;not null;default:0"`
}
