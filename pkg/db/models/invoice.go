package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice records a completed checkout. Immutable after creation.
type Invoice struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     *uuid.UUID      `gorm:"column:user_id;type:uuid"`
	TotalPrice decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null"`
	Lines      []InvoiceLine   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}
