package models

import (
	"github.com/google/uuid"
)

// InvoiceLine links an invoice to a purchased book.
type InvoiceLine struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceID uuid.UUID `gorm:"column:invoice_id;type:uuid;not null;index"`
	BookID    uuid.UUID `gorm:"column:book_id;type:uuid;not null"`
	Quantity  int       `gorm:"column:quantity;not null"`
}
