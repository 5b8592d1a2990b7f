package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageturn/bookstore-backend/pkg/db/models"
)

// Repository persists invoices produced by checkout.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an invoice repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateInvoice inserts the invoice header.
func (r *Repository) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

// CreateLines inserts the fulfilled lines for an invoice.
func (r *Repository) CreateLines(ctx context.Context, lines []models.InvoiceLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

// FindByID loads an invoice with its lines.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("id = ?", id).
		First(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ListForUser returns a user's invoices, newest first.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Invoice, error) {
	var invoices []models.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}
