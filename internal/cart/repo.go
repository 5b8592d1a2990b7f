package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageturn/bookstore-backend/pkg/db/models"
	"github.com/pageturn/bookstore-backend/pkg/enums"
)

// Repository persists cart snapshots so a logged-in user can resume their
// cart on another session.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ReplaceForUser overwrites the user's persisted cart with the given lines.
// An existing record is reused; its old items are dropped first.
func (r *Repository) ReplaceForUser(ctx context.Context, userID uuid.UUID, cart *Cart) (*models.CartRecord, error) {
	var record models.CartRecord
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		record = models.CartRecord{ID: uuid.New(), UserID: userID, Status: enums.CartStatusActive}
		if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := r.db.WithContext(ctx).
			Where("cart_id = ?", record.ID).
			Delete(&models.CartItem{}).Error; err != nil {
			return nil, err
		}
		if record.Status != enums.CartStatusActive {
			if err := r.db.WithContext(ctx).
				Model(&models.CartRecord{}).
				Where("id = ?", record.ID).
				UpdateColumn("status", enums.CartStatusActive).Error; err != nil {
				return nil, err
			}
			record.Status = enums.CartStatusActive
		}
	}

	items := make([]models.CartItem, 0, len(cart.Items))
	for i, line := range cart.Items {
		items = append(items, models.CartItem{
			ID:        uuid.New(),
			CartID:    record.ID,
			BookID:    line.BookID,
			BookTitle: line.Title,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Position:  i,
		})
	}
	if len(items) > 0 {
		if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
			return nil, err
		}
	}
	record.Items = items
	return &record, nil
}

// FindActiveForUser loads the user's active persisted cart and rebuilds the
// session value object from it. Returns gorm.ErrRecordNotFound when the user
// has no active cart.
func (r *Repository) FindActiveForUser(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	var record models.CartRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, enums.CartStatusActive).
		First(&record).Error; err != nil {
		return nil, err
	}

	var items []models.CartItem
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", record.ID).
		Order("position asc").
		Find(&items).Error; err != nil {
		return nil, err
	}

	cart := New()
	for _, row := range items {
		cart.Items = append(cart.Items, Item{
			BookID:    row.BookID,
			Title:     row.BookTitle,
			UnitPrice: row.UnitPrice,
			Quantity:  row.Quantity,
		})
	}
	return cart, nil
}

// MarkConverted flags the user's persisted cart as checked out.
func (r *Repository) MarkConverted(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.CartRecord{}).
		Where("user_id = ? AND status = ?", userID, enums.CartStatusActive).
		UpdateColumn("status", enums.CartStatusConverted).Error
}

// DeleteForUser removes the user's persisted cart and its items.
func (r *Repository) DeleteForUser(ctx context.Context, userID uuid.UUID) error {
	var record models.CartRecord
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", record.ID).
		Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&record).Error
}
