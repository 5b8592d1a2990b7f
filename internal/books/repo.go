package books

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageturn/bookstore-backend/pkg/db/models"
	"github.com/pageturn/bookstore-backend/pkg/pagination"
)

// Repository wires book persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a book by its id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// FindByIDForUpdate loads a book under a row lock. Callers must be inside a
// transaction; concurrent stock writers block on the same row.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// Create inserts a new book row.
func (r *Repository) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		return nil, err
	}
	return book, nil
}

// Update saves the full book row.
func (r *Repository) Update(ctx context.Context, book *models.Book) (*models.Book, error) {
	if err := r.db.WithContext(ctx).Save(book).Error; err != nil {
		return nil, err
	}
	return book, nil
}

// Delete removes a book by id.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Book{}).Error
}

// Count returns the total number of catalog rows.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Book{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SetStock writes the stock value for the given book.
func (r *Repository) SetStock(ctx context.Context, id uuid.UUID, stock int) error {
	return r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", id).
		UpdateColumn("stock", stock).Error
}

// List returns one cursor page of books matching the filters, newest first.
func (r *Repository) List(ctx context.Context, params pagination.Params, filters ListFilters) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).Model(&models.Book{})

	if search := strings.TrimSpace(filters.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(title) LIKE ? OR LOWER(author) LIKE ?)", pattern, pattern)
	}
	if filters.CategoryID != nil {
		qb = qb.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.PriceMin != nil {
		qb = qb.Where("price >= ?", *filters.PriceMin)
	}
	if filters.PriceMax != nil {
		qb = qb.Where("price <= ?", *filters.PriceMax)
	}
	if filters.AvailableOnly {
		qb = qb.Where("stock > 0")
	}

	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Book
	if err := qb.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	keep, hasMore := pagination.TrimPage(len(rows), params.Limit)
	rows = rows[:keep]

	nextCursor := ""
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	result := &ListResult{
		Books:      make([]BookResponse, 0, len(rows)),
		NextCursor: nextCursor,
	}
	for i := range rows {
		result.Books = append(result.Books, *FromModel(&rows[i]))
	}
	return result, nil
}
