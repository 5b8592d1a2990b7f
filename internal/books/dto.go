package books

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pageturn/bookstore-backend/pkg/db/models"
)

// CreateBookRequest is the admin payload for adding a catalog entry.
type CreateBookRequest struct {
	Title       string          `json:"title" validate:"required"`
	Author      string          `json:"author" validate:"required"`
	Description *string         `json:"description,omitempty"`
	ImageURL    *string         `json:"image_url,omitempty" validate:"omitempty,url"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Stock       int             `json:"stock" validate:"gte=0"`
}

// UpdateBookRequest carries partial updates; nil fields are left unchanged.
type UpdateBookRequest struct {
	Title       *string          `json:"title,omitempty"`
	Author      *string          `json:"author,omitempty"`
	Description *string          `json:"description,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty" validate:"omitempty,url"`
	CategoryID  *uuid.UUID       `json:"category_id,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
}

// BookResponse is the public representation of a catalog entry.
type BookResponse struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	Description *string         `json:"description,omitempty"`
	ImageURL    *string         `json:"image_url,omitempty"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	InStock     bool            `json:"in_stock"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// FromModel converts the persistence model to the API shape.
func FromModel(book *models.Book) *BookResponse {
	return &BookResponse{
		ID:          book.ID,
		Title:       book.Title,
		Author:      book.Author,
		Description: book.Description,
		ImageURL:    book.ImageURL,
		CategoryID:  book.CategoryID,
		Price:       book.Price,
		Stock:       book.Stock,
		InStock:     book.Stock > 0,
		CreatedAt:   book.CreatedAt,
		UpdatedAt:   book.UpdatedAt,
	}
}

// ListFilters narrows catalog listings.
type ListFilters struct {
	Query         string
	CategoryID    *uuid.UUID
	PriceMin      *decimal.Decimal
	PriceMax      *decimal.Decimal
	AvailableOnly bool
}

// ListResult is one page of catalog entries.
type ListResult struct {
	Books      []BookResponse
	NextCursor string
}
