package books

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageturn/bookstore-backend/pkg/db"
	"github.com/pageturn/bookstore-backend/pkg/db/models"
	pkgerrors "github.com/pageturn/bookstore-backend/pkg/errors"
	"github.com/pageturn/bookstore-backend/pkg/logger"
	"github.com/pageturn/bookstore-backend/pkg/pagination"
)

// Service defines the catalog behavior needed by the book controllers.
type Service interface {
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*BookResponse, error)
	Create(ctx context.Context, req CreateBookRequest) (*BookResponse, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateBookRequest) (*BookResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	IsInStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error)
	DecreaseStock(ctx context.Context, id uuid.UUID, quantity int) (*BookResponse, error)
	IncreaseStock(ctx context.Context, id uuid.UUID, quantity int) (*BookResponse, error)
}

type service struct {
	db   *db.Client
	logg *logger.Logger
}

// ServiceParams bundles the dependencies required to build a book service.
type ServiceParams struct {
	DB     *db.Client
	Logger *logger.Logger
}

// NewService constructs a book service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{db: params.DB, logg: params.Logger}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*ListResult, error) {
	result, err := NewRepository(s.db.DB()).List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list books")
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*BookResponse, error) {
	book, err := NewRepository(s.db.DB()).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load book")
	}
	return FromModel(book), nil
}

func (s *service) Create(ctx context.Context, req CreateBookRequest) (*BookResponse, error) {
	title := strings.TrimSpace(req.Title)
	author := strings.TrimSpace(req.Author)
	if title == "" || author == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and author are required")
	}
	if req.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if req.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	book := &models.Book{
		ID:          uuid.New(),
		Title:       title,
		Author:      author,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
		Price:       req.Price,
		Stock:       req.Stock,
	}
	if _, err := NewRepository(s.db.DB()).Create(ctx, book); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create book")
	}
	return FromModel(book), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateBookRequest) (*BookResponse, error) {
	if req.Price != nil && req.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	var updated *models.Book
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		book, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if req.Title != nil {
			book.Title = strings.TrimSpace(*req.Title)
		}
		if req.Author != nil {
			book.Author = strings.TrimSpace(*req.Author)
		}
		if req.Description != nil {
			book.Description = req.Description
		}
		if req.ImageURL != nil {
			book.ImageURL = req.ImageURL
		}
		if req.CategoryID != nil {
			book.CategoryID = req.CategoryID
		}
		if req.Price != nil {
			book.Price = *req.Price
		}
		updated, err = repo.Update(ctx, book)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update book")
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	repo := NewRepository(s.db.DB())
	if _, err := repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load book")
	}
	if err := repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete book")
	}
	return nil
}

func (s *service) Count(ctx context.Context) (int64, error) {
	count, err := NewRepository(s.db.DB()).Count(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count books")
	}
	return count, nil
}

// IsInStock reports whether the book can cover the requested quantity. An
// unknown book is simply not in stock; this never errors on absence.
func (s *service) IsInStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	book, err := NewRepository(s.db.DB()).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load book")
	}
	return book.Stock >= quantity, nil
}

// DecreaseStock removes quantity units under a row lock. The row is left
// unchanged when stock cannot cover the request.
func (s *service) DecreaseStock(ctx context.Context, id uuid.UUID, quantity int) (*BookResponse, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var result *models.Book
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		book, err := AdjustStock(ctx, tx, id, -quantity)
		if err != nil {
			return err
		}
		result = book
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"book_id":  id,
		"quantity": quantity,
		"stock":    result.Stock,
	}), "stock decreased")
	return FromModel(result), nil
}

// IncreaseStock adds quantity units under a row lock.
func (s *service) IncreaseStock(ctx context.Context, id uuid.UUID, quantity int) (*BookResponse, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var result *models.Book
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		book, err := AdjustStock(ctx, tx, id, quantity)
		if err != nil {
			return err
		}
		result = book
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"book_id":  id,
		"quantity": quantity,
		"stock":    result.Stock,
	}), "stock increased")
	return FromModel(result), nil
}

// AdjustStock applies a signed stock delta to the locked book row. It is
// exported for the checkout transaction, which adjusts stock for many books
// inside its own transaction.
func AdjustStock(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) (*models.Book, error) {
	repo := NewRepository(tx)
	book, err := repo.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock book row")
	}

	next := book.Stock + delta
	if next < 0 {
		return nil, pkgerrors.New(
			pkgerrors.CodeInsufficientStock,
			fmt.Sprintf("insufficient stock for %q: have %d, need %d", book.Title, book.Stock, -delta),
		)
	}
	if err := repo.SetStock(ctx, id, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write stock")
	}
	book.Stock = next
	return book, nil
}
