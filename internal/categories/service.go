package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbclient "github.com/pageturn/bookstore-backend/pkg/db"
	"github.com/pageturn/bookstore-backend/pkg/db/models"
	pkgerrors "github.com/pageturn/bookstore-backend/pkg/errors"
)

// CategoryResponse is the public representation of a category.
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	BookCount int64     `json:"book_count"`
	CreatedAt time.Time `json:"created_at"`
}

// UpsertCategoryRequest carries the name for create and rename operations.
type UpsertCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

// Service defines the category behavior needed by the controllers.
type Service interface {
	List(ctx context.Context) ([]CategoryResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*CategoryResponse, error)
	Create(ctx context.Context, req UpsertCategoryRequest) (*CategoryResponse, error)
	Update(ctx context.Context, id uuid.UUID, req UpsertCategoryRequest) (*CategoryResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	db *dbclient.Client
}

// NewService constructs a category service.
func NewService(db *dbclient.Client) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database client is required")
	}
	return &service{db: db}, nil
}

func (s *service) List(ctx context.Context) ([]CategoryResponse, error) {
	repo := NewRepository(s.db.DB())
	rows, err := repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}

	out := make([]CategoryResponse, 0, len(rows))
	for i := range rows {
		count, err := repo.CountBooks(ctx, rows[i].ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count category books")
		}
		out = append(out, toResponse(&rows[i], count))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	repo := NewRepository(s.db.DB())
	category, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}
	count, err := repo.CountBooks(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count category books")
	}
	resp := toResponse(category, count)
	return &resp, nil
}

func (s *service) Create(ctx context.Context, req UpsertCategoryRequest) (*CategoryResponse, error) {
	name, err := normalizeName(req.Name)
	if err != nil {
		return nil, err
	}

	var created *models.Category
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		exists, err := repo.ExistsByName(ctx, name)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check category name")
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeConflict, "category name already exists")
		}
		created, err = repo.Create(ctx, &models.Category{ID: uuid.New(), Name: name})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create category")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := toResponse(created, 0)
	return &resp, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpsertCategoryRequest) (*CategoryResponse, error) {
	name, err := normalizeName(req.Name)
	if err != nil {
		return nil, err
	}

	var updated *models.Category
	var count int64
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		category, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
		}
		if !strings.EqualFold(category.Name, name) {
			exists, err := repo.ExistsByName(ctx, name)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check category name")
			}
			if exists {
				return pkgerrors.New(pkgerrors.CodeConflict, "category name already exists")
			}
		}
		category.Name = name
		updated, err = repo.Update(ctx, category)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update category")
		}
		count, err = repo.CountBooks(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count category books")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := toResponse(updated, count)
	return &resp, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	repo := NewRepository(s.db.DB())
	if _, err := repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}
	if err := repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete category")
	}
	return nil
}

func toResponse(category *models.Category, bookCount int64) CategoryResponse {
	return CategoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		BookCount: bookCount,
		CreatedAt: category.CreatedAt,
	}
}

func normalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	return trimmed, nil
}
