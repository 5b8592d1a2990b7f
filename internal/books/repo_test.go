package books

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pageturn/bookstore-backend/pkg/db/models"
	pkgerrors "github.com/pageturn/bookstore-backend/pkg/errors"
	"github.com/pageturn/bookstore-backend/pkg/pagination"
)

func mustCreateTestBook(t *testing.T, tx *gorm.DB, title string, price string, stock int) *models.Book {
	t.Helper()
	book := &models.Book{
		ID:     uuid.New(),
		Title:  title,
		Author: fmt.Sprintf("Author %s", uuid.NewString()[:8]),
		Price:  decimal.RequireFromString(price),
		Stock:  stock,
	}
	if err := tx.Create(book).Error; err != nil {
		t.Fatalf("create book: %v", err)
	}
	return book
}

func TestRepositoryListFiltersAndSearch(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()

	withRollback(t, conn, func(tx *gorm.DB) {
		repo := NewRepository(tx)
		dune := mustCreateTestBook(t, tx, "Dune", "10.00", 3)
		mustCreateTestBook(t, tx, "Foundation", "8.00", 0)

		result, err := repo.List(ctx, pagination.Params{Limit: 10}, ListFilters{Query: "dune"})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(result.Books) != 1 || result.Books[0].ID != dune.ID {
			t.Fatalf("expected only Dune, got %d rows", len(result.Books))
		}

		result, err = repo.List(ctx, pagination.Params{Limit: 10}, ListFilters{AvailableOnly: true})
		if err != nil {
			t.Fatalf("list available: %v", err)
		}
		for _, b := range result.Books {
			if b.Stock <= 0 {
				t.Fatalf("available-only listing returned out-of-stock book %s", b.Title)
			}
		}
	})
}

func TestRepositoryListPagination(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()

	withRollback(t, conn, func(tx *gorm.DB) {
		repo := NewRepository(tx)
		for i := 0; i < 5; i++ {
			mustCreateTestBook(t, tx, fmt.Sprintf("Paging %d %s", i, uuid.NewString()[:8]), "5.00", 1)
		}

		first, err := repo.List(ctx, pagination.Params{Limit: 3}, ListFilters{Query: "paging"})
		if err != nil {
			t.Fatalf("first page: %v", err)
		}
		if len(first.Books) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(first.Books))
		}
		if first.NextCursor == "" {
			t.Fatal("expected next cursor")
		}

		second, err := repo.List(ctx, pagination.Params{Limit: 3, Cursor: first.NextCursor}, ListFilters{Query: "paging"})
		if err != nil {
			t.Fatalf("second page: %v", err)
		}
		if len(second.Books) != 2 {
			t.Fatalf("expected 2 rows on final page, got %d", len(second.Books))
		}
		if second.NextCursor != "" {
			t.Fatal("final page should have no cursor")
		}
	})
}

func TestAdjustStock(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()

	withRollback(t, conn, func(tx *gorm.DB) {
		book := mustCreateTestBook(t, tx, "Stock Test", "12.50", 5)

		updated, err := AdjustStock(ctx, tx, book.ID, -3)
		if err != nil {
			t.Fatalf("decrease: %v", err)
		}
		if updated.Stock != 2 {
			t.Fatalf("expected stock 2, got %d", updated.Stock)
		}

		if _, err := AdjustStock(ctx, tx, book.ID, -3); err == nil {
			t.Fatal("expected insufficient stock error")
		} else if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeInsufficientStock {
			t.Fatalf("expected INSUFFICIENT_STOCK, got %v", err)
		}

		// failed decrement leaves the row unchanged
		reloaded, err := NewRepository(tx).FindByID(ctx, book.ID)
		if err != nil {
			t.Fatalf("reload: %v", err)
		}
		if reloaded.Stock != 2 {
			t.Fatalf("stock changed after failed decrement: %d", reloaded.Stock)
		}

		updated, err = AdjustStock(ctx, tx, book.ID, 3)
		if err != nil {
			t.Fatalf("increase: %v", err)
		}
		if updated.Stock != 5 {
			t.Fatalf("round trip should restore stock, got %d", updated.Stock)
		}
	})
}

func TestAdjustStockUnknownBook(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()

	withRollback(t, conn, func(tx *gorm.DB) {
		_, err := AdjustStock(ctx, tx, uuid.New(), -1)
		if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeNotFound {
			t.Fatalf("expected NOT_FOUND, got %v", err)
		}
	})
}
