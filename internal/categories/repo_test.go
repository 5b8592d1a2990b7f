package categories

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/pageturn/bookstore-backend/pkg/db/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("BOOKSTORE_TEST_DB_DSN")
	if dsn == "" {
		t.Skip("BOOKSTORE_TEST_DB_DSN is not set")
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return conn
}

func TestRepositoryNameAndBookCount(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()

	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin: %v", tx.Error)
	}
	defer tx.Rollback()

	repo := NewRepository(tx)
	name := fmt.Sprintf("SciFi %s", uuid.NewString()[:8])

	category, err := repo.Create(ctx, &models.Category{ID: uuid.New(), Name: name})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	exists, err := repo.ExistsByName(ctx, name)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Fatal("expected category to exist by name")
	}

	exists, err = repo.ExistsByName(ctx, name+"-missing")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatal("unexpected match for unknown name")
	}

	book := &models.Book{
		ID:         uuid.New(),
		Title:      "Counted",
		Author:     "Tester",
		CategoryID: &category.ID,
		Price:      decimal.RequireFromString("5.00"),
		Stock:      1,
	}
	if err := tx.Create(book).Error; err != nil {
		t.Fatalf("create book: %v", err)
	}

	count, err := repo.CountBooks(ctx, category.ID)
	if err != nil {
		t.Fatalf("count books: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 book, got %d", count)
	}
}
