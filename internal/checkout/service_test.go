package checkout

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/pageturn/bookstore-backend/internal/cart"
	"github.com/pageturn/bookstore-backend/pkg/db"
	"github.com/pageturn/bookstore-backend/pkg/db/models"
	"github.com/pageturn/bookstore-backend/pkg/enums"
	"github.com/pageturn/bookstore-backend/pkg/logger"
	redisclient "github.com/pageturn/bookstore-backend/pkg/redis"
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

func newTestStore(t *testing.T) *cart.SessionStore {
	t.Helper()
	srv := miniredis.RunT(t)
	store, err := cart.NewSessionStore(redisclient.NewFromAddr(srv.Addr()), time.Hour)
	if err != nil {
		t.Fatalf("new session store: %v", err)
	}
	return store
}

func newTestCheckoutService(t *testing.T, conn *gorm.DB, store *cart.SessionStore) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Store:  store,
		DB:     db.NewFromConn(conn),
		Logger: logger.New(logger.Options{ServiceName: "checkout-test"}),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func createTestBook(t *testing.T, conn *gorm.DB, title string, price string, stock int) *models.Book {
	t.Helper()
	book := &models.Book{
		ID:     uuid.New(),
		Title:  title,
		Author: "Test Author",
		Price:  decimal.RequireFromString(price),
		Stock:  stock,
	}
	if err := conn.Create(book).Error; err != nil {
		t.Fatalf("create book: %v", err)
	}
	t.Cleanup(func() {
		conn.Where("id = ?", book.ID).Delete(&models.Book{})
	})
	return book
}

func cleanupInvoice(t *testing.T, conn *gorm.DB, invoiceID uuid.UUID) {
	t.Helper()
	t.Cleanup(func() {
		conn.Where("invoice_id = ?", invoiceID).Delete(&models.InvoiceLine{})
		conn.Where("id = ?", invoiceID).Delete(&models.Invoice{})
	})
}

func seedSessionCart(t *testing.T, store *cart.SessionStore, sessionID string, items ...cart.Item) {
	t.Helper()
	ctx := context.Background()
	sessionCart := cart.New()
	for _, item := range items {
		if err := sessionCart.AddItem(item); err != nil {
			t.Fatalf("add item: %v", err)
		}
	}
	if err := store.Save(ctx, sessionID, sessionCart); err != nil {
		t.Fatalf("save cart: %v", err)
	}
}

func TestCheckoutEmptyCartIsNoOp(t *testing.T) {
	store := newTestStore(t)
	svc, err := NewService(ServiceParams{
		Store:  store,
		DB:     db.NewFromConn(nil),
		Logger: logger.New(logger.Options{ServiceName: "checkout-test"}),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	result, err := svc.Checkout(context.Background(), cart.NewSessionID(), nil)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if result.Outcome != OutcomeEmpty {
		t.Fatalf("expected empty outcome, got %s", result.Outcome)
	}
	if result.Invoice != nil {
		t.Fatal("empty checkout should not produce an invoice")
	}
}

func TestCheckoutCreatesInvoiceAndDecrementsStock(t *testing.T) {
	conn := openTestDB(t)
	store := newTestStore(t)
	svc := newTestCheckoutService(t, conn, store)
	ctx := context.Background()

	dune := createTestBook(t, conn, "Dune", "9.99", 5)
	foundation := createTestBook(t, conn, "Foundation", "12.50", 3)

	sessionID := cart.NewSessionID()
	seedSessionCart(t, store, sessionID,
		cart.Item{BookID: dune.ID, Title: dune.Title, UnitPrice: dune.Price, Quantity: 2},
		cart.Item{BookID: foundation.ID, Title: foundation.Title, UnitPrice: foundation.Price, Quantity: 1},
	)

	result, err := svc.Checkout(ctx, sessionID, nil)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	cleanupInvoice(t, conn, result.Invoice.ID)

	if result.Outcome != OutcomeCompleted {
		t.Fatalf("expected completed outcome, got %s", result.Outcome)
	}
	wantTotal := decimal.RequireFromString("32.48")
	if !result.Invoice.TotalPrice.Equal(wantTotal) {
		t.Fatalf("expected total %s, got %s", wantTotal, result.Invoice.TotalPrice)
	}
	if len(result.Invoice.Lines) != 2 {
		t.Fatalf("expected 2 invoice lines, got %d", len(result.Invoice.Lines))
	}

	persisted, err := NewRepository(conn).FindByID(ctx, result.Invoice.ID)
	if err != nil {
		t.Fatalf("load invoice: %v", err)
	}
	if len(persisted.Lines) != 2 {
		t.Fatalf("expected 2 persisted lines, got %d", len(persisted.Lines))
	}

	var reloaded models.Book
	if err := conn.Where("id = ?", dune.ID).First(&reloaded).Error; err != nil {
		t.Fatalf("reload book: %v", err)
	}
	if reloaded.Stock != 3 {
		t.Fatalf("expected stock 3 after checkout, got %d", reloaded.Stock)
	}

	// the session cart is gone, a fresh load yields an empty cart
	after, err := store.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("reload cart: %v", err)
	}
	if !after.IsEmpty() {
		t.Fatal("expected session cart to be cleared")
	}
}

func TestCheckoutSkipsUnfulfillableLines(t *testing.T) {
	conn := openTestDB(t)
	store := newTestStore(t)
	svc := newTestCheckoutService(t, conn, store)
	ctx := context.Background()

	inStock := createTestBook(t, conn, "Dune", "9.99", 5)
	lowStock := createTestBook(t, conn, "Foundation", "12.50", 1)
	missingID := uuid.New()

	sessionID := cart.NewSessionID()
	seedSessionCart(t, store, sessionID,
		cart.Item{BookID: inStock.ID, Title: inStock.Title, UnitPrice: inStock.Price, Quantity: 2},
		cart.Item{BookID: lowStock.ID, Title: lowStock.Title, UnitPrice: lowStock.Price, Quantity: 4},
		cart.Item{BookID: missingID, Title: "Vanished", UnitPrice: decimal.RequireFromString("5.00"), Quantity: 1},
	)

	result, err := svc.Checkout(ctx, sessionID, nil)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	cleanupInvoice(t, conn, result.Invoice.ID)

	if result.Outcome != OutcomePartial {
		t.Fatalf("expected partial outcome, got %s", result.Outcome)
	}
	if len(result.Invoice.Lines) != 1 {
		t.Fatalf("expected 1 fulfilled line, got %d", len(result.Invoice.Lines))
	}
	if len(result.Skipped) != 2 {
		t.Fatalf("expected 2 skipped lines, got %d", len(result.Skipped))
	}

	// total keeps the price the buyer saw, skipped lines included
	wantTotal := decimal.RequireFromString("74.98")
	if !result.Invoice.TotalPrice.Equal(wantTotal) {
		t.Fatalf("expected total %s, got %s", wantTotal, result.Invoice.TotalPrice)
	}

	var reloaded models.Book
	if err := conn.Where("id = ?", lowStock.ID).First(&reloaded).Error; err != nil {
		t.Fatalf("reload book: %v", err)
	}
	if reloaded.Stock != 1 {
		t.Fatalf("skipped line must leave stock unchanged, got %d", reloaded.Stock)
	}
}

func TestCheckoutMarksUserCartConverted(t *testing.T) {
	conn := openTestDB(t)
	store := newTestStore(t)
	svc := newTestCheckoutService(t, conn, store)
	ctx := context.Background()

	book := createTestBook(t, conn, "Dune", "9.99", 5)

	user := &models.User{
		ID:           uuid.New(),
		Username:     "checkout-user-" + uuid.NewString()[:8],
		Email:        uuid.NewString()[:8] + "@example.com",
		PasswordHash: "x",
		Provider:     enums.ProviderLocal,
		IsActive:     true,
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() {
		conn.Where("id = ?", user.ID).Delete(&models.User{})
	})

	sessionID := cart.NewSessionID()
	seedSessionCart(t, store, sessionID,
		cart.Item{BookID: book.ID, Title: book.Title, UnitPrice: book.Price, Quantity: 1},
	)

	persisted := cart.New()
	if err := persisted.AddItem(cart.Item{BookID: book.ID, Title: book.Title, UnitPrice: book.Price, Quantity: 1}); err != nil {
		t.Fatalf("add item: %v", err)
	}
	record, err := cart.NewRepository(conn).ReplaceForUser(ctx, user.ID, persisted)
	if err != nil {
		t.Fatalf("persist cart: %v", err)
	}
	t.Cleanup(func() {
		conn.Where("cart_id = ?", record.ID).Delete(&models.CartItem{})
		conn.Where("id = ?", record.ID).Delete(&models.CartRecord{})
	})

	result, err := svc.Checkout(ctx, sessionID, &user.ID)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	cleanupInvoice(t, conn, result.Invoice.ID)

	var reloaded models.CartRecord
	if err := conn.Where("id = ?", record.ID).First(&reloaded).Error; err != nil {
		t.Fatalf("reload cart record: %v", err)
	}
	if reloaded.Status != enums.CartStatusConverted {
		t.Fatalf("expected converted cart record, got %s", reloaded.Status)
	}
	if result.Invoice.UserID == nil || *result.Invoice.UserID != user.ID {
		t.Fatal("invoice should be attributed to the user")
	}
}
