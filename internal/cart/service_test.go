package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stubStore struct {
	carts   map[string]*Cart
	saves   int
	deletes int
}

func newStubStore() *stubStore {
	return &stubStore{carts: make(map[string]*Cart)}
}

func (s *stubStore) Load(_ context.Context, sessionID string) (*Cart, error) {
	if cart, ok := s.carts[sessionID]; ok {
		copied := New()
		copied.Items = append(copied.Items, cart.Items...)
		return copied, nil
	}
	return New(), nil
}

func (s *stubStore) Save(_ context.Context, sessionID string, cart *Cart) error {
	s.saves++
	copied := New()
	copied.Items = append(copied.Items, cart.Items...)
	s.carts[sessionID] = copied
	return nil
}

func (s *stubStore) Delete(_ context.Context, sessionID string) error {
	s.deletes++
	delete(s.carts, sessionID)
	return nil
}

func newTestService(store *stubStore) *service {
	return &service{store: store}
}

func TestServiceGetBindsEmptyCart(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store)

	cart, err := svc.Get(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatal("expected empty cart")
	}
	if store.saves != 1 {
		t.Fatalf("first access should bind the cart, saves=%d", store.saves)
	}
}

func TestServiceAddUpdateRemove(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store)
	ctx := context.Background()
	bookID := uuid.New()

	cart, err := svc.AddItem(ctx, "sess-1", Item{
		BookID:    bookID,
		Title:     "Dune",
		UnitPrice: decimal.RequireFromString("10.00"),
		Quantity:  2,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if cart.TotalQuantity() != 2 {
		t.Fatalf("expected quantity 2, got %d", cart.TotalQuantity())
	}

	cart, err = svc.UpdateItem(ctx, "sess-1", bookID, 5)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if cart.TotalQuantity() != 5 {
		t.Fatalf("expected quantity 5, got %d", cart.TotalQuantity())
	}

	cart, err = svc.RemoveItem(ctx, "sess-1", bookID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatal("expected empty cart after remove")
	}

	stored, _ := store.Load(ctx, "sess-1")
	if !stored.IsEmpty() {
		t.Fatal("mutations must be written back to the store")
	}
}

func TestServiceAddInvalidItemDoesNotSave(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store)

	if _, err := svc.AddItem(context.Background(), "sess-1", Item{Quantity: 1}); err == nil {
		t.Fatal("expected validation error")
	}
	if store.saves != 0 {
		t.Fatal("failed mutation must not be persisted")
	}
}

func TestServiceClear(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "sess-1", Item{
		BookID:    uuid.New(),
		Title:     "Foundation",
		UnitPrice: decimal.RequireFromString("8.00"),
		Quantity:  1,
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.Clear(ctx, "sess-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if store.deletes != 1 {
		t.Fatal("clear should delete the session key")
	}
}
