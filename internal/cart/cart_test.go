package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func item(id uuid.UUID, title string, price string, qty int) Item {
	return Item{
		BookID:    id,
		Title:     title,
		UnitPrice: decimal.RequireFromString(price),
		Quantity:  qty,
	}
}

func TestAddItemMergesQuantity(t *testing.T) {
	c := New()
	dune := uuid.New()
	foundation := uuid.New()

	if err := c.AddItem(item(dune, "Dune", "10.00", 2)); err != nil {
		t.Fatalf("add dune: %v", err)
	}
	if err := c.AddItem(item(foundation, "Foundation", "8.00", 1)); err != nil {
		t.Fatalf("add foundation: %v", err)
	}
	if err := c.AddItem(item(dune, "Dune", "12.00", 3)); err != nil {
		t.Fatalf("re-add dune: %v", err)
	}

	if len(c.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(c.Items))
	}
	line, ok := c.Find(dune)
	if !ok {
		t.Fatal("dune line missing")
	}
	if line.Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", line.Quantity)
	}
	if !line.UnitPrice.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("unit price should keep first value, got %s", line.UnitPrice)
	}
	if c.Items[0].BookID != dune || c.Items[1].BookID != foundation {
		t.Fatal("insertion order not preserved")
	}

	if got := c.TotalQuantity(); got != 6 {
		t.Fatalf("expected total quantity 6, got %d", got)
	}
	if want := decimal.RequireFromString("58.00"); !c.TotalPrice().Equal(want) {
		t.Fatalf("expected total %s, got %s", want, c.TotalPrice())
	}
}

func TestAddItemValidation(t *testing.T) {
	c := New()
	if err := c.AddItem(item(uuid.Nil, "No ID", "1.00", 1)); err == nil {
		t.Fatal("expected error for missing book id")
	}
	if err := c.AddItem(item(uuid.New(), "Zero", "1.00", 0)); err == nil {
		t.Fatal("expected error for non-positive quantity")
	}
	if err := c.AddItem(item(uuid.New(), "Negative", "-1.00", 1)); err == nil {
		t.Fatal("expected error for negative price")
	}
	if !c.IsEmpty() {
		t.Fatal("failed adds must not mutate the cart")
	}
}

func TestRemoveItem(t *testing.T) {
	c := New()
	id := uuid.New()
	if err := c.AddItem(item(id, "Dune", "10.00", 1)); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := c.RemoveItem(uuid.Nil); err == nil {
		t.Fatal("expected error for nil book id")
	}
	if err := c.RemoveItem(uuid.New()); err != nil {
		t.Fatalf("removing absent book should be a no-op, got %v", err)
	}
	if err := c.RemoveItem(id); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !c.IsEmpty() {
		t.Fatal("expected empty cart after removal")
	}
	if err := c.RemoveItem(id); err != nil {
		t.Fatalf("second removal should be a no-op, got %v", err)
	}
}

func TestUpdateItem(t *testing.T) {
	c := New()
	id := uuid.New()
	if err := c.AddItem(item(id, "Dune", "10.00", 2)); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := c.UpdateItem(id, 7); err != nil {
		t.Fatalf("update: %v", err)
	}
	line, _ := c.Find(id)
	if line.Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", line.Quantity)
	}

	if err := c.UpdateItem(uuid.New(), 3); err != nil {
		t.Fatalf("updating absent book should be a no-op, got %v", err)
	}
	if len(c.Items) != 1 {
		t.Fatalf("no-op update must not add lines, got %d", len(c.Items))
	}

	if err := c.UpdateItem(id, 0); err != nil {
		t.Fatalf("update to zero: %v", err)
	}
	if !c.IsEmpty() {
		t.Fatal("zero quantity should remove the line")
	}
}

func TestTotalsOnEmptyCart(t *testing.T) {
	c := New()
	if c.TotalQuantity() != 0 {
		t.Fatal("empty cart quantity should be 0")
	}
	if !c.TotalPrice().Equal(decimal.Zero) {
		t.Fatal("empty cart total should be 0")
	}
}
