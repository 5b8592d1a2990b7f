package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/pageturn/bookstore-backend/pkg/errors"
)

// Item is one cart line. UnitPrice is the price captured when the book was
// first added; later adds of the same book merge quantity only.
type Item struct {
	BookID    uuid.UUID       `json:"book_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns unit price times quantity for the line.
func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart holds the lines of a shopping session. Lines are unique per book id
// and keep their insertion order.
type Cart struct {
	Items []Item `json:"items"`
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{Items: []Item{}}
}

// AddItem merges the item into the cart. Adding a book already present
// increases its quantity and keeps the original title and unit price.
func (c *Cart) AddItem(item Item) error {
	if item.BookID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart item requires a book id")
	}
	if item.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart item quantity must be positive")
	}
	if item.UnitPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart item price cannot be negative")
	}

	for i := range c.Items {
		if c.Items[i].BookID == item.BookID {
			c.Items[i].Quantity += item.Quantity
			return nil
		}
	}
	c.Items = append(c.Items, item)
	return nil
}

// RemoveItem deletes the line for the given book. Removing a book that is
// not in the cart is a no-op.
func (c *Cart) RemoveItem(bookID uuid.UUID) error {
	if bookID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "book id is required")
	}
	for i := range c.Items {
		if c.Items[i].BookID == bookID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
	}
	return nil
}

// UpdateItem sets the quantity for an existing line. A quantity of zero or
// less removes the line; updating a book not in the cart is a no-op.
func (c *Cart) UpdateItem(bookID uuid.UUID, quantity int) error {
	if bookID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "book id is required")
	}
	if quantity <= 0 {
		return c.RemoveItem(bookID)
	}
	for i := range c.Items {
		if c.Items[i].BookID == bookID {
			c.Items[i].Quantity = quantity
			return nil
		}
	}
	return nil
}

// Find returns the line for the given book, if present.
func (c *Cart) Find(bookID uuid.UUID) (Item, bool) {
	for _, item := range c.Items {
		if item.BookID == bookID {
			return item, true
		}
	}
	return Item{}, false
}

// TotalQuantity sums the quantities across all lines.
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// TotalPrice sums unit price times quantity across all lines.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
