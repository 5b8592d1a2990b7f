package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pageturn/bookstore-backend/pkg/db/models"
)

// Checkout outcomes, reported as metric labels and in the response.
const (
	OutcomeCompleted = "completed"
	OutcomePartial   = "partial"
	OutcomeEmpty     = "empty"
)

// LineResponse is one purchased line on an invoice.
type LineResponse struct {
	BookID   uuid.UUID `json:"book_id"`
	Quantity int       `json:"quantity"`
}

// InvoiceResponse is the API shape of a persisted invoice.
type InvoiceResponse struct {
	ID         uuid.UUID       `json:"id"`
	UserID     *uuid.UUID      `json:"user_id,omitempty"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Lines      []LineResponse  `json:"lines"`
	CreatedAt  time.Time       `json:"created_at"`
}

// SkippedLine reports a cart line that could not be fulfilled.
type SkippedLine struct {
	BookID   uuid.UUID `json:"book_id"`
	Quantity int       `json:"quantity"`
	Reason   string    `json:"reason"`
}

// Result is the outcome of a checkout attempt. Invoice is nil when the cart
// was empty.
type Result struct {
	Outcome string           `json:"outcome"`
	Invoice *InvoiceResponse `json:"invoice,omitempty"`
	Skipped []SkippedLine    `json:"skipped,omitempty"`
}

// FromInvoice maps a persisted invoice to its response shape.
func FromInvoice(invoice *models.Invoice) *InvoiceResponse {
	lines := make([]LineResponse, 0, len(invoice.Lines))
	for _, line := range invoice.Lines {
		lines = append(lines, LineResponse{BookID: line.BookID, Quantity: line.Quantity})
	}
	return &InvoiceResponse{
		ID:         invoice.ID,
		UserID:     invoice.UserID,
		TotalPrice: invoice.TotalPrice,
		Lines:      lines,
		CreatedAt:  invoice.CreatedAt,
	}
}
