package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/pageturn/bookstore-backend/internal/books"
	"github.com/pageturn/bookstore-backend/internal/cart"
	"github.com/pageturn/bookstore-backend/pkg/db"
	"github.com/pageturn/bookstore-backend/pkg/db/models"
	pkgerrors "github.com/pageturn/bookstore-backend/pkg/errors"
	"github.com/pageturn/bookstore-backend/pkg/logger"
	"github.com/pageturn/bookstore-backend/pkg/metrics"
)

// Service turns a session cart into a persisted invoice.
type Service interface {
	Checkout(ctx context.Context, sessionID string, userID *uuid.UUID) (*Result, error)
}

type sessionCartStore interface {
	Load(ctx context.Context, sessionID string) (*cart.Cart, error)
	Delete(ctx context.Context, sessionID string) error
}

type service struct {
	store   sessionCartStore
	db      *db.Client
	logg    *logger.Logger
	metrics *metrics.HTTPMetrics
}

// ServiceParams bundles the dependencies required to build a checkout service.
type ServiceParams struct {
	Store   sessionCartStore
	DB      *db.Client
	Logger  *logger.Logger
	Metrics *metrics.HTTPMetrics
}

// NewService constructs a checkout service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		store:   params.Store,
		db:      params.DB,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

// Checkout converts the session cart into an invoice in one transaction.
// Lines whose book no longer exists, or whose quantity exceeds the remaining
// stock, are skipped with a warning rather than aborting the purchase. The
// invoice keeps the cart's precomputed total even when lines were skipped,
// matching what the buyer saw at checkout time. The session cart is cleared
// regardless of skipped lines.
func (s *service) Checkout(ctx context.Context, sessionID string, userID *uuid.UUID) (*Result, error) {
	sessionCart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sessionCart.IsEmpty() {
		s.logg.Info(s.logg.WithSessionID(ctx, sessionID), "checkout skipped, cart is empty")
		s.metrics.IncCheckout(OutcomeEmpty)
		return &Result{Outcome: OutcomeEmpty}, nil
	}

	var (
		invoice *models.Invoice
		skipped []SkippedLine
		skipErr error
	)
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		skipped = nil
		skipErr = nil

		repo := NewRepository(tx)
		invoice = &models.Invoice{
			ID:         uuid.New(),
			UserID:     userID,
			TotalPrice: sessionCart.TotalPrice(),
		}
		if err := repo.CreateInvoice(ctx, invoice); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create invoice")
		}

		lines := make([]models.InvoiceLine, 0, len(sessionCart.Items))
		for _, item := range sessionCart.Items {
			if _, err := books.AdjustStock(ctx, tx, item.BookID, -item.Quantity); err != nil {
				coded := pkgerrors.As(err)
				if coded != nil && (coded.Code() == pkgerrors.CodeNotFound || coded.Code() == pkgerrors.CodeInsufficientStock) {
					skipped = append(skipped, SkippedLine{
						BookID:   item.BookID,
						Quantity: item.Quantity,
						Reason:   coded.Message(),
					})
					skipErr = multierr.Append(skipErr, fmt.Errorf("book %s: %s", item.BookID, coded.Message()))
					continue
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
			}
			lines = append(lines, models.InvoiceLine{
				ID:        uuid.New(),
				InvoiceID: invoice.ID,
				BookID:    item.BookID,
				Quantity:  item.Quantity,
			})
		}
		if err := repo.CreateLines(ctx, lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create invoice lines")
		}
		invoice.Lines = lines

		if userID != nil {
			if err := cart.NewRepository(tx).MarkConverted(ctx, *userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark cart converted")
			}
		}
		return nil
	})
	if err != nil {
		s.metrics.IncCheckout("failed")
		return nil, err
	}

	logCtx := s.logg.WithFields(s.logg.WithSessionID(ctx, sessionID), map[string]any{
		"invoice_id":  invoice.ID,
		"total_price": invoice.TotalPrice,
		"line_count":  len(invoice.Lines),
	})
	outcome := OutcomeCompleted
	if skipErr != nil {
		outcome = OutcomePartial
		warnCtx := s.logg.WithFields(logCtx, map[string]any{
			"skipped_count": len(skipped),
			"skip_reasons":  skipErr.Error(),
		})
		s.logg.Warn(warnCtx, "checkout completed with skipped lines")
	} else {
		s.logg.Info(logCtx, "checkout completed")
	}
	s.metrics.IncCheckout(outcome)

	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.logg.Error(logCtx, "failed to clear session cart after checkout", err)
	}

	return &Result{
		Outcome: outcome,
		Invoice: FromInvoice(invoice),
		Skipped: skipped,
	}, nil
}
