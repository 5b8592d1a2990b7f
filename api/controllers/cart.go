package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pageturn/bookstore-backend/api/middleware"
	"github.com/pageturn/bookstore-backend/api/responses"
	"github.com/pageturn/bookstore-backend/api/validators"
	booksvc "github.com/pageturn/bookstore-backend/internal/books"
	cartsvc "github.com/pageturn/bookstore-backend/internal/cart"
	pkgerrors "github.com/pageturn/bookstore-backend/pkg/errors"
	"github.com/pageturn/bookstore-backend/pkg/logger"
)

type addCartItemRequest struct {
	BookID   uuid.UUID `json:"book_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,gt=0"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

func cartSessionID(r *http.Request) (string, error) {
	sessionID := middleware.CartSessionFromContext(r.Context())
	if sessionID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cart session missing")
	}
	return sessionID, nil
}

// CartGet returns the session cart, binding an empty one on first access.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, err := cartSessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.Get(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

// CartAddItem resolves the book against the live catalog and merges it into
// the session cart. The catalog price at add time sticks to the line.
func CartAddItem(svc cartsvc.Service, books booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || books == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, err := cartSessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body addCartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		book, err := books.Get(r.Context(), body.BookID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		available, err := books.IsInStock(r.Context(), body.BookID, body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !available {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock for this title"))
			return
		}

		cart, err := svc.AddItem(r.Context(), sessionID, cartsvc.Item{
			BookID:    book.ID,
			Title:     book.Title,
			UnitPrice: book.Price,
			Quantity:  body.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

// CartUpdateItem sets a line's quantity; zero removes the line.
func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, err := cartSessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bookID, err := parsePathUUID(r, "bookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.UpdateItem(r.Context(), sessionID, bookID, body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

// CartRemoveItem drops a line from the session cart; unknown lines are a no-op.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, err := cartSessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bookID, err := parsePathUUID(r, "bookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.RemoveItem(r.Context(), sessionID, bookID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

// CartClear empties the session cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, err := cartSessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Clear(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}
