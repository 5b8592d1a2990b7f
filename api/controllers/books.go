package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pageturn/bookstore-backend/api/responses"
	"github.com/pageturn/bookstore-backend/api/validators"
	booksvc "github.com/pageturn/bookstore-backend/internal/books"
	pkgerrors "github.com/pageturn/bookstore-backend/pkg/errors"
	"github.com/pageturn/bookstore-backend/pkg/logger"
	"github.com/pageturn/bookstore-backend/pkg/pagination"
	"github.com/pageturn/bookstore-backend/pkg/types"
)

// BookList serves the public catalog with search, filters, and cursor pagination.
func BookList(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "book service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		categoryID, err := validators.ParseQueryUUID(r, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		priceMin, err := validators.ParseQueryDecimal(r, "price_min")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		priceMax, err := validators.ParseQueryDecimal(r, "price_max")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		availableOnly, err := validators.ParseQueryBool(r, "available")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(),
			pagination.Params{Limit: limit, Cursor: r.URL.Query().Get("cursor")},
			booksvc.ListFilters{
				Query:         validators.SanitizeString(r.URL.Query().Get("q"), 200),
				CategoryID:    categoryID,
				PriceMin:      priceMin,
				PriceMax:      priceMax,
				AvailableOnly: availableOnly,
			})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page := types.Page{Items: result.Books}
		if result.NextCursor != "" {
			page.NextCursor = &result.NextCursor
		}
		responses.WriteSuccess(w, page)
	}
}

// BookGet serves a single catalog entry.
func BookGet(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "book service unavailable"))
			return
		}

		id, err := parsePathUUID(r, "bookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		book, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, book)
	}
}

// BookCreate handles catalog additions for admins.
func BookCreate(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "book service unavailable"))
			return
		}

		var body booksvc.CreateBookRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		book, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, book)
	}
}

// BookUpdate applies partial updates to a catalog entry.
func BookUpdate(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "book service unavailable"))
			return
		}

		id, err := parsePathUUID(r, "bookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body booksvc.UpdateBookRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		book, err := svc.Update(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, book)
	}
}

// BookDelete removes a catalog entry.
func BookDelete(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "book service unavailable"))
			return
		}

		id, err := parsePathUUID(r, "bookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type stockAdjustmentRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// BookStockIncrease restocks a catalog entry.
func BookStockIncrease(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return adjustStock(svc, logg, func(svc booksvc.Service, r *http.Request, id uuid.UUID, qty int) (*booksvc.BookResponse, error) {
		return svc.IncreaseStock(r.Context(), id, qty)
	})
}

// BookStockDecrease reduces sellable stock, refusing to go below zero.
func BookStockDecrease(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return adjustStock(svc, logg, func(svc booksvc.Service, r *http.Request, id uuid.UUID, qty int) (*booksvc.BookResponse, error) {
		return svc.DecreaseStock(r.Context(), id, qty)
	})
}

func adjustStock(svc booksvc.Service, logg *logger.Logger, apply func(booksvc.Service, *http.Request, uuid.UUID, int) (*booksvc.BookResponse, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "book service unavailable"))
			return
		}

		id, err := parsePathUUID(r, "bookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body stockAdjustmentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		book, err := apply(svc, r, id, body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, book)
	}
}

func parsePathUUID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid identifier").WithDetails(map[string]any{"field": param})
	}
	return id, nil
}
