package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pageturn/bookstore-backend/api/middleware"
	"github.com/pageturn/bookstore-backend/api/responses"
	checkoutsvc "github.com/pageturn/bookstore-backend/internal/checkout"
	pkgerrors "github.com/pageturn/bookstore-backend/pkg/errors"
	"github.com/pageturn/bookstore-backend/pkg/logger"
)

// Checkout converts the session cart into an invoice. Works for guests; when
// the caller is authenticated the invoice is attributed to them and their
// persisted cart is marked converted.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		sessionID, err := cartSessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var userID *uuid.UUID
		if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
				return
			}
			userID = &parsed
		}

		result, err := svc.Checkout(r.Context(), sessionID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusCreated
		if result.Outcome == checkoutsvc.OutcomeEmpty {
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}
