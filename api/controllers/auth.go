package controllers

import (
	"net/http"
	"strings"

	"github.com/pageturn/bookstore-backend/api/middleware"
	"github.com/pageturn/bookstore-backend/api/responses"
	"github.com/pageturn/bookstore-backend/api/validators"
	"github.com/pageturn/bookstore-backend/internal/auth"
	cartsvc "github.com/pageturn/bookstore-backend/internal/cart"
	pkgerrors "github.com/pageturn/bookstore-backend/pkg/errors"
	"github.com/pageturn/bookstore-backend/pkg/logger"
)

func parseBearerToken(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	token := raw
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return token, nil
}

// AuthLogin authenticates local credentials. When a cart session accompanies
// the call, the user's persisted cart replaces the session cart so they pick
// up where they left off.
func AuthLogin(svc auth.Service, carts cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if carts != nil {
			if sessionID := middleware.CartSessionFromContext(r.Context()); sessionID != "" {
				if _, err := carts.LoadForUser(r.Context(), sessionID, result.User.ID); err != nil && logg != nil {
					logg.Error(r.Context(), "failed to restore persisted cart on login", err)
				}
			}
		}

		responses.WriteSuccess(w, result)
	}
}

// AuthRegister creates a local account and signs the new user straight in.
func AuthRegister(reg auth.RegisterService, svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reg == nil || svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := reg.Register(r.Context(), body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), auth.LoginRequest{
			Username: body.Username,
			Password: body.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// AuthLogout snapshots the session cart for the departing user, then revokes
// their refresh session.
func AuthLogout(svc auth.Service, carts cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		token, err := parseBearerToken(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, err := svc.Logout(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if carts != nil {
			if sessionID := middleware.CartSessionFromContext(r.Context()); sessionID != "" {
				if err := carts.SaveForUser(r.Context(), sessionID, userID); err != nil && logg != nil {
					logg.Error(r.Context(), "failed to persist cart on logout", err)
				}
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

// AuthRefresh rotates the refresh token and issues a new access token.
func AuthRefresh(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.RefreshRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Refresh(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type oauthProvisionResponse struct {
	Provisioned bool `json:"provisioned"`
	User        any  `json:"user,omitempty"`
}

// AuthOAuth provisions an account from a verified external profile.
// Provisioning failures are logged and swallowed so the upstream login flow
// never breaks on our side.
func AuthOAuth(svc auth.OAuthService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.OAuthProfile
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.ProvisionUser(r.Context(), body)
		if err != nil {
			if logg != nil {
				logg.Error(r.Context(), "oauth provisioning failed", err)
			}
			responses.WriteSuccess(w, oauthProvisionResponse{Provisioned: false})
			return
		}
		if user == nil {
			responses.WriteSuccess(w, oauthProvisionResponse{Provisioned: false})
			return
		}
		responses.WriteSuccess(w, oauthProvisionResponse{Provisioned: true, User: user})
	}
}
