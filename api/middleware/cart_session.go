package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pageturn/bookstore-backend/pkg/logger"
)

// CartSessionHeader carries the opaque shopping-session identifier. The
// middleware mints one for first-time visitors and always echoes it back so
// the client can persist it.
const CartSessionHeader = "X-Cart-Session"

func CartSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(CartSessionHeader))
			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			w.Header().Set(CartSessionHeader, sessionID)

			ctx := WithCartSession(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
