package middleware

import (
	"net/http"

	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Identity resolves the caller from the X-User-ID header set by the
// authenticating gateway and puts it on the request context. Requests
// without a valid id are rejected before reaching the handlers.
func Identity(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("X-User-ID")
			if raw == "" {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			userID, err := uuid.Parse(raw)
			if err != nil {
				log.Warn("Invalid X-User-ID header", zap.String("value", raw))
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			ctx := utils.SetUserContext(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
