package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/socialhub/internal/auth"
	"github.com/MrSnakeDoc/socialhub/internal/logger"
	"github.com/MrSnakeDoc/socialhub/internal/metrics"
)

// Access is the authentication policy of a route.
type Access int

const (
	// Public routes never look at the token, even an invalid one.
	Public Access = iota
	// Protected routes require a valid token in the Authorization header.
	Protected
)

func (a Access) String() string {
	if a == Protected {
		return "protected"
	}
	return "public"
}

// Authenticate enforces access for one route. On Protected routes a missing
// or invalid token ends the request with 401 before the handler runs; a valid
// one attaches the caller identity to the request context.
func Authenticate(codec *auth.Codec, access Access, m *metrics.Metrics, log logger.Logger) func(http.Handler) http.Handler {
	if access == Public {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := auth.TokenFromHeader(r.Header.Get(auth.HeaderName))
			if !ok {
				m.AuthRejected("missing_token")
				unauthorized(w, "missing token")
				return
			}

			id, err := codec.Verify(token)
			if err != nil {
				m.AuthRejected("invalid_token")
				log.Debug("token rejected", logger.String("path", r.URL.Path), logger.Error(err))
				unauthorized(w, "invalid token")
				return
			}

			markIdentity(r, id)
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

func unauthorized(w http.ResponseWriter, details string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="socialhub"`)
	reject(w, http.StatusUnauthorized, details)
}
