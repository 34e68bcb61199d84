package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/socialhub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/socialhub/internal/httpserver/mw"
)

type Middleware = func(http.Handler) http.Handler

// Route is one entry of the route table.
type Route struct {
	Method  string
	Pattern string
	Access  mw.Access
	Use     []Middleware // applied after authentication
	Handler func(d deps.Deps) http.HandlerFunc
}

// RegisterAll mounts every route of Table. Authentication is always the
// first per-route middleware, so no handler or route middleware runs before
// the access policy is enforced.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, rt := range Table(d) {
		chain := make([]Middleware, 0, len(rt.Use)+1)
		chain = append(chain, mw.Authenticate(d.Codec, rt.Access, d.Metrics, d.Logger))
		chain = append(chain, rt.Use...)
		r.With(chain...).Method(rt.Method, rt.Pattern, rt.Handler(d))
	}
}
