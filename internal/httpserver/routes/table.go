package routes

import (
	"net/http"

	"github.com/MrSnakeDoc/socialhub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/socialhub/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/socialhub/internal/httpserver/mw"
)

// Table lists every route with its access policy. It is the one place to
// audit which operations are reachable without a token.
func Table(d deps.Deps) []Route {
	credentials := mw.RateLimit(mw.RateLimitConfig{
		Burst:        d.RateLimitBurst,
		RefillPerMin: d.RateLimitPerMin,
		MaxEntries:   10_000,
		TrustProxy:   d.TrustProxy,
		Now:          d.TimeNow,
	}, d.Logger)
	// operator routes fall back to loopback; readiness stays reachable by
	// orchestrator probes until an allow-list is configured.
	operatorOnly := mw.AllowOnlyCIDRS(d.AllowedCIDRS, mw.LoopbackOnly, d.TrustProxy, d.Logger)
	readinessOnly := mw.AllowOnlyCIDRS(d.AllowedCIDRS, nil, d.TrustProxy, d.Logger)
	adminHost := mw.EnforceHost(d.AllowedHosts, d.Logger)

	return []Route{
		// profiles
		{Method: http.MethodPost, Pattern: "/profile/login", Access: mw.Public, Use: []Middleware{credentials}, Handler: handlers.Login},
		{Method: http.MethodPost, Pattern: "/profile/register", Access: mw.Public, Use: []Middleware{credentials}, Handler: handlers.Register},
		{Method: http.MethodGet, Pattern: "/profile/{id}", Access: mw.Public, Handler: handlers.GetProfile},
		{Method: http.MethodPut, Pattern: "/profile", Access: mw.Protected, Handler: handlers.UpdateProfile},
		{Method: http.MethodPost, Pattern: "/profile/follow", Access: mw.Protected, Handler: handlers.Follow},
		{Method: http.MethodPost, Pattern: "/profile/unfollow", Access: mw.Protected, Handler: handlers.Unfollow},
		{Method: http.MethodGet, Pattern: "/profile/page/{n}", Access: mw.Public, Handler: handlers.ProfilePage},
		{Method: http.MethodGet, Pattern: "/profile/search/{query}", Access: mw.Public, Handler: handlers.SearchProfiles},

		// bookmarks
		{Method: http.MethodPost, Pattern: "/bookmark", Access: mw.Protected, Handler: handlers.AddBookmark},
		{Method: http.MethodDelete, Pattern: "/bookmark", Access: mw.Protected, Handler: handlers.RemoveBookmark},
		{Method: http.MethodGet, Pattern: "/bookmark", Access: mw.Protected, Handler: handlers.ListBookmarks},
		{Method: http.MethodGet, Pattern: "/bookmark/has", Access: mw.Protected, Handler: handlers.HasBookmark},
		{Method: http.MethodGet, Pattern: "/bookmark/count/{postID}", Access: mw.Protected, Handler: handlers.CountBookmarks},

		// notifications
		{Method: http.MethodPost, Pattern: "/notification", Access: mw.Protected, Handler: handlers.CreateNotification},
		{Method: http.MethodGet, Pattern: "/notification", Access: mw.Protected, Handler: handlers.MyNotifications},
		{Method: http.MethodGet, Pattern: "/notification/all", Access: mw.Protected, Use: []Middleware{operatorOnly}, Handler: handlers.AllNotifications},
		{Method: http.MethodGet, Pattern: "/notification/{id}", Access: mw.Protected, Handler: handlers.GetNotification},
		{Method: http.MethodPut, Pattern: "/notification/{id}", Access: mw.Protected, Handler: handlers.UpdateNotification},

		// operations
		{Method: http.MethodGet, Pattern: "/healthz", Access: mw.Public, Handler: handlers.Healthz},
		{Method: http.MethodGet, Pattern: "/readyz", Access: mw.Public, Use: []Middleware{readinessOnly}, Handler: handlers.Readyz},
		{Method: http.MethodGet, Pattern: "/metrics", Access: mw.Public, Use: []Middleware{operatorOnly}, Handler: handlers.Metrics},
		{Method: http.MethodPost, Pattern: "/admin/prune", Access: mw.Public, Use: []Middleware{operatorOnly, adminHost}, Handler: handlers.Prune},
	}
}
