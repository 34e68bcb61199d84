package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/socialhub/internal/logger"
	"github.com/MrSnakeDoc/socialhub/internal/utils"
)

// LoopbackOnly is the allow-list used by operator routes when no CIDRs are
// configured.
var LoopbackOnly = []string{"127.0.0.0/8", "::1"}

// AllowOnlyCIDRS admits only clients whose IP matches the configured
// allow-list. When configured is empty the fallback list applies instead;
// a route that passes a nil fallback stays open until an allow-list is set.
func AllowOnlyCIDRS(configured, fallback []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	source := "configured"
	m := utils.NewIPMatcher(configured)
	if m.IsEmpty() {
		source = "fallback"
		m = utils.NewIPMatcher(fallback)
	}
	if m.IsEmpty() {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if m.Allow(ip) {
				next.ServeHTTP(w, r)
				return
			}
			log.Warn("operator route refused",
				logger.String("ip", ip),
				logger.String("path", r.URL.Path),
				logger.String("allow_list", source))
			reject(w, http.StatusForbidden, "forbidden")
		})
	}
}
