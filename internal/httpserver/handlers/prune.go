package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/socialhub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/socialhub/internal/logger"
)

type pruneResponse struct {
	OK      bool   `json:"ok"`
	Details string `json:"details"`
}

// Prune asks the notification pruner to run now. A run already queued
// answers 429.
func Prune(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.PruneTrigger == nil {
			writeFailure(w, d, http.StatusServiceUnavailable, "pruner disabled")
			return
		}

		select {
		case d.PruneTrigger <- struct{}{}:
			d.Logger.Info("manual notification prune triggered", logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, pruneResponse{OK: true, Details: "prune triggered"})
		default:
			d.Logger.Warn("notification prune already pending", logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusTooManyRequests, pruneResponse{OK: false, Details: "prune already pending"})
		}
	}
}

// Metrics serves the prometheus registry.
func Metrics(d deps.Deps) http.HandlerFunc {
	if d.Metrics == nil {
		return func(w http.ResponseWriter, r *http.Request) {
			writeFailure(w, d, http.StatusNotFound, "metrics disabled")
		}
	}
	return d.Metrics.Handler().ServeHTTP
}
