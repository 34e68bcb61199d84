package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/socialhub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/socialhub/internal/logger"
)

const probeTimeout = 2 * time.Second

type componentStatus struct {
	OK       bool   `json:"ok"`
	Required bool   `json:"required"`
	Error    string `json:"error,omitempty"`
}

type readyzResponse struct {
	Ready      bool                       `json:"ready"`
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Readyz runs every probe. A failing required probe answers 503; a failing
// optional one (the cache) only downgrades the mode.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := readyzResponse{
			Ready:      true,
			Mode:       "optimal",
			Components: make(map[string]componentStatus, len(d.Probes)),
		}

		for _, p := range d.Probes {
			ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
			err := p.Check(ctx)
			cancel()

			st := componentStatus{OK: err == nil, Required: p.Required}
			if err != nil {
				st.Error = err.Error()
				d.Logger.Warn("readiness probe failed", logger.String("component", p.Name), logger.Error(err))
				if p.Required {
					resp.Ready = false
				} else if resp.Mode == "optimal" {
					resp.Mode = "degraded"
				}
			}
			resp.Components[p.Name] = st
		}

		status := http.StatusOK
		if !resp.Ready {
			resp.Mode = "critical"
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}
