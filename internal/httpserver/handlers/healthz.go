package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/socialhub/internal/httpserver/deps"
)

type buildInfo struct {
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
}

type livenessResponse struct {
	OK        bool      `json:"ok"`
	StartedAt time.Time `json:"started_at"`
	Uptime    string    `json:"uptime"`
	Build     buildInfo `json:"build"`
}

// Healthz answers as long as the process serves HTTP; database and cache
// state belong to /readyz.
func Healthz(d deps.Deps) http.HandlerFunc {
	build := buildInfo{Version: d.Version, Commit: d.Commit, BuildDate: d.BuildDate, GoVersion: d.GoVersion}
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, livenessResponse{
			OK:        true,
			StartedAt: d.StartTime.UTC(),
			Uptime:    d.Now().Sub(d.StartTime).Truncate(time.Second).String(),
			Build:     build,
		})
	}
}
