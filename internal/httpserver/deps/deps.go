package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/socialhub/internal/auth"
	"github.com/MrSnakeDoc/socialhub/internal/logger"
	"github.com/MrSnakeDoc/socialhub/internal/metrics"
	"github.com/MrSnakeDoc/socialhub/internal/service"
)

// Probe is one dependency checked by /readyz.
type Probe struct {
	Name     string
	Required bool // a failing optional probe degrades but does not fail readiness
	Check    func(ctx context.Context) error
}

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed on admin endpoints
	AllowedCIDRS []string         // IPs allowed on readyz, metrics and admin endpoints
	TrustProxy   bool             // true if running behind a trusted reverse proxy

	Codec         *auth.Codec
	Profiles      *service.ProfileService
	Bookmarks     *service.BookmarkService
	Notifications *service.NotificationService
	Metrics       *metrics.Metrics // nil disables /metrics and request instrumentation

	Probes       []Probe
	PruneTrigger chan struct{} // manual notification prune (nil disables /admin/prune)

	RateLimitBurst  int // requests allowed at once on login/register per client IP
	RateLimitPerMin int // refill rate of the login/register bucket
}

// Now returns the deps clock.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
