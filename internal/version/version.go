package version

import (
	"fmt"
	"runtime"
	"time"
)

// Set at build time with -ldflags "-X github.com/MrSnakeDoc/socialhub/internal/version.Version=..."
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = time.Now().Format(time.RFC3339)
	GoVersion = runtime.Version()
)

// String returns a one-line build description for startup logs.
func String() string {
	return fmt.Sprintf("socialhub %s (commit=%s, built=%s, go=%s)", Version, Commit, BuildDate, GoVersion)
}
