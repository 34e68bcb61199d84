package mw

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/socialhub/internal/auth"
	"github.com/MrSnakeDoc/socialhub/internal/logger"
	"github.com/MrSnakeDoc/socialhub/internal/utils"
)

// statusWriter captures status code and bytes written.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Log writes one access log line per request. The identity is read from the
// request the handler saw, so authenticated calls carry profile_id.
func Log(log logger.Logger, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w}
			seen := &seenRequest{}

			next.ServeHTTP(ww, r.WithContext(withSeen(r.Context(), seen)))

			status := ww.status
			if status == 0 {
				status = http.StatusOK
			}
			fields := []logger.Field{
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.Int("status", status),
				logger.Int("bytes", ww.bytes),
				logger.Duration("duration", time.Since(start)),
				logger.String("remote_ip", utils.ClientIP(r, trustProxy)),
				logger.String("user_agent", r.UserAgent()),
				logger.String("request_id", middleware.GetReqID(r.Context())),
			}
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				fields = append(fields, logger.String("route", rc.RoutePattern()))
			}
			if seen.identified {
				fields = append(fields, logger.Uint("profile_id", seen.profileID))
			}

			switch {
			case status >= 500:
				log.Error("http_request", fields...)
			case status >= 400:
				log.Warn("http_request", fields...)
			default:
				log.Info("http_request", fields...)
			}
		})
	}
}

// seenRequest lets Authenticate report the caller back to Log, which runs
// outside the route and never sees the enriched context.
type seenRequest struct {
	identified bool
	profileID  uint
}

type seenKey struct{}

func withSeen(ctx context.Context, s *seenRequest) context.Context {
	return context.WithValue(ctx, seenKey{}, s)
}

func markIdentity(r *http.Request, id auth.Identity) {
	if s, ok := r.Context().Value(seenKey{}).(*seenRequest); ok {
		s.identified = true
		s.profileID = id.ID
	}
}
