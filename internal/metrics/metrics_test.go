package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInstrumentUsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Instrument)
	r.Get("/profile/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	for _, path := range []string{"/profile/1", "/profile/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.CollectAndCount(m.RequestDuration); got != 1 {
		t.Errorf("series count = %d, want 1", got)
	}
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.AuthRejections.WithLabelValues("missing_token").Inc()
	m.BookmarkOperations.WithLabelValues("add", "created").Add(2)

	if got := testutil.ToFloat64(m.BookmarkOperations.WithLabelValues("add", "created")); got != 2 {
		t.Errorf("bookmark counter = %v, want 2", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`socialhub_auth_rejections_total{reason="missing_token"} 1`,
		`socialhub_bookmark_operations_total{op="add",outcome="created"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNewIsIndependent(t *testing.T) {
	a, b := New(), New()
	a.Registrations.Inc()
	if got := testutil.ToFloat64(b.Registrations); got != 0 {
		t.Errorf("second instance registrations = %v, want 0", got)
	}
}

func TestNilMetricsHelpers(t *testing.T) {
	var m *Metrics
	m.AuthRejected("missing_token")
	m.Bookmark("add", "created")
	m.Login("ok")
	m.Registered()
	m.Pruned(3)
}
