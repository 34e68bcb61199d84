package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrSnakeDoc/socialhub/internal/auth"
	"github.com/MrSnakeDoc/socialhub/internal/logger"
)

func TestMatchHost(t *testing.T) {
	tests := []struct {
		host    string
		pattern string
		want    bool
	}{
		{"api.example.com", "api.example.com", true},
		{"a.example.com", "*.example.com", true},
		{"a.b.example.com", "*.example.com", true},
		{"example.com", "*.example.com", false},
		{"evilexample.com", "*.example.com", false},
		{"other.com", "api.example.com", false},
	}

	for _, tt := range tests {
		if got := matchHost(tt.host, tt.pattern); got != tt.want {
			t.Errorf("matchHost(%q, %q) = %v, want %v", tt.host, tt.pattern, got, tt.want)
		}
	}
}

func TestEnforceHost(t *testing.T) {
	h := EnforceHost([]string{"Admin.Example.com"}, logger.NewNop())(okHandler())

	tests := []struct {
		host string
		want int
	}{
		{"admin.example.com", http.StatusOK},
		{"admin.example.com:8443", http.StatusOK},
		{"public.example.com", http.StatusForbidden},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/admin/prune", nil)
		req.Host = tt.host
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("Host %q: status = %d, want %d", tt.host, rec.Code, tt.want)
		}
	}
}

func TestAllowOnlyCIDRS(t *testing.T) {
	tests := []struct {
		name       string
		configured []string
		fallback   []string
		remote     string
		want       int
	}{
		{name: "fallback admits loopback", fallback: LoopbackOnly, remote: "127.0.0.1:1000", want: http.StatusOK},
		{name: "fallback refuses remote", fallback: LoopbackOnly, remote: "198.51.100.7:1000", want: http.StatusForbidden},
		{name: "configured overrides fallback", configured: []string{"198.51.100.0/24"}, fallback: LoopbackOnly, remote: "127.0.0.1:1000", want: http.StatusForbidden},
		{name: "configured admits member", configured: []string{"198.51.100.0/24"}, fallback: LoopbackOnly, remote: "198.51.100.7:1000", want: http.StatusOK},
		{name: "no list and no fallback stays open", remote: "198.51.100.7:1000", want: http.StatusOK},
		{name: "malformed configured entries use fallback", configured: []string{"nope"}, fallback: LoopbackOnly, remote: "198.51.100.7:1000", want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := AllowOnlyCIDRS(tt.configured, tt.fallback, false, logger.NewNop())(okHandler())
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			req.RemoteAddr = tt.remote
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestLimiterRefill(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newLimiter(RateLimitConfig{Burst: 2, RefillPerMin: 60, Now: func() time.Time { return now }})

	for i := 0; i < 2; i++ {
		if ok, _, _ := l.take("1.2.3.4", now); !ok {
			t.Fatalf("take %d rejected within burst", i+1)
		}
	}
	ok, _, retry := l.take("1.2.3.4", now)
	if ok || retry != 1 {
		t.Errorf("take over burst = %v retry %d, want rejected retry 1", ok, retry)
	}
	if ok, _, _ := l.take("5.6.7.8", now); !ok {
		t.Error("other client shares the bucket")
	}
	if ok, _, _ := l.take("1.2.3.4", now.Add(time.Second)); !ok {
		t.Error("bucket did not refill after one second")
	}
}

func TestLimiterSweepsIdleBuckets(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newLimiter(RateLimitConfig{
		Burst:         1,
		RefillPerMin:  1,
		IdleTTL:       time.Minute,
		SweepInterval: time.Minute,
		Now:           func() time.Time { return now },
	})

	l.take("1.2.3.4", now)
	l.take("5.6.7.8", now.Add(2*time.Minute))

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.buckets["1.2.3.4"]; ok {
		t.Error("idle bucket survived the sweep")
	}
	if len(l.buckets) != 1 {
		t.Errorf("buckets = %d, want 1", len(l.buckets))
	}
}

func TestAuthenticate(t *testing.T) {
	codec, err := auth.NewCodec([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	token, err := codec.Issue(auth.Identity{ID: 7, Username: "ada"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	var seen auth.Identity
	var reached bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		seen, _ = auth.IdentityFrom(r.Context())
	})

	tests := []struct {
		name        string
		access      Access
		header      string
		wantStatus  int
		wantReached bool
		wantID      uint
	}{
		{name: "protected without token", access: Protected, wantStatus: http.StatusUnauthorized},
		{name: "protected with bad token", access: Protected, header: "nope", wantStatus: http.StatusUnauthorized},
		{name: "protected with token", access: Protected, header: token, wantStatus: http.StatusOK, wantReached: true, wantID: 7},
		{name: "protected with bearer token", access: Protected, header: "Bearer " + token, wantStatus: http.StatusOK, wantReached: true, wantID: 7},
		{name: "public with bad token", access: Public, header: "nope", wantStatus: http.StatusOK, wantReached: true},
		{name: "public with token ignores it", access: Public, header: token, wantStatus: http.StatusOK, wantReached: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached, seen = false, auth.Identity{}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(auth.HeaderName, tt.header)
			}
			rec := httptest.NewRecorder()
			Authenticate(codec, tt.access, nil, logger.NewNop())(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if reached != tt.wantReached {
				t.Errorf("handler reached = %v, want %v", reached, tt.wantReached)
			}
			if seen.ID != tt.wantID {
				t.Errorf("identity id = %d, want %d", seen.ID, tt.wantID)
			}
		})
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
}
