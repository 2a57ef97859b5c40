package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	t.Run("reuses inbound id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "lb-1234")
		w := httptest.NewRecorder()

		h.ServeHTTP(w, req)
		assert.Equal(t, "lb-1234", seen)
		assert.Equal(t, "lb-1234", w.Header().Get(RequestIDHeader))
	})

	t.Run("generates when missing or unsafe", func(t *testing.T) {
		for _, inbound := range []string{"", "has space", strings.Repeat("x", 200)} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(RequestIDHeader, inbound)
			w := httptest.NewRecorder()

			h.ServeHTTP(w, req)
			assert.Len(t, seen, 36)
			assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
		}
	})
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "41.186.1.2, 10.0.0.1"}, "10.0.0.9:443", "41.186.1.2"},
		{"real ip", map[string]string{"X-Real-IP": " 41.186.1.3 "}, "10.0.0.9:443", "41.186.1.3"},
		{"remote addr", nil, "41.186.1.4:51234", "41.186.1.4"},
		{"remote without port", nil, "41.186.1.5", "41.186.1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, GetClientIP(req))
		})
	}
}

func TestRequestLogger(t *testing.T) {
	var buf strings.Builder
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	h := RequestID(WithClientIP()(WithRequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		GetLogger(r.Context()).Info("hello")
	}))))

	req := httptest.NewRequest(http.MethodPost, "/api/cart", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	req.Header.Set("X-Cart-Session", "sess-1")
	req.RemoteAddr = "41.186.1.4:51234"
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, `"client_ip":"41.186.1.4"`)
	assert.Contains(t, out, `"cart_session":"sess-1"`)
	assert.Contains(t, out, `"path":"/api/cart"`)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerSecond: 1, BurstSize: 2})
	defer rl.Stop()

	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"), "burst exhausted")
	assert.True(t, rl.Allow("b"), "keys are independent")

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("a"), "one token refilled")
	assert.False(t, rl.Allow("a"))

	now = now.Add(10 * time.Minute)
	rl.sweep()
	rl.mu.Lock()
	assert.Empty(t, rl.buckets, "idle full buckets are dropped")
	rl.mu.Unlock()

	rl.Stop()
}

func TestRateLimiter_SweepKeepsLimitedKeys(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerSecond: 0.001, BurstSize: 1})
	defer rl.Stop()

	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("slow"))
	assert.True(t, rl.Allow("fresh"))

	now = now.Add(2 * time.Minute)
	rl.mu.Lock()
	rl.buckets["fresh"].lastRefill = now
	rl.mu.Unlock()
	rl.sweep()

	rl.mu.Lock()
	assert.Contains(t, rl.buckets, "slow", "idle but not yet refilled")
	assert.Contains(t, rl.buckets, "fresh", "recently used")
	rl.mu.Unlock()
	assert.False(t, rl.Allow("slow"), "sweep must not reset a drained key")

	now = now.Add(20 * time.Minute)
	rl.sweep()
	rl.mu.Lock()
	assert.Empty(t, rl.buckets)
	rl.mu.Unlock()
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerSecond: 0.001, BurstSize: 1})
	defer rl.Stop()
	h := rl.Middleware(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "Too many requests")
}

func TestMaxBodySize(t *testing.T) {
	var readErr error
	h := MaxBodySize(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	t.Run("declared length too large", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "Request body too large")
	})

	t.Run("chunked body is capped", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789"))
		req.ContentLength = -1
		h.ServeHTTP(httptest.NewRecorder(), req)

		var maxErr *http.MaxBytesError
		assert.ErrorAs(t, readErr, &maxErr)
	})

	t.Run("small body passes", func(t *testing.T) {
		readErr = nil
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}")))
		assert.NoError(t, readErr)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestTimeout(t *testing.T) {
	t.Run("slow handler gets 504", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		h := Timeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-release:
			}
			w.WriteHeader(http.StatusOK)
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
		assert.Contains(t, w.Body.String(), "Request timed out")
	})

	t.Run("fast handler", func(t *testing.T) {
		w := httptest.NewRecorder()
		Timeout(time.Second)(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestSecurityHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	SecurityHeaders(DefaultSecurityHeadersConfig())(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "max-age=31536000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))

	cfg := DefaultSecurityHeadersConfig()
	cfg.HSTSMaxAge = 0
	w = httptest.NewRecorder()
	SecurityHeaders(cfg)(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegistry("isoko_test", reg, reg)

	mux := http.NewServeMux()
	mux.Handle("GET /api/products/{id}", m.Middleware(okHandler))
	mux.Handle("GET /metrics", m.Handler())

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/abc", nil))
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/def", nil))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `isoko_test_http_requests_total{method="GET",path="/api/products/{id}",status="200"} 2`)
	assert.NotContains(t, body, "/api/products/abc")
}
