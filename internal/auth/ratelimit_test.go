package auth_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Mehdichaaki/dashbord/internal/auth"
	"github.com/Mehdichaaki/dashbord/internal/logger"
	"github.com/Mehdichaaki/dashbord/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginLimiter(t *testing.T) {
	clock := newClock()
	limiter := auth.NewLoginLimiter(15*time.Minute, 5).WithClock(clock.Now)

	t.Run("SixthAttemptRefused", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			assert.True(t, limiter.Allow("10.0.0.1"), "attempt %d", i+1)
		}
		assert.False(t, limiter.Allow("10.0.0.1"))
		assert.Equal(t, 5, limiter.Attempts("10.0.0.1"))
	})

	t.Run("OtherAddressUnaffected", func(t *testing.T) {
		assert.True(t, limiter.Allow("10.0.0.2"))
		assert.Equal(t, 1, limiter.Attempts("10.0.0.2"))
	})

	t.Run("WindowSlides", func(t *testing.T) {
		assert.Equal(t, 15*time.Minute, limiter.RetryAfter("10.0.0.1"))

		clock.Advance(15*time.Minute + time.Second)
		assert.Equal(t, 0, limiter.Attempts("10.0.0.1"))
		assert.True(t, limiter.Allow("10.0.0.1"))
	})

	t.Run("Reset", func(t *testing.T) {
		limiter.ResetAll()
		for i := 0; i < 5; i++ {
			limiter.Allow("10.0.0.3")
		}
		assert.False(t, limiter.Allow("10.0.0.3"))

		limiter.Reset("10.0.0.3")
		assert.True(t, limiter.Allow("10.0.0.3"))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := auth.NewLoginLimiter(15*time.Minute, 5)
	handler := auth.RateLimit(limiter, nil, metrics.NewMock(), logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	login := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/users/login", nil)
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 5; i++ {
		// different source ports, same client
		w := login(fmt.Sprintf("192.0.2.10:%d", 1000+i))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := login("192.0.2.10:6000")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Too many login attempts, please try again later", body["error"])

	assert.Equal(t, http.StatusUnauthorized, login("192.0.2.11:1000").Code)
}

func TestRateLimitMiddleware_ForwardedHeaders(t *testing.T) {
	proxies, err := auth.NewTrustedProxies([]string{"10.1.0.0/16"})
	require.NoError(t, err)

	limiter := auth.NewLoginLimiter(15*time.Minute, 5)
	handler := auth.RateLimit(limiter, proxies, metrics.NewMock(), logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	login := func(remoteAddr, forwardedFor string) int {
		req := httptest.NewRequest(http.MethodPost, "/users/login", nil)
		req.RemoteAddr = remoteAddr
		if forwardedFor != "" {
			req.Header.Set("X-Forwarded-For", forwardedFor)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	t.Run("UntrustedPeerCannotRotateHeader", func(t *testing.T) {
		var codes []int
		for i := 0; i < 20; i++ {
			codes = append(codes, login("198.51.100.9:4444", fmt.Sprintf("10.0.0.%d", i)))
		}
		assert.Equal(t, http.StatusUnauthorized, codes[4])
		assert.Equal(t, http.StatusTooManyRequests, codes[5])
		assert.Equal(t, http.StatusTooManyRequests, codes[19])
	})

	t.Run("TrustedProxyKeysOnForwardedClient", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusUnauthorized, login("10.1.0.5:3000", "203.0.113.50"))
		}
		assert.Equal(t, http.StatusTooManyRequests, login("10.1.0.5:3000", "203.0.113.50"))

		// another browser behind the same proxy keeps its own budget
		assert.Equal(t, http.StatusUnauthorized, login("10.1.0.5:3000", "203.0.113.51"))
	})
}

func TestTrustedProxies_ClientAddr(t *testing.T) {
	proxies, err := auth.NewTrustedProxies([]string{"127.0.0.1", "10.1.0.0/16", " "})
	require.NoError(t, err)

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"NoHeaders", "192.0.2.1:1000", nil, "192.0.2.1"},
		{"UntrustedPeerIgnoresHeaders", "192.0.2.1:1000", map[string]string{"X-Forwarded-For": "203.0.113.9", "X-Real-IP": "203.0.113.9"}, "192.0.2.1"},
		{"TrustedPeerForwardedFor", "127.0.0.1:1000", map[string]string{"X-Forwarded-For": "203.0.113.9"}, "203.0.113.9"},
		{"SkipsTrustedHops", "127.0.0.1:1000", map[string]string{"X-Forwarded-For": "1.2.3.4, 203.0.113.9, 10.1.2.3"}, "203.0.113.9"},
		{"AllHopsTrusted", "127.0.0.1:1000", map[string]string{"X-Forwarded-For": "10.1.0.1, 10.1.0.2"}, "10.1.0.1"},
		{"MalformedHop", "127.0.0.1:1000", map[string]string{"X-Forwarded-For": "not-an-ip"}, "127.0.0.1"},
		{"TrustedPeerRealIP", "10.1.9.9:1000", map[string]string{"X-Real-IP": "203.0.113.7"}, "203.0.113.7"},
		{"TrustedPeerNoHeaders", "10.1.9.9:1000", nil, "10.1.9.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/users/login", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, proxies.ClientAddr(req))
		})
	}

	t.Run("InvalidEntry", func(t *testing.T) {
		_, err := auth.NewTrustedProxies([]string{"10.0.0.0/99"})
		assert.Error(t, err)
	})

	t.Run("NilTrustsNothing", func(t *testing.T) {
		var none *auth.TrustedProxies
		req := httptest.NewRequest(http.MethodPost, "/users/login", nil)
		req.RemoteAddr = "127.0.0.1:1000"
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		assert.Equal(t, "127.0.0.1", none.ClientAddr(req))
	})
}
