package auth

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Mehdichaaki/dashbord/internal/httputil"
	"github.com/Mehdichaaki/dashbord/internal/metrics"
)

const TooManyLoginAttempts = "Too many login attempts, please try again later"

// sweepThreshold bounds how many idle addresses are kept between sweeps.
const sweepThreshold = 10000

// LoginLimiter allows at most max attempts per address inside a sliding
// window. State is process local and lost on restart.
type LoginLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	now    func() time.Time
	hits   map[string][]time.Time
}

func NewLoginLimiter(window time.Duration, max int) *LoginLimiter {
	return &LoginLimiter{
		window: window,
		max:    max,
		now:    time.Now,
		hits:   make(map[string][]time.Time),
	}
}

// WithClock replaces time.Now. Meant for tests.
func (l *LoginLimiter) WithClock(now func() time.Time) *LoginLimiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
	return l
}

// Allow records an attempt for addr and reports whether it is within the
// limit. Refused attempts are not recorded.
func (l *LoginLimiter) Allow(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.hits) > sweepThreshold {
		l.sweep(now)
	}

	recent := l.prune(addr, now)
	if len(recent) >= l.max {
		return false
	}
	l.hits[addr] = append(recent, now)
	return true
}

// Attempts returns how many attempts from addr are inside the window.
func (l *LoginLimiter) Attempts(addr string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prune(addr, l.now()))
}

// RetryAfter is how long addr must wait for its oldest attempt to expire.
func (l *LoginLimiter) RetryAfter(addr string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	recent := l.prune(addr, now)
	if len(recent) < l.max {
		return 0
	}
	return recent[0].Add(l.window).Sub(now)
}

func (l *LoginLimiter) Reset(addr string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.hits, addr)
}

func (l *LoginLimiter) ResetAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hits = make(map[string][]time.Time)
}

// prune drops attempts older than the window. Caller holds mu.
func (l *LoginLimiter) prune(addr string, now time.Time) []time.Time {
	hits := l.hits[addr]
	cutoff := now.Add(-l.window)

	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	hits = hits[i:]

	if len(hits) == 0 {
		delete(l.hits, addr)
		return nil
	}
	l.hits[addr] = hits
	return hits
}

func (l *LoginLimiter) sweep(now time.Time) {
	for addr := range l.hits {
		l.prune(addr, now)
	}
}

// RateLimit refuses requests over the limiter's budget with 429. Requests
// are keyed by proxies.ClientAddr; a nil proxies trusts no forwarding header.
func RateLimit(limiter *LoginLimiter, proxies *TrustedProxies, m *metrics.Metrics, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr := proxies.ClientAddr(r)
			if !limiter.Allow(addr) {
				m.RecordLoginRateLimited(r.Context())
				logger.WarnContext(r.Context(), "login rate limited", "addr", addr)

				wait := limiter.RetryAfter(addr)
				w.Header().Set("Retry-After", strconv.Itoa(int(wait.Round(time.Second).Seconds())))
				httputil.RespondWithError(w, http.StatusTooManyRequests, TooManyLoginAttempts)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
