package httpapi

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginLimiter throttles login attempts per client address so password
// guessing stays slow regardless of which usernames are tried.
type LoginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// staleAfter is how long an idle client's limiter is kept before cleanup.
const staleAfter = 10 * time.Minute

// NewLoginLimiter allows perMinute attempts per client with the given burst.
func NewLoginLimiter(perMinute, burst int) *LoginLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = perMinute
	}
	return &LoginLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
	}
}

// Middleware rejects over-limit requests with 429 before the handler runs.
func (l *LoginLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientAddr(r)) {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many login attempts"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *LoginLimiter) allow(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entry, ok := l.limiters[addr]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[addr] = entry
	}
	entry.lastSeen = now

	for key, e := range l.limiters {
		if now.Sub(e.lastSeen) > staleAfter {
			delete(l.limiters, key)
		}
	}

	return entry.limiter.Allow()
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
