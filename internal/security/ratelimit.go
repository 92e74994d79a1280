package security

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter throttles the credential endpoints with a fixed-window
// token bucket per client IP. A bucket refills in full when its window
// elapses; there is no partial refill.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*bucket
	limit   int
	window  time.Duration
}

type bucket struct {
	remaining int
	windowEnd time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window
// for each client IP
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*bucket),
		limit:   limit,
		window:  window,
	}
	go rl.sweep()
	return rl
}

// Allow reports whether a request from ip fits in its current window
func (rl *RateLimiter) Allow(ip string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.clients[ip]
	if !ok || now.After(b.windowEnd) {
		b = &bucket{remaining: rl.limit, windowEnd: now.Add(rl.window)}
		rl.clients[ip] = b
	}
	if b.remaining == 0 {
		return false
	}
	b.remaining--
	return true
}

// sweep periodically drops buckets whose window has long expired so the
// map does not grow with every IP ever seen
func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		rl.mu.Lock()
		for ip, b := range rl.clients {
			if now.Sub(b.windowEnd) > rl.window {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// GetClientIP extracts the client IP, trusting proxy headers when present.
// X-Forwarded-For may carry a proxy chain; the first hop is the client.
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if i := strings.IndexByte(forwarded, ','); i >= 0 {
			return strings.TrimSpace(forwarded[:i])
		}
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}
