package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter throttles requests per client IP with a token bucket.
// Wire it after chimiddleware.RealIP so RemoteAddr carries the client address.
type RateLimiter struct {
	rps    rate.Limit
	burst  int
	exempt map[string]bool
	now    func() time.Time

	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// idleTTL is how long an unseen client's bucket is kept.
const idleTTL = 5 * time.Minute

// NewRateLimiter returns a limiter allowing rps requests per second per IP
// with bursts of up to burst. Requests to the exempt paths are never limited.
func NewRateLimiter(rps float64, burst int, exempt ...string) *RateLimiter {
	rl := &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		exempt:  make(map[string]bool, len(exempt)),
		now:     time.Now,
		clients: make(map[string]*client),
	}
	for _, p := range exempt {
		rl.exempt[p] = true
	}
	return rl
}

// Handler is the middleware. Throttled requests get 429 with a Retry-After
// header.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.exempt[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		if !rl.limiter(clientIP(r)).Allow() {
			w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfter()))
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > idleTTL {
		for k, c := range rl.clients {
			if now.Sub(c.lastSeen) > idleTTL {
				delete(rl.clients, k)
			}
		}
		rl.lastSweep = now
	}

	c, ok := rl.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter
}

// retryAfter is the whole number of seconds until one token is back.
func (rl *RateLimiter) retryAfter() int {
	if rl.rps <= 0 {
		return 1
	}
	secs := int(1/float64(rl.rps) + 0.999)
	return max(secs, 1)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
