package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"
	"tle_zone_dashboard/internal/common"

	"golang.org/x/time/rate"
)

// minIdleTTL is the shortest time an unused client entry is kept.
const minIdleTTL = 10 * time.Minute

// RateLimiter hands out one token bucket per client address. An entry is
// evicted once it has been idle long enough for its bucket to refill.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*client
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(limit rate.Limit, burst int) *RateLimiter {
	idle := minIdleTTL
	if limit > 0 && limit != rate.Inf {
		refill := time.Duration(float64(burst) / float64(limit) * float64(time.Second)).Round(time.Second)
		if refill > idle {
			idle = refill
		}
	}
	return &RateLimiter{
		clients: make(map[string]*client),
		limit:   limit,
		burst:   burst,
		idleTTL: idle,
		now:     time.Now,
	}
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.idleTTL {
		rl.sweep(now)
	}

	c, ok := rl.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter
}

// sweep drops idle clients. Callers hold rl.mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for key, c := range rl.clients {
		if now.Sub(c.lastSeen) >= rl.idleTTL {
			delete(rl.clients, key)
		}
	}
	rl.lastSweep = now
}

// RateLimit keys on RemoteAddr, so mount it after chi's RealIP.
func RateLimit(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			if host, _, err := net.SplitHostPort(key); err == nil {
				key = host
			}
			if !rl.limiterFor(key).Allow() {
				common.RespondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
