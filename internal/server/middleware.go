package server

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterIdleEviction = 10 * time.Minute

// clientLimiter keeps one token bucket per client address. Buckets refill
// at the configured per-minute rate with a full-window burst, so a quiet
// client can submit a batch without tripping the limit.
type clientLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	every   rate.Limit
	burst   int
}

type clientBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(perMinute int) *clientLimiter {
	return &clientLimiter{
		clients: make(map[string]*clientBucket),
		every:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
	}
}

func (c *clientLimiter) allow(addr string) bool {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.clients[addr]
	if !ok {
		c.evictIdle(now)
		b = &clientBucket{lim: rate.NewLimiter(c.every, c.burst)}
		c.clients[addr] = b
	}
	b.lastSeen = now
	return b.lim.Allow()
}

// evictIdle drops buckets idle past the eviction window. Runs on the insert
// path only, so the map cannot grow without bound.
func (c *clientLimiter) evictIdle(now time.Time) {
	for addr, b := range c.clients {
		if now.Sub(b.lastSeen) > limiterIdleEviction {
			delete(c.clients, addr)
		}
	}
}

// rateLimit enforces the per-client inbound ceiling. A nil limiter means
// the ceiling is disabled.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}
		if !s.limiter.allow(clientAddr(r)) {
			s.respond(w, http.StatusTooManyRequests, map[string]string{
				"detail": fmt.Sprintf("Rate limit exceeded. Maximum %d requests per minute.", s.cfg.ClientRatePerMinute),
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientAddr extracts the client host; the RealIP middleware has already
// folded forwarding headers into RemoteAddr.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
