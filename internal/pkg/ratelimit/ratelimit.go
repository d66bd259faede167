package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/response"
	"golang.org/x/time/rate"
)

var ErrTooManyRequests = apperror.New(apperror.KindRateLimit, http.StatusTooManyRequests, "too many requests")

type client struct {
	lim  *rate.Limiter
	seen time.Time
}

// Limiter keeps one token bucket per client key.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*client
	r       rate.Limit
	burst   int
	ttl     time.Duration
	now     func() time.Time
}

// New creates a limiter allowing rps requests per second with the given burst per client.
func New(rps float64, burst int) *Limiter {
	return &Limiter{
		clients: make(map[string]*client),
		r:       rate.Limit(rps),
		burst:   burst,
		ttl:     3 * time.Minute,
		now:     time.Now,
	}
}

// Allow reports whether the client identified by key may proceed.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c, ok := l.clients[key]
	if !ok {
		c = &client{lim: rate.NewLimiter(l.r, l.burst)}
		l.clients[key] = c
	}
	c.seen = now
	return c.lim.AllowN(now, 1)
}

// Sweep drops clients not seen within the idle window.
func (l *Limiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, c := range l.clients {
		if now.Sub(c.seen) > l.ttl {
			delete(l.clients, key)
		}
	}
}

// Run sweeps stale clients every interval until done is closed.
func (l *Limiter) Run(interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.Sweep()
		case <-done:
			return
		}
	}
}

func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// PerClient rejects requests over the limit with 429, keyed by client IP.
func PerClient(l *Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			response.Abort(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
