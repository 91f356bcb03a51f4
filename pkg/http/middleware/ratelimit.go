package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimitConfig sets the per-client token bucket.
type RateLimitConfig struct {
	Rate  float64 // tokens per second
	Burst int
	// Idle clients are forgotten after this long.
	IdleTTL time.Duration
}

type visitor struct {
	limiter *rate.Limiter
	last    time.Time
}

// ClientLimiter keeps one token bucket per client key.
type ClientLimiter struct {
	mu       sync.Mutex
	cfg      RateLimitConfig
	visitors map[string]*visitor
	swept    time.Time
	now      func() time.Time
}

// NewClientLimiter creates a limiter with cfg.
func NewClientLimiter(cfg RateLimitConfig) *ClientLimiter {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &ClientLimiter{cfg: cfg, visitors: make(map[string]*visitor), now: time.Now}
}

// Allow returns true if one token can be consumed for key.
func (l *ClientLimiter) Allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(l.cfg.Rate), l.cfg.Burst)}
		l.visitors[key] = v
	}
	v.last = now
	l.evict(now)
	return v.limiter.AllowN(now, 1)
}

// evict drops idle visitors at most once per IdleTTL; called with mu held.
func (l *ClientLimiter) evict(now time.Time) {
	if now.Sub(l.swept) < l.cfg.IdleTTL {
		return
	}
	l.swept = now
	for key, v := range l.visitors {
		if now.Sub(v.last) > l.cfg.IdleTTL {
			delete(l.visitors, key)
		}
	}
}

// RateLimit rejects requests over the client's budget with 429.
// Clients are keyed by echo's RealIP.
func RateLimit(l *ClientLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allow(c.RealIP()) {
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"status":  http.StatusTooManyRequests,
					"message": http.StatusText(http.StatusTooManyRequests),
				})
			}
			return next(c)
		}
	}
}
