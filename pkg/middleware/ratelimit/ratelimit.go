package ratelimit

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// PerIP keeps one token bucket per client address.
type PerIP struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     rate.Limit
	burst    int
	idle     time.Duration
}

func NewPerIP(r rate.Limit, burst int) *PerIP {
	return &PerIP{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    burst,
		idle:     3 * time.Minute,
	}
}

// PerMinute allows n requests per minute with a burst of n.
func PerMinute(n int) *PerIP {
	if n < 1 {
		n = 1
	}
	return NewPerIP(rate.Every(time.Minute/time.Duration(n)), n)
}

// Run evicts idle visitors until ctx is done.
func (p *PerIP) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			p.evict(now)
		}
	}
}

func (p *PerIP) evict(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for ip, v := range p.visitors {
		if now.Sub(v.lastSeen) > p.idle {
			delete(p.visitors, ip)
		}
	}
}

func (p *PerIP) limiter(ip string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	v, ok := p.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(p.rate, p.burst)}
		p.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (p *PerIP) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !p.limiter(c.RealIP()).Allow() {
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded, try again later")
		}
		return next(c)
	}
}
