package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"floreria/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	msgTooManyLogins   = "Demasiados intentos de inicio de sesión. Intenta en 1 minuto."
	msgTooManyRequests = "Demasiadas solicitudes. Intenta nuevamente en un momento."
)

// window tracks request counts per client IP in fixed windows.
type window struct {
	count int
	ends  time.Time
}

// Limiter counts requests per IP. Expired windows are purged by Run.
type Limiter struct {
	limit  int
	period time.Duration
	msg    string
	now    func() time.Time

	mu      sync.Mutex
	clients map[string]*window
}

// NewLimiter allows limit requests per period and IP.
func NewLimiter(limit int, period time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		period:  period,
		msg:     msgTooManyRequests,
		now:     time.Now,
		clients: make(map[string]*window),
	}
}

// NewLoginLimiter allows 20 login attempts per minute and IP.
func NewLoginLimiter() *Limiter {
	l := NewLimiter(20, time.Minute)
	l.msg = msgTooManyLogins
	return l
}

// WithClock replaces the time source, for tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Allow records one request of ip and reports whether it is within budget,
// together with the end of the current window.
func (l *Limiter) Allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.clients[ip]
	if !ok || now.After(w.ends) {
		w = &window{ends: now.Add(l.period)}
		l.clients[ip] = w
	}
	w.count++
	return w.count <= l.limit, w.ends
}

// Middleware rejects requests over budget with 429.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, ends := l.Allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", ends.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.msg))
			return
		}
		c.Next()
	}
}

// Purge drops expired windows and returns how many were removed.
func (l *Limiter) Purge() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	purged := 0
	for ip, w := range l.clients {
		if now.After(w.ends) {
			delete(l.clients, ip)
			purged++
		}
	}
	return purged
}

// Run purges expired windows every interval until ctx is cancelled.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Purge(); n > 0 {
				log.Debug().Int("purged", n).Msg("rate limiter entries purged")
			}
		}
	}
}
