package httpx

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// ipLimiter hands out a token-bucket limiter per client IP. Login is the
// only endpoint worth brute-forcing, so only login consults it.
type ipLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newIPLimiter(r float64, burst int) *ipLimiter {
	return &ipLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(r),
		burst:    burst,
	}
}

// allow reports whether the client may proceed, creating its limiter on
// first sight.
func (l *ipLimiter) allow(ip string) bool {
	l.mu.RLock()
	limiter, exists := l.limiters[ip]
	l.mu.RUnlock()

	if !exists {
		l.mu.Lock()
		// Double-check after acquiring the write lock.
		limiter, exists = l.limiters[ip]
		if !exists {
			limiter = rate.NewLimiter(l.rate, l.burst)
			l.limiters[ip] = limiter
		}
		l.mu.Unlock()
	}

	return limiter.Allow()
}

// clientIP extracts the client address for rate limiting. The RealIP
// middleware has already rewritten RemoteAddr from X-Forwarded-For when the
// service sits behind a proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
