package audio

import (
	"net/http"
	"sync"
	"time"
)

// visitorLimiter is a fixed-window request limiter keyed by client IP.
// Buckets idle for several windows are pruned on the next Allow call, so
// the map does not grow without bound under scanning traffic.
type visitorLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
}

type visitor struct {
	remaining   int
	windowStart time.Time
}

func newVisitorLimiter(limit int, window time.Duration) *visitorLimiter {
	return &visitorLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
	}
}

func (l *visitorLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.pruneLocked(now)

	v, ok := l.visitors[ip]
	if !ok {
		l.visitors[ip] = &visitor{remaining: l.limit - 1, windowStart: now}
		return true
	}

	if now.Sub(v.windowStart) > l.window {
		v.remaining = l.limit
		v.windowStart = now
	}

	if v.remaining > 0 {
		v.remaining--
		return true
	}
	return false
}

func (l *visitorLimiter) pruneLocked(now time.Time) {
	for ip, v := range l.visitors {
		if now.Sub(v.windowStart) > 3*l.window {
			delete(l.visitors, ip)
		}
	}
}

func (l *visitorLimiter) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientIP(r)) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}
