package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"hireflow/internal/common"
	"hireflow/internal/http/metrics"
	"hireflow/internal/http/response"
)

// Verdict is the outcome of one throttled attempt. RetryAfter is the time
// left in the current window.
type Verdict struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter counts attempts per key in fixed windows.
type Limiter interface {
	Take(ctx context.Context, key string, limit int, window time.Duration) Verdict
}

// LoginThrottle is the in-process Limiter used when Redis is not configured.
type LoginThrottle struct {
	mu      sync.Mutex
	now     func() time.Time
	windows map[string]*attemptWindow
}

type attemptWindow struct {
	attempts int
	resetAt  time.Time
}

func NewLoginThrottle() *LoginThrottle {
	return &LoginThrottle{now: time.Now, windows: make(map[string]*attemptWindow)}
}

func (t *LoginThrottle) Take(ctx context.Context, key string, limit int, window time.Duration) Verdict {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	current, ok := t.windows[key]
	if !ok || !now.Before(current.resetAt) {
		t.sweep(now)
		t.windows[key] = &attemptWindow{attempts: 1, resetAt: now.Add(window)}
		return Verdict{Allowed: true, RetryAfter: window}
	}
	current.attempts++
	return Verdict{Allowed: current.attempts <= limit, RetryAfter: current.resetAt.Sub(now)}
}

// sweep drops expired windows so the map does not grow with every client.
func (t *LoginThrottle) sweep(now time.Time) {
	for key, w := range t.windows {
		if !now.Before(w.resetAt) {
			delete(t.windows, key)
		}
	}
}

// RateLimit answers 429 with Retry-After once keyFn's key has used up limit
// attempts in the window. An empty key is never throttled.
func RateLimit(limiter Limiter, collector *metrics.Collector, keyFn func(*http.Request) string, limit int, window time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if limiter == nil || limit <= 0 || window <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			verdict := limiter.Take(r.Context(), key, limit, window)
			if !verdict.Allowed {
				if collector != nil {
					collector.IncRateLimited()
				}
				w.Header().Set("Retry-After", retryAfter(verdict.RetryAfter))
				response.Error(w, common.NewError(common.CodeRateLimited, "Too many login attempts. Please try again later.", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the first X-Forwarded-For hop or the remote host.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// retryAfter rounds up to whole seconds, never below one.
func retryAfter(d time.Duration) string {
	seconds := int((d + time.Second - 1) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
