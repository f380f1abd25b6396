package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
)

// RateLimitRule is a token bucket refilled at Rate tokens per second.
type RateLimitRule struct {
	Rate  float64
	Burst int
}

// PerMinute builds a rule from a per-minute rate.
func PerMinute(n float64, burst int) RateLimitRule {
	return RateLimitRule{Rate: n / 60, Burst: burst}
}

// limiterIdleTTL is how long a caller's bucket survives without requests.
const limiterIdleTTL = 10 * time.Minute

// RateLimiter keeps one limiter per (scope, principal).
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*trackedLimiter
	now       func() time.Time
	lastSweep time.Time
}

type trackedLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{limiters: make(map[string]*trackedLimiter), now: now}
}

// RateLimit throttles each caller within scope. Callers are keyed by user id when the
// auth middleware ran first, otherwise by client IP.
func RateLimit(limiter *RateLimiter, scope string, rule RateLimitRule) gin.HandlerFunc {
	if limiter == nil {
		limiter = NewRateLimiter(nil)
	}
	return func(c *gin.Context) {
		principal := strings.TrimSpace(UserIDFromContext(c))
		if principal == "" {
			principal = c.ClientIP()
		}
		ok, wait := limiter.Allow(scope+"|"+principal, rule)
		if ok {
			c.Next()
			return
		}

		secs := int((wait + time.Second - 1) / time.Second)
		if secs < 1 {
			secs = 1
		}
		telemetry.Info("rate_limit.rejected", map[string]any{
			"scope":         scope,
			"principal":     principal,
			"retry_after_s": secs,
		})
		c.Header("Retry-After", strconv.Itoa(secs))
		respond.Failure(c, http.StatusTooManyRequests, "Too many requests", map[string]any{
			"retryAfterMs": wait.Milliseconds(),
		})
	}
}

// Allow takes one token for key. When none is available it reports how long until one is.
// A rule with no rate or burst never limits.
func (l *RateLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || rule.Rate <= 0 || rule.Burst <= 0 {
		return true, 0
	}
	now := l.now()
	res := l.limiterFor(key, rule, now).ReserveN(now, 1)
	if !res.OK() {
		return false, time.Second
	}
	delay := res.DelayFrom(now)
	if delay == 0 {
		return true, 0
	}
	res.CancelAt(now)
	return false, delay
}

func (l *RateLimiter) limiterFor(key string, rule RateLimitRule, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if now.Sub(l.lastSweep) >= time.Minute {
		l.sweepLocked(now)
	}
	t, ok := l.limiters[key]
	if !ok {
		t = &trackedLimiter{lim: rate.NewLimiter(rate.Limit(rule.Rate), rule.Burst)}
		l.limiters[key] = t
	}
	t.seen = now
	return t.lim
}

func (l *RateLimiter) sweepLocked(now time.Time) {
	for k, t := range l.limiters {
		if now.Sub(t.seen) > limiterIdleTTL {
			delete(l.limiters, k)
		}
	}
	l.lastSweep = now
}

// Len reports how many callers are tracked.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
