// Package middleware holds gin middleware shared by the web modules.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"generalstuff/page"
)

// TooManyAttempts is shown when a client submits credentials too often.
const TooManyAttempts = "Слишком много попыток, попробуйте через минуту."

const limiterTTL = 5 * time.Minute

type limiterEntry struct {
	limiter *rate.Limiter
	expires time.Time
}

// Limiter is a per-IP token bucket for form submissions.
type Limiter struct {
	mu      sync.Mutex
	entries   map[string]*limiterEntry
	nextSweep time.Time
	limit     rate.Limit
	burst     int
	now       func() time.Time
}

func NewLimiter(perMinute int) *Limiter {
	perMinute = max(perMinute, 1)
	return &Limiter{
		entries: map[string]*limiterEntry{},
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   max(perMinute/2, 1),
		now:     time.Now,
	}
}

// Submissions limits POST requests only, so the form itself can always be
// opened. Clients are keyed by ClientIP, which honours X-Forwarded-For only
// from the engine's trusted proxies. A rejected submission is sent back to
// the form with a warning.
func (l *Limiter) Submissions() gin.HandlerFunc {
	reject := func(c *gin.Context) page.Outcome {
		return page.Redirect(c.Request.URL.Path).Warning(TooManyAttempts)
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		if !l.allow(c.ClientIP()) {
			page.Handle(reject)(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (l *Limiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.After(l.nextSweep) {
		for k, e := range l.entries {
			if now.After(e.expires) {
				delete(l.entries, k)
			}
		}
		l.nextSweep = now.Add(time.Minute)
	}

	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.expires = now.Add(limiterTTL)
	return e.limiter.AllowN(now, 1)
}
