package middleware

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dulanjanabandara/job-recommender-system/internal/logger"
	appErrors "github.com/dulanjanabandara/job-recommender-system/pkg/errors"
)

const RateLimitMessage = "Too many requests from this IP address! Please try again in an hour."

// Decision is the outcome of a single rate limit check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether the client identified by key may make another
// request.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// MemoryLimiter counts requests per client in fixed windows held in process
// memory. A client gets max requests per window; the count resets when the
// window that began with its first request ends.
type MemoryLimiter struct {
	windows  map[string]*window
	mu       sync.Mutex
	max      int
	length   time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type window struct {
	start time.Time
	count int
}

func NewMemoryLimiter(max int, length time.Duration) *MemoryLimiter {
	rl := &MemoryLimiter{
		windows: make(map[string]*window),
		max:     max,
		length:  length,
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	go rl.cleanup(10 * time.Minute)

	return rl
}

func (rl *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[key]
	if !ok || !now.Before(w.start.Add(rl.length)) {
		w = &window{start: now}
		rl.windows[key] = w
	}

	if w.count >= rl.max {
		return Decision{Limit: rl.max, RetryAfter: w.start.Add(rl.length).Sub(now)}, nil
	}

	w.count++
	return Decision{Allowed: true, Limit: rl.max, Remaining: rl.max - w.count}, nil
}

// Close stops the background cleanup.
func (rl *MemoryLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// cleanup drops windows that have ended.
func (rl *MemoryLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.expire(rl.now())
		}
	}
}

func (rl *MemoryLimiter) expire(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, w := range rl.windows {
		if !now.Before(w.start.Add(rl.length)) {
			delete(rl.windows, key)
		}
	}
}

// RateLimitMiddleware rejects clients that exceed limiter's quota with a 429.
// Limiter failures let the request through.
func RateLimitMiddleware(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		decision, err := limiter.Allow(c.Request.Context(), ip)
		if err != nil {
			logger.Warn("Rate limiter unavailable",
				zap.String("request_id", GetRequestID(c)),
				zap.String("ip", ip),
				zap.Error(err),
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			logger.Warn("Rate limit exceeded",
				zap.String("request_id", GetRequestID(c)),
				zap.String("ip", ip),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)

			_ = c.Error(appErrors.TooManyRequests(RateLimitMessage))
			c.Abort()
			return
		}

		c.Next()
	}
}

// ForPathPrefix runs h only for requests under prefix, matched on whole path
// segments. Registered globally, it also covers requests that end in NoRoute.
func ForPathPrefix(prefix string, h gin.HandlerFunc) gin.HandlerFunc {
	prefix = strings.TrimSuffix(prefix, "/")
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			h(c)
			return
		}
		c.Next()
	}
}
