package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/pscafe-console/internal/presentation/http/dto/response"
	"github.com/sangkips/pscafe-console/pkg/apperror"
	"golang.org/x/time/rate"
)

// RateLimiterConfig configures a RateLimiter. Zero fields take the defaults.
type RateLimiterConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// Idle buckets are dropped after EntryTTL, checked every CleanupInterval.
	CleanupInterval time.Duration
	EntryTTL        time.Duration
}

func (c RateLimiterConfig) withDefaults() RateLimiterConfig {
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 10
	}
	if c.BurstSize <= 0 {
		c.BurstSize = 20
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = 5 * time.Minute
	}
	if c.EntryTTL <= 0 {
		c.EntryTTL = 10 * time.Minute
	}
	return c
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per operator. Anonymous requests are
// bucketed by client IP.
type RateLimiter struct {
	cfg RateLimiterConfig

	mu      sync.Mutex
	buckets map[string]*bucket

	stop     chan struct{}
	stopOnce sync.Once
}

func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		cfg:     cfg.withDefaults(),
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Stop ends the background sweep.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) bucketFor(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.BurstSize)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			rl.dropIdle(now)
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) dropIdle(now time.Time) {
	cutoff := now.Add(-rl.cfg.EntryTTL)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
}

// Middleware must run after AuthMiddleware so the operator is known.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	limit := strconv.Itoa(rl.cfg.BurstSize)
	return func(c *gin.Context) {
		key := GetOperator(c)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}
		now := time.Now()
		limiter := rl.bucketFor(key, now)

		c.Header("X-RateLimit-Limit", limit)
		r := limiter.ReserveN(now, 1)
		if delay := r.DelayFrom(now); !r.OK() || delay > 0 {
			r.CancelAt(now)
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retryAfter(delay)))
			response.Error(c, apperror.ErrTooManyRequests)
			c.Abort()
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(limiter.TokensAt(now))))
		c.Next()
	}
}

// retryAfter rounds a wait up to whole seconds, at least one.
func retryAfter(d time.Duration) int {
	return max(1, int(math.Ceil(d.Seconds())))
}

// LimiterStats is reported by the health endpoint.
type LimiterStats struct {
	ActiveClients   int     `json:"active_clients"`
	RatePerSecond   float64 `json:"rate_per_second"`
	BurstSize       int     `json:"burst_size"`
	CleanupInterval int64   `json:"cleanup_interval_ms"`
	EntryTTL        int64   `json:"entry_ttl_ms"`
}

func (rl *RateLimiter) Stats() LimiterStats {
	rl.mu.Lock()
	active := len(rl.buckets)
	rl.mu.Unlock()
	return LimiterStats{
		ActiveClients:   active,
		RatePerSecond:   rl.cfg.RequestsPerSecond,
		BurstSize:       rl.cfg.BurstSize,
		CleanupInterval: rl.cfg.CleanupInterval.Milliseconds(),
		EntryTTL:        rl.cfg.EntryTTL.Milliseconds(),
	}
}
