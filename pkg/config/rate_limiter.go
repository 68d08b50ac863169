package config

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"todoapi/internal/core/model/response"
	"todoapi/internal/core/telemetry"
	. "todoapi/pkg"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const MessageTooManyRequests = "Too many requests, please try again later."

// RateLimitStore counts hits for a key inside a fixed window.
type RateLimitStore interface {
	// Increment adds one hit to key and returns the count in the current
	// window together with the moment the window ends.
	Increment(ctx context.Context, key string, window time.Duration) (int, time.Time, error)
	Name() string
}

type RateLimitEntry struct {
	Count     int
	ResetTime time.Time
}

type MemoryStore struct {
	cache *cache.Cache
	mutex sync.Mutex
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: cache.New(5*time.Minute, 10*time.Minute),
		now:   time.Now,
	}
}

func (s *MemoryStore) Name() string {
	return "memory"
}

func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	now := s.now()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if item, found := s.cache.Get(key); found {
		entry := item.(RateLimitEntry)

		if now.Before(entry.ResetTime) {
			entry.Count++
			s.cache.Set(key, entry, entry.ResetTime.Sub(now))
			return entry.Count, entry.ResetTime, nil
		}
	}

	entry := RateLimitEntry{Count: 1, ResetTime: now.Add(window)}
	s.cache.Set(key, entry, window)

	return entry.Count, entry.ResetTime, nil
}

// RedisStore shares the counters between instances with INCR and EXPIRE.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisStoreFromURL parses a redis:// URL.
func NewRedisStoreFromURL(url string) (*RedisStore, error) {
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	return NewRedisStore(redis.NewClient(options)), nil
}

func (s *RedisStore) Name() string {
	return "redis"
}

func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("rate limit increment: %w", err)
	}

	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, time.Time{}, fmt.Errorf("rate limit expire: %w", err)
		}
	}

	ttl, err := s.client.PTTL(ctx, key).Result()
	if err != nil || ttl <= 0 {
		ttl = window
	}

	return int(count), time.Now().Add(ttl), nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// RateLimiter applies a fixed-window limit per client address.
type RateLimiter struct {
	store   RateLimitStore
	limit   RateLimitConfig
	paths   map[string]RateLimitConfig
	keyFunc func(*gin.Context) string
	logger  *zap.Logger
	metrics *telemetry.AppMetrics
	mutex   sync.RWMutex
}

func NewRateLimiter(store RateLimitStore, limit RateLimitConfig, logger *zap.Logger, metrics *telemetry.AppMetrics) *RateLimiter {
	if store == nil {
		store = NewMemoryStore()
	}

	return &RateLimiter{
		store:   store,
		limit:   limit,
		paths:   map[string]RateLimitConfig{},
		keyFunc: GetClientIP,
		logger:  logger,
		metrics: metrics,
	}
}

// SetConfig overrides the limit for one route path, e.g. "/api/todos".
// The override gets its own counter.
func (rl *RateLimiter) SetConfig(path string, config RateLimitConfig) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	rl.paths[path] = config
}

func (rl *RateLimiter) configFor(path string) (string, RateLimitConfig) {
	rl.mutex.RLock()
	defer rl.mutex.RUnlock()

	if config, ok := rl.paths[path]; ok {
		return path, config
	}

	return "global", rl.limit
}

func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		scope, config := rl.configFor(path)
		key := fmt.Sprintf("rate_limit:%s:%s", scope, rl.keyFunc(c))

		count, resetTime, err := rl.store.Increment(ctx, key, config.Window)
		if err != nil {
			rl.logger.Error("Rate limit check failed",
				zap.String("key", key),
				zap.String("path", path),
				zap.String("store", rl.store.Name()),
				zap.Error(err))
			c.Next()
			return
		}

		remaining := config.Requests - count
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if count > config.Requests {
			if rl.metrics != nil {
				rl.metrics.RecordRateLimitHit(ctx, path, rl.store.Name())
			}

			rl.logger.Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.String("path", path),
				zap.Int("limit", config.Requests),
				zap.Duration("window", config.Window))

			retryAfter := int(time.Until(resetTime).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.Envelope{
				Success: false,
				Message: MessageTooManyRequests,
			})
			return
		}

		if rl.metrics != nil {
			rl.metrics.RecordRateLimitAllowed(ctx, path, rl.store.Name())
		}

		c.Next()
	}
}
