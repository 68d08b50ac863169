package response

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"todoapi/internal/core/telemetry"
	. "todoapi/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type ResponseCacheConfig struct {
	TTL  time.Duration
	Size int
	// Prefixes lists the GET paths that may be cached.
	Prefixes []string
}

// ResponseCache keeps successful GET responses for the configured prefixes
// and drops everything after any successful write.
type ResponseCache struct {
	cache    *expirable.LRU[string, CachedResponse]
	config   ResponseCacheConfig
	logger   *zap.Logger
	metrics  *telemetry.AppMetrics
	snapshot func() time.Time

	// generation counts purges; a miss only stores its body if no purge
	// happened while it was being served.
	mu         sync.Mutex
	generation uint64
}

type CachedResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
	Timestamp   time.Time
}

func NewResponseCache(config ResponseCacheConfig, logger *zap.Logger, metrics *telemetry.AppMetrics) *ResponseCache {
	if config.Size <= 0 {
		config.Size = 256
	}

	if config.TTL <= 0 {
		config.TTL = 30 * time.Second
	}

	return &ResponseCache{
		cache:    expirable.NewLRU[string, CachedResponse](config.Size, nil, config.TTL),
		config:   config,
		logger:   logger,
		metrics:  metrics,
		snapshot: time.Now,
	}
}

func (rc *ResponseCache) cacheable(path string) bool {
	for _, prefix := range rc.config.Prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}

func (rc *ResponseCache) CacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()

			if c.Writer.Status() < 300 {
				rc.InvalidateAllCache(c)
			}
			return
		}

		path := c.Request.URL.Path
		if !rc.cacheable(path) {
			c.Next()
			return
		}

		cacheKey := rc.generateCacheKey(c)

		if cached, found := rc.cache.Get(cacheKey); found {
			age := rc.snapshot().Sub(cached.Timestamp)

			_, span := CreateChildSpan(c.Request.Context(), "cache.response.hit", []attribute.KeyValue{
				attribute.String("cache.key", cacheKey),
				attribute.String("cache.path", path),
				attribute.String("cache.age", age.String()),
				attribute.Int("cache.body_size", len(cached.Body)),
			})
			defer span.End()

			if rc.metrics != nil {
				rc.metrics.RecordCacheHit(c.Request.Context(), path)
			}

			rc.logger.Debug("Cache hit",
				zap.String("path", path),
				zap.String("cache_key", cacheKey),
				zap.Duration("age", age))

			c.Header("X-Cache", "HIT")
			c.Header("X-Cache-Age", fmt.Sprintf("%.0f", age.Seconds()))
			c.Data(cached.StatusCode, cached.ContentType, cached.Body)
			c.Abort()
			return
		}

		ctx, span := CreateChildSpan(c.Request.Context(), "cache.response.miss", []attribute.KeyValue{
			attribute.String("cache.key", cacheKey),
			attribute.String("cache.path", path),
		})
		defer span.End()

		if rc.metrics != nil {
			rc.metrics.RecordCacheMiss(ctx, path)
		}

		rc.logger.Debug("Cache miss",
			zap.String("path", path),
			zap.String("cache_key", cacheKey))

		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer
		c.Header("X-Cache", "MISS")

		generation := rc.currentGeneration()

		c.Next()

		if status := writer.Status(); status >= 200 && status < 300 {
			stored := rc.store(cacheKey, generation, CachedResponse{
				StatusCode:  status,
				ContentType: writer.Header().Get("Content-Type"),
				Body:        bytes.Clone(writer.body.Bytes()),
				Timestamp:   rc.snapshot(),
			})

			if !stored {
				rc.logger.Debug("Cache store skipped after invalidation",
					zap.String("path", path),
					zap.String("cache_key", cacheKey))
			}
		}
	}
}

func (rc *ResponseCache) generateCacheKey(c *gin.Context) string {
	if c.Request.URL.RawQuery == "" {
		return "cache:" + c.Request.URL.Path
	}

	return "cache:" + c.Request.URL.Path + "?" + c.Request.URL.RawQuery
}

func (rc *ResponseCache) currentGeneration() uint64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.generation
}

// store adds entry unless the cache was invalidated after generation was read.
func (rc *ResponseCache) store(key string, generation uint64, entry CachedResponse) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.generation != generation {
		return false
	}

	rc.cache.Add(key, entry)
	return true
}

// InvalidateAllCache drops every cached response and any response still
// being rendered from before the write.
func (rc *ResponseCache) InvalidateAllCache(c *gin.Context) {
	rc.mu.Lock()
	rc.generation++
	purged := rc.cache.Len()
	rc.cache.Purge()
	rc.mu.Unlock()

	if purged == 0 {
		return
	}

	if rc.metrics != nil {
		rc.metrics.RecordCacheInvalidation(c.Request.Context())
	}

	rc.logger.Debug("Response cache invalidated",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path))
}

func (rc *ResponseCache) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"active_entries": rc.cache.Len(),
		"prefixes":       len(rc.config.Prefixes),
	}
}

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
