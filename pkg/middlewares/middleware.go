package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"todoapi/internal/core/telemetry"
	. "todoapi/pkg/config"
	"todoapi/pkg/logger"
	. "todoapi/pkg/response"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func MetricsMiddleware(metrics *telemetry.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		metrics.IncrementActiveConnections(c.Request.Context())
		defer metrics.DecrementActiveConnections(c.Request.Context())

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.RecordRequest(
			c.Request.Context(),
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID, X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset, X-Cache")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Stack holds the shared middleware state created by SetupGinMiddlewareWithConfig.
type Stack struct {
	RateLimiter   *RateLimiter
	ResponseCache *ResponseCache
}

// SetupGinMiddlewareWithConfig installs the boundary middleware in order:
// HTTPS, tracing, access log, metrics, CORS, rate limit, response cache.
// A nil store falls back to the in-memory rate limit store.
func SetupGinMiddlewareWithConfig(router *gin.Engine, config *AppConfig, metrics *telemetry.AppMetrics, log *logger.LokiLogger, store RateLimitStore) *Stack {
	stack := &Stack{}

	httpsEnforcer := NewHTTPSEnforcer(config.EnforceHTTPS, log.Logger.Logger, config.APIPrefix+"/health")
	router.Use(httpsEnforcer.HTTPSMiddleware())

	router.Use(otelgin.Middleware(config.ServiceName))

	router.Use(LoggingMiddleware(log))

	if metrics != nil {
		router.Use(MetricsMiddleware(metrics))
	}

	router.Use(CORSMiddleware())

	if config.RateLimitEnabled {
		stack.RateLimiter = NewRateLimiter(store, config.RateLimit, log.Logger.Logger, metrics)
		for path, limit := range config.RateLimitConfigs {
			stack.RateLimiter.SetConfig(path, limit)
		}
		router.Use(stack.RateLimiter.RateLimitMiddleware())
	}

	if config.CacheEnabled {
		stack.ResponseCache = NewResponseCache(ResponseCacheConfig{
			TTL:      config.CacheTTL,
			Size:     config.CacheSize,
			Prefixes: []string{config.APIPrefix + "/stats/"},
		}, log.Logger.Logger, metrics)
		router.Use(stack.ResponseCache.CacheMiddleware())
	}

	return stack
}
