package config

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var localHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"::1":       true,
}

// HTTPSEnforcer redirects plain HTTP requests to HTTPS. Local hosts, exempt
// paths and requests already terminated by a TLS proxy pass through.
type HTTPSEnforcer struct {
	enabled bool
	exempt  map[string]bool
	logger  *zap.Logger
}

func NewHTTPSEnforcer(enabled bool, logger *zap.Logger, exemptPaths ...string) *HTTPSEnforcer {
	exempt := make(map[string]bool, len(exemptPaths))
	for _, path := range exemptPaths {
		exempt[path] = true
	}

	return &HTTPSEnforcer{
		enabled: enabled,
		exempt:  exempt,
		logger:  logger,
	}
}

func (he *HTTPSEnforcer) secure(c *gin.Context) bool {
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		return true
	}

	host := c.Request.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	return localHosts[host] || he.exempt[c.Request.URL.Path]
}

func (he *HTTPSEnforcer) HTTPSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !he.enabled || he.secure(c) {
			c.Next()
			return
		}

		target := "https://" + c.Request.Host + c.Request.URL.RequestURI()

		he.logger.Info("Redirecting to HTTPS",
			zap.String("path", c.Request.URL.Path),
			zap.String("https_url", target))

		c.Redirect(http.StatusMovedPermanently, target)
		c.Abort()
	}
}
