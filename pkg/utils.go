package pkg

import (
	"github.com/gin-gonic/gin"
)

// GetClientIP returns the caller address as resolved by gin. Forwarding
// headers only count when the peer is a trusted proxy (see
// gin.Engine.SetTrustedProxies).
func GetClientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}

	return "unknown"
}
