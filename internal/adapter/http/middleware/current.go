package middleware

import (
	ct "todoapi/pkg/context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// CurrentMiddleware stores the request id on the request context and echoes
// it back in the response headers.
func CurrentMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		current := ct.NewCurrent()
		current.Set(ct.RequestIDKey, requestID)

		c.Request = c.Request.WithContext(ct.WithCurrent(c.Request.Context(), current))
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}
