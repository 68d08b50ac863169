package handler

import (
	"context"
	"net/http"
	"strconv"

	. "todoapi/internal/adapter/http/helper"
	"todoapi/pkg/logger"
	. "todoapi/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type baseHandler struct {
	Logger *logger.LokiLogger
}

func (h baseHandler) startSpan(c *gin.Context, name string) (context.Context, trace.Span) {
	return CreateChildSpan(c.Request.Context(), "handler."+name, []attribute.KeyValue{
		attribute.String("handler.operation", name),
		attribute.String("handler.method", c.Request.Method),
		attribute.String("handler.path", c.FullPath()),
	})
}

// fail writes the error envelope. Server errors are logged and marked on span.
func (h baseHandler) fail(c *gin.Context, ctx context.Context, span trace.Span, operation string, err error) {
	status := SendError(c, err)

	AddHTTPAttributes(span, c.Request.Method, c.FullPath(), status)

	if status >= http.StatusInternalServerError {
		AddSpanError(span, err)

		h.Logger.ErrorWithTrace(ctx, "Request failed",
			zap.String("operation", operation),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
}

// paramID reads a positive integer path parameter. Anything else is treated
// as a missing resource.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		SendNotFoundError(c)
		return 0, false
	}

	return id, true
}
