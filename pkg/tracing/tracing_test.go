package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

func TestTraceAndSpanIDs(t *testing.T) {
	assert.Equal(t, "", GetTraceID(context.Background()))
	assert.Equal(t, "", GetSpanID(context.Background()))

	spanContext := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0xab},
		SpanID:  trace.SpanID{0xcd},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanContext)

	assert.Equal(t, "ab000000000000000000000000000000", GetTraceID(ctx))
	assert.Equal(t, "cd00000000000000", GetSpanID(ctx))
}
