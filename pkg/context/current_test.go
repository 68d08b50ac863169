package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	assert.Equal(t, "", RequestID(context.Background()))

	current := NewCurrent()
	ctx := WithCurrent(context.Background(), current)
	assert.Equal(t, "", RequestID(ctx))

	current.Set(RequestIDKey, "req-42")
	assert.Equal(t, "req-42", RequestID(ctx))

	current.Set(RequestIDKey, 42)
	assert.Equal(t, "", RequestID(ctx))
}
