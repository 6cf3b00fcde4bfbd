package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	require.NoError(t, Init(DefaultConfig()))
	assert.NotNil(t, L())
	assert.NotNil(t, S())
	assert.NotNil(t, Named("test"))
}

func TestInit_UnknownLevelFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "shouting"
	// Unknown levels fall back to info instead of failing startup.
	assert.NoError(t, Init(cfg))
}

func TestSetLevel(t *testing.T) {
	require.NoError(t, Init(DefaultConfig()))
	assert.NoError(t, SetLevel("debug"))
	assert.NoError(t, SetLevel("warn"))
	assert.Error(t, SetLevel("shouting"))
}

func TestContextLogger(t *testing.T) {
	require.NoError(t, Init(DefaultConfig()))

	ctx := context.Background()
	assert.NotNil(t, FromContext(ctx))

	named := Named("request")
	ctx = ToContext(ctx, named)
	assert.Equal(t, named, FromContext(ctx))
}

func TestWithCorrelationID(t *testing.T) {
	require.NoError(t, Init(DefaultConfig()))

	ctx := WithCorrelationID(context.Background(), "abc-123")
	assert.NotNil(t, FromContext(ctx))
}
