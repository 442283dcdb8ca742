package cache

import (
	"context"
	"testing"

	"github.com/lshigami/quizgrader/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptKey(t *testing.T) {
	assert.Equal(t, "quizgrader:attempt:42", attemptKey(42))
}

func TestNoopAttemptCache(t *testing.T) {
	c := NewNoopAttemptCache()
	require.NoError(t, c.Set(context.Background(), 1, map[string]int{"a": 1}))

	var dest map[string]int
	hit, err := c.Get(context.Background(), 1, &dest)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, dest)
}

func TestCacheDisabled(t *testing.T) {
	cfg := &config.Config{}
	client, err := NewRedisClient(cfg)
	require.NoError(t, err)
	assert.Nil(t, client)
	assert.IsType(t, noopAttemptCache{}, NewAttemptCache(client, cfg))
}
