package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certifly/internal/platform/config"
)

func TestNew_NotConfigured(t *testing.T) {
	c, err := New(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestClientOptions(t *testing.T) {
	t.Run("url supplies address and database", func(t *testing.T) {
		opts, err := clientOptions(config.RedisConfig{URL: "redis://cache:6380/2"})
		require.NoError(t, err)
		assert.Equal(t, "cache:6380", opts.Addr)
		assert.Equal(t, 2, opts.DB)
	})

	t.Run("set values override url defaults", func(t *testing.T) {
		opts, err := clientOptions(config.RedisConfig{
			URL:         "redis://cache:6379/0?dial_timeout=9s",
			PoolSize:    7,
			ReadTimeout: 250 * time.Millisecond,
		})
		require.NoError(t, err)
		assert.Equal(t, 7, opts.PoolSize)
		assert.Equal(t, 250*time.Millisecond, opts.ReadTimeout)
		assert.Equal(t, 9*time.Second, opts.DialTimeout, "unset fields keep the url value")
	})

	t.Run("malformed url", func(t *testing.T) {
		_, err := clientOptions(config.RedisConfig{URL: "http://nope"})
		assert.Error(t, err)
	})
}
