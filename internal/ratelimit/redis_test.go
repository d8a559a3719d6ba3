package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corstar/site-intake/pkg/logging"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func TestRedisLimiterSharedWindow(t *testing.T) {
	mr, client := setupTestRedis(t)
	first := NewRedisLimiter(client, 10*time.Second, logging.New("error"))
	second := NewRedisLimiter(client, 10*time.Second, logging.New("error"))

	assert.True(t, allow(t, first, "203.0.113.7"))
	assert.False(t, allow(t, second, "203.0.113.7"), "instances share the cool-down")
	assert.True(t, mr.Exists("ratelimit:intake:203.0.113.7"))

	mr.FastForward(11 * time.Second)
	assert.True(t, allow(t, second, "203.0.113.7"))
}

func TestRedisLimiterFailsOpen(t *testing.T) {
	mr, client := setupTestRedis(t)
	l := NewRedisLimiter(client, 10*time.Second, logging.New("error"))
	mr.Close()

	ok, err := l.Allow(context.Background(), "203.0.113.7")
	assert.Error(t, err)
	assert.True(t, ok)
}

func TestRedisLimiterScopedNamespaces(t *testing.T) {
	mr, client := setupTestRedis(t)
	base := NewRedisLimiter(client, 10*time.Second, logging.New("error"))
	quote := base.Scoped("quote")
	lead := base.Scoped("lead")

	assert.True(t, allow(t, quote, "203.0.113.7"))
	assert.True(t, allow(t, lead, "203.0.113.7"), "endpoints keep separate windows")
	assert.False(t, allow(t, quote, "203.0.113.7"))
	assert.True(t, mr.Exists("ratelimit:intake:quote:203.0.113.7"))
}
