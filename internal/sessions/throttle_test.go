package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityThrottle(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	throttle := NewActivityThrottle(client, time.Minute)

	assert.True(t, throttle.Allow(context.Background(), "s1"), "first touch in the window")
	assert.False(t, throttle.Allow(context.Background(), "s1"), "second touch is suppressed")
	assert.True(t, throttle.Allow(context.Background(), "s2"), "windows are per session")

	mr.FastForward(time.Minute + time.Second)
	assert.True(t, throttle.Allow(context.Background(), "s1"), "window elapsed")
}

func TestActivityThrottleFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	throttle := NewActivityThrottle(client, time.Minute)
	require.True(t, throttle.Allow(context.Background(), "s1"))

	mr.Close()
	assert.True(t, throttle.Allow(context.Background(), "s1"), "redis outage must not block touches")
}
