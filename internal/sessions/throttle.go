package sessions

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ActivityThrottle debounces last_active_at writes so a chatty client does
// not turn every request into an UPDATE. Redis failures fail open: the touch
// proceeds.
type ActivityThrottle struct {
	client *redis.Client
	window time.Duration
}

// NewActivityThrottle constructs a throttle. A non-positive window defaults
// to one minute.
func NewActivityThrottle(client *redis.Client, window time.Duration) *ActivityThrottle {
	if window <= 0 {
		window = time.Minute
	}
	return &ActivityThrottle{client: client, window: window}
}

// Allow reports whether the session may be touched now. The first call per
// window wins via SETNX; later calls within the window are suppressed.
func (t *ActivityThrottle) Allow(ctx context.Context, sessionID string) bool {
	ok, err := t.client.SetNX(ctx, "session:touch:"+sessionID, 1, t.window).Result()
	if err != nil {
		return true
	}
	return ok
}
