package relay

import (
	"math/rand/v2"
	"time"
)

const jitterWindow = 250 * time.Millisecond

// backoff doubles the wait after each failed batch, capped at max, and snaps
// back to base on success.
type backoff struct {
	base time.Duration
	max  time.Duration
	cur  time.Duration
}

func newBackoff(base, max time.Duration) *backoff {
	if max < base {
		max = base
	}
	return &backoff{base: base, max: max, cur: base}
}

func (b *backoff) fail() time.Duration {
	b.cur = min(b.cur*2, b.max)
	return b.cur
}

func (b *backoff) reset() time.Duration {
	b.cur = b.base
	return b.cur
}

func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + rand.N(jitterWindow)
}
