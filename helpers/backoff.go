package helpers

import (
	"sync/atomic"
	"time"
)

// Limited exponential backoff for retry delays.
// Delay is 0 until first Failure, each next Failure multiplies it by K
// within [Min, Max]. Success resets to 0.
//
// Use scenario:
// for {
//   err := op()
//   backoff.Update(err == nil)
//   time.Sleep(max(interval, backoff.Delay()))
// }
type Backoff struct {
	next int64 // atomic align

	Min time.Duration
	Max time.Duration
	K   float32
	Res time.Duration // delay resolution for nice logs, default=1ms
}

func (b *Backoff) Delay() time.Duration {
	return time.Duration(atomic.LoadInt64(&b.next))
}

// Increase next Delay()
func (b *Backoff) Failure() time.Duration {
	next := time.Duration(atomic.LoadInt64(&b.next))
	next = b.limit(time.Duration(float32(next) * b.K))
	atomic.StoreInt64(&b.next, int64(next))
	return next
}

func (b *Backoff) Reset() { atomic.StoreInt64(&b.next, 0) }

func (b *Backoff) Update(success bool) time.Duration {
	if success {
		b.Reset()
		return 0
	}
	return b.Failure()
}

func (b *Backoff) limit(d time.Duration) time.Duration {
	if d < b.Min {
		d = b.Min
	}
	if b.Max != 0 && d > b.Max {
		d = b.Max
	}
	return b.round(d)
}

func (b *Backoff) round(d time.Duration) time.Duration {
	res := b.Res
	if res == 0 {
		res = 1 * time.Millisecond
	}
	return d / res * res
}
