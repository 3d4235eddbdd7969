package superstar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGate(t *testing.T) {
	t.Parallel()

	base := time.Unix(1600000000, 0)
	type Case struct {
		name     string
		interval time.Duration
		mark     bool
		at       time.Duration
		expect   bool
	}
	cases := []Case{
		{"never-fetched", time.Second, false, 0, true},
		{"zero-same-instant", 0, true, 0, true},
		{"zero-later", 0, true, time.Millisecond, true},
		{"before-interval", time.Second, true, 999 * time.Millisecond, false},
		{"same-instant", time.Second, true, 0, false},
		{"exact-interval", time.Second, true, time.Second, true},
		{"after-interval", time.Second, true, 2 * time.Second, true},
		{"clock-backwards", time.Second, true, -time.Millisecond, true},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			g := NewGate(c.interval)
			if c.mark {
				g.Mark(base)
			}
			assert.Equal(t, c.expect, g.Due(base.Add(c.at)))
		})
	}
}

func TestGateReset(t *testing.T) {
	t.Parallel()

	now := time.Unix(1600000000, 0)
	g := NewGate(time.Minute)
	g.Mark(now)
	assert.False(t, g.Due(now))
	g.Reset()
	assert.True(t, g.Due(now))
	assert.Equal(t, time.Minute, g.Interval())
}
