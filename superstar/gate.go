package superstar

import (
	"time"

	"github.com/temoto/moose/helpers/atomic_clock"
)

// Gate allows a network read once per interval.
// Zero interval means always due.
// Otherwise due when never marked, when interval elapsed (>=),
// or when clock went backwards since Mark.
type Gate struct {
	interval time.Duration
	last     atomic_clock.Clock
}

func NewGate(interval time.Duration) *Gate { return &Gate{interval: interval} }

func (g *Gate) Interval() time.Duration { return g.interval }

func (g *Gate) Due(now time.Time) bool {
	if g.interval <= 0 || g.last.IsZero() {
		return true
	}
	age := g.last.Age(now)
	return age < 0 || age >= g.interval
}

// Mark records successful fetch time.
func (g *Gate) Mark(now time.Time) { g.last.SetTime(now) }

func (g *Gate) Reset() { g.last.Reset() }
