package seatmap

import "fmt"

// DefaultBudget is the reservation window in seconds.
const DefaultBudget = 300

// Countdown is the session timer. It moves through exactly two phases,
// running and expired, and reports the transition between them exactly
// once no matter how many ticks arrive after zero.
type Countdown struct {
	remaining int
	expired   bool
}

func NewCountdown(seconds int) *Countdown {
	if seconds < 0 {
		seconds = 0
	}
	return &Countdown{remaining: seconds}
}

// Tick consumes one elapsed second. It returns true only on the transition
// into the expired phase; every tick after that is absorbed.
func (c *Countdown) Tick() bool {
	if c.expired {
		return false
	}
	if c.remaining > 0 {
		c.remaining--
	}
	if c.remaining == 0 {
		c.expired = true
		return true
	}
	return false
}

func (c *Countdown) Remaining() int {
	return c.remaining
}

func (c *Countdown) Expired() bool {
	return c.expired
}

// String renders the remaining time as M:SS.
func (c *Countdown) String() string {
	return fmt.Sprintf("%d:%02d", c.remaining/60, c.remaining%60)
}
