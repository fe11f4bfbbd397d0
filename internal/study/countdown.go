package study

import (
	"time"

	"github.com/vytor/flashdrill/internal/clock"
)

const tickInterval = time.Second

// countdown is the per-card timer. It holds no lock of its own; the owning
// session serializes every call.
type countdown struct {
	clock     clock.Clock
	total     int
	warnAt    int
	remaining int // -1 while inactive
	warned    bool
	gen       uint64
	timer     clock.Timer
}

type tick struct {
	remaining    int
	warning      bool
	firstWarning bool
	expired      bool
}

func newCountdown(clk clock.Clock, total, warnAt int) *countdown {
	return &countdown{clock: clk, total: total, warnAt: warnAt, remaining: -1}
}

// start resets the countdown for a new card and schedules the first tick.
// fire is called with the generation the tick belongs to.
func (c *countdown) start(fire func(gen uint64)) {
	c.cancel()
	c.gen++
	c.remaining = c.total
	c.warned = false
	c.schedule(fire)
}

func (c *countdown) schedule(fire func(gen uint64)) {
	gen := c.gen
	c.timer = c.clock.AfterFunc(tickInterval, func() { fire(gen) })
}

// cancel stops future ticks. Ticks already waiting on the session lock are
// rejected by advance because the generation moves on.
func (c *countdown) cancel() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
	c.remaining = -1
}

func (c *countdown) active() bool {
	return c.remaining >= 0
}

func (c *countdown) warning() bool {
	return c.active() && c.remaining <= c.warnAt
}

// advance consumes one tick. ok is false for a tick from a cancelled or
// replaced countdown.
func (c *countdown) advance(gen uint64) (t tick, ok bool) {
	if gen != c.gen || !c.active() {
		return tick{}, false
	}
	c.timer = nil
	c.remaining--

	t.remaining = c.remaining
	t.warning = c.remaining <= c.warnAt
	if t.warning && !c.warned {
		c.warned = true
		t.firstWarning = true
	}
	t.expired = c.remaining <= 0
	return t, true
}
