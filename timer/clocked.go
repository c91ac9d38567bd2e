package timer

import (
	"context"
	"errors"
	"sync"
	"time"

	"periph.io/x/conn/v3/physic"
)

// maxCatchUp bounds how much simulated time one wake-up may replay.
const maxCatchUp = 100 * time.Millisecond

// Clocked runs a Sim at a fixed tick rate on its own goroutine, calling an
// interrupt handler whenever an enabled event fires.
//
// The handler is called without any Clocked lock held, so it may program the
// timer. It must serialise itself with whatever else touches the display.
type Clocked struct {
	freq     physic.Frequency
	interval time.Duration

	mu     sync.Mutex
	sim    *Sim
	cancel context.CancelFunc
	done   chan struct{}
}

// NewClocked returns a stopped timer ticking at freq, waking every interval
// to catch up on elapsed ticks.
func NewClocked(freq physic.Frequency, interval time.Duration) (*Clocked, error) {
	if freq <= 0 || freq.Period() <= 0 {
		return nil, errors.New("timer: invalid tick frequency")
	}
	if interval <= 0 {
		interval = time.Millisecond
	}
	return &Clocked{freq: freq, interval: interval, sim: NewSim()}, nil
}

// Start runs the clock until ctx is done or Stop is called.
func (c *Clocked) Start(ctx context.Context, isr func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return errors.New("timer: already started")
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	go c.run(ctx, isr)
	return nil
}

func (c *Clocked) run(ctx context.Context, isr func()) {
	defer close(c.done)
	tick := c.freq.Period()
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			if elapsed > maxCatchUp {
				last = now.Add(-maxCatchUp)
				elapsed = maxCatchUp
			}
			n := int(elapsed / tick)
			last = last.Add(time.Duration(n) * tick)
			for i := 0; i < n; i++ {
				c.mu.Lock()
				pending := c.sim.Tick()
				c.mu.Unlock()
				if pending {
					isr()
				}
			}
		}
	}
}

// Stop halts the counter and ends the clock goroutine. It does not wait for
// the goroutine; use Done for that.
func (c *Clocked) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sim.Stop()
	if c.cancel != nil {
		c.cancel()
	}
}

// Done is closed when the clock goroutine has exited. It is nil before Start.
func (c *Clocked) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// SetObserver installs a function called after every tick, on the clock goroutine.
func (c *Clocked) SetObserver(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sim.Observe = fn
}

// Frequency returns the tick rate.
func (c *Clocked) Frequency() physic.Frequency {
	return c.freq
}

// Stats returns the underlying Sim counters.
func (c *Clocked) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sim.Stats()
}

// InitialiseCycle restarts the counter with a primary cycle of ticks.
func (c *Clocked) InitialiseCycle(ticks uint16) {
	c.mu.Lock()
	c.sim.InitialiseCycle(ticks)
	c.mu.Unlock()
}

// EnableSecondary lets the secondary event wake the handler.
func (c *Clocked) EnableSecondary() {
	c.mu.Lock()
	c.sim.EnableSecondary()
	c.mu.Unlock()
}

// DisableSecondary stops the secondary event waking the handler.
func (c *Clocked) DisableSecondary() {
	c.mu.Lock()
	c.sim.DisableSecondary()
	c.mu.Unlock()
}

// ProgramSecondary sets the secondary compare value; see Sim.ProgramSecondary.
func (c *Clocked) ProgramSecondary(ticks uint16) {
	c.mu.Lock()
	c.sim.ProgramSecondary(ticks)
	c.mu.Unlock()
}

// CheckPrimary reports and clears the primary event.
func (c *Clocked) CheckPrimary() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sim.CheckPrimary()
}

// CheckSecondary reports and clears the secondary event.
func (c *Clocked) CheckSecondary() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sim.CheckSecondary()
}
