//go:build tinygo

package microbit

import "runtime/interrupt"

// critical disables interrupts while the frame is replaced.
type critical struct {
	state interrupt.State
}

func (c *critical) enter() {
	c.state = interrupt.Disable()
}

func (c *critical) exit() {
	interrupt.Restore(c.state)
}
