//go:build !tinygo

package microbit

import "sync"

// critical serialises frame replacement against the display handler. On a
// host the handler runs on a timer goroutine, so a mutex stands in for
// disabling interrupts.
type critical struct {
	mu sync.Mutex
}

func (c *critical) enter() {
	c.mu.Lock()
}

func (c *critical) exit() {
	c.mu.Unlock()
}
