package control

import (
	"fmt"
	"math/bits"
	"sync/atomic"

	"periph.io/x/conn/v3/gpio"
)

// Register is an in-memory GPIO port: a direction word and an output word.
// It can be read from another goroutine while the display writes to it.
type Register struct {
	// Trace, if set, is called after every Set or Clear with the new output word.
	Trace func(out uint32)

	out atomic.Uint32
	dir atomic.Uint32
}

// Configure makes the masked pins outputs.
func (r *Register) Configure(mask uint32) {
	r.dir.Or(mask)
}

// Set drives the masked pins high.
func (r *Register) Set(mask uint32) {
	v := r.out.Or(mask) | mask
	if r.Trace != nil {
		r.Trace(v)
	}
}

// Clear drives the masked pins low.
func (r *Register) Clear(mask uint32) {
	v := r.out.And(^mask) &^ mask
	if r.Trace != nil {
		r.Trace(v)
	}
}

// Out returns the output word.
func (r *Register) Out() uint32 {
	return r.out.Load()
}

// Dir returns the direction word; a set bit is an output.
func (r *Register) Dir() uint32 {
	return r.dir.Load()
}

// Levels returns the output words of regs, in order.
func Levels(regs ...*Register) []uint32 {
	out := make([]uint32, len(regs))
	for i, r := range regs {
		out[i] = r.Out()
	}
	return out
}

// PinPort is a Port made of individual periph.io output pins, one per bit.
//
// Port methods cannot fail; the first pin error is kept and returned by Err.
type PinPort struct {
	pins [32]gpio.PinOut
	err  error
}

// NewPinPort returns a port with pins[n] at bit n.
func NewPinPort(pins map[uint8]gpio.PinOut) (*PinPort, error) {
	p := &PinPort{}
	for n, pin := range pins {
		if n > 31 {
			return nil, fmt.Errorf("control: bit %d out of range", n)
		}
		if pin == nil {
			return nil, fmt.Errorf("control: bit %d has no pin", n)
		}
		p.pins[n] = pin
	}
	return p, nil
}

// Configure drives the masked pins low, which makes them outputs.
func (p *PinPort) Configure(mask uint32) {
	p.write(mask, gpio.Low)
}

// Set drives the masked pins high.
func (p *PinPort) Set(mask uint32) {
	p.write(mask, gpio.High)
}

// Clear drives the masked pins low.
func (p *PinPort) Clear(mask uint32) {
	p.write(mask, gpio.Low)
}

func (p *PinPort) write(mask uint32, l gpio.Level) {
	for mask != 0 {
		n := bits.TrailingZeros32(mask)
		mask &^= 1 << n
		pin := p.pins[n]
		if pin == nil {
			p.fail(fmt.Errorf("control: no pin at bit %d", n))
			continue
		}
		if err := pin.Out(l); err != nil {
			p.fail(fmt.Errorf("control: %s: %w", pin, err))
		}
	}
}

func (p *PinPort) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

// Err returns the first pin error, if any.
func (p *PinPort) Err() error {
	return p.err
}
