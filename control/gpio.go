package control

import (
	"errors"
	"fmt"
)

// Port is a GPIO port whose pins are written as bitmasks.
//
// A write need not be atomic: pins within one mask may change one at a time,
// in any order. GPIO never mixes row and column pins in a single write.
type Port interface {
	// Configure makes the masked pins outputs.
	Configure(mask uint32)
	// Set drives the masked pins high.
	Set(mask uint32)
	// Clear drives the masked pins low.
	Clear(mask uint32)
}

// GPIO drives the LED matrix through one or more ports.
//
// Methods other than NewGPIO never allocate; they are called from the
// display interrupt.
type GPIO struct {
	ports  []Port
	pinout Pinout

	rowBits []uint32 // every row pin, per port
	colBits []uint32 // every column pin, per port

	// scratch, per port
	sel   []uint32
	unsel []uint32
}

// NewGPIO returns a GPIO driving pinout through ports; pin.Port indexes ports.
func NewGPIO(pinout Pinout, ports []Port) (*GPIO, error) {
	if len(ports) == 0 {
		return nil, errors.New("control: no ports")
	}
	if err := pinout.Validate(len(ports), len(pinout.Rows), len(pinout.Cols)); err != nil {
		return nil, err
	}
	if len(pinout.Cols) > 32 {
		return nil, fmt.Errorf("control: %s has %d columns, at most 32 fit a mask", pinout.Name, len(pinout.Cols))
	}
	for i, p := range ports {
		if p == nil {
			return nil, fmt.Errorf("control: port %d is nil", i)
		}
	}
	n := len(ports)
	g := &GPIO{
		ports:   ports,
		pinout:  pinout,
		rowBits: make([]uint32, n),
		colBits: make([]uint32, n),
		sel:     make([]uint32, n),
		unsel:   make([]uint32, n),
	}
	for _, pin := range pinout.Rows {
		g.rowBits[pin.Port] |= 1 << pin.Num
	}
	for _, pin := range pinout.Cols {
		g.colBits[pin.Port] |= 1 << pin.Num
	}
	return g, nil
}

// Pinout returns the pin assignment.
func (g *GPIO) Pinout() Pinout {
	return g.pinout
}

// InitialiseForDisplay makes every matrix pin an output, columns high (off)
// and rows low.
func (g *GPIO) InitialiseForDisplay() {
	for p, port := range g.ports {
		if all := g.rowBits[p] | g.colBits[p]; all != 0 {
			port.Configure(all)
		}
		if g.colBits[p] != 0 {
			port.Set(g.colBits[p])
		}
		if g.rowBits[p] != 0 {
			port.Clear(g.rowBits[p])
		}
	}
}

// split translates a column mask into per-port words: sel holds the pins of
// the selected columns, unsel the pins of the others.
func (g *GPIO) split(cols uint32) {
	for p := range g.sel {
		g.sel[p] = 0
		g.unsel[p] = 0
	}
	for i, pin := range g.pinout.Cols {
		if cols&(1<<i) != 0 {
			g.sel[pin.Port] |= 1 << pin.Num
		} else {
			g.unsel[pin.Port] |= 1 << pin.Num
		}
	}
}

// DisplayRowLEDs lights exactly cols on row and turns every other row off.
//
// Writes are ordered so that no intermediate pin state lights an LED that is
// lit in neither the old nor the new state: other rows go low, then the new
// columns go low, then the others go high, and the row goes high last. Rows
// and columns never share a write, so a Port that drives its pins one at a
// time in any order is safe.
func (g *GPIO) DisplayRowLEDs(row int, cols uint32) {
	g.split(cols)
	rp := g.pinout.Rows[row]
	rowBit := uint32(1) << rp.Num

	for p, port := range g.ports {
		others := g.rowBits[p]
		if p == rp.Port {
			others &^= rowBit
		}
		if others != 0 {
			port.Clear(others)
		}
	}
	for p, port := range g.ports {
		if g.sel[p] != 0 {
			port.Clear(g.sel[p])
		}
	}
	for p, port := range g.ports {
		if g.unsel[p] != 0 {
			port.Set(g.unsel[p])
		}
	}
	g.ports[rp.Port].Set(rowBit)
}

// Blank turns every LED off: rows low first, then columns high.
func (g *GPIO) Blank() {
	for p, port := range g.ports {
		if g.rowBits[p] != 0 {
			port.Clear(g.rowBits[p])
		}
	}
	for p, port := range g.ports {
		if g.colBits[p] != 0 {
			port.Set(g.colBits[p])
		}
	}
}

// LightCurrentRowLEDs drives the given columns low without touching rows.
func (g *GPIO) LightCurrentRowLEDs(cols uint32) {
	g.split(cols)
	for p, port := range g.ports {
		if g.sel[p] != 0 {
			port.Clear(g.sel[p])
		}
	}
}

// DarkenCurrentRowLEDs drives the given columns high without touching rows.
func (g *GPIO) DarkenCurrentRowLEDs(cols uint32) {
	g.split(cols)
	for p, port := range g.ports {
		if g.sel[p] != 0 {
			port.Set(g.sel[p])
		}
	}
}

// Lit returns, for each pin row, the columns whose LEDs the given port
// output levels light (row high, column low).
func Lit(pinout Pinout, levels []uint32) []uint32 {
	high := func(pin Pin) bool {
		return pin.Port < len(levels) && levels[pin.Port]&(1<<pin.Num) != 0
	}
	lit := make([]uint32, len(pinout.Rows))
	for r, rowPin := range pinout.Rows {
		if !high(rowPin) {
			continue
		}
		for c, colPin := range pinout.Cols {
			if !high(colPin) {
				lit[r] |= 1 << c
			}
		}
	}
	return lit
}
