// Package control drives the micro:bit LED matrix row and column pins.
//
// LEDs are lit by driving their row pin high and their column pin low. Pins
// are grouped in GPIO ports written a whole 32-bit word at a time, the way
// the nRF OUTSET/OUTCLR registers work.
package control

import (
	"fmt"
	"strconv"
	"strings"
)

// Pin is one GPIO pin: a port index and the bit within that port.
type Pin struct {
	Port int
	Num  uint8
}

// String returns the pin in "P<port>.<num>" form.
func (p Pin) String() string {
	return fmt.Sprintf("P%d.%02d", p.Port, p.Num)
}

// ParsePin parses "P0.21" or "P1.5".
func ParsePin(s string) (Pin, error) {
	rest, ok := strings.CutPrefix(strings.ToUpper(strings.TrimSpace(s)), "P")
	if !ok {
		return Pin{}, fmt.Errorf("control: pin %q must look like P0.21", s)
	}
	port, num, ok := strings.Cut(rest, ".")
	if !ok {
		return Pin{}, fmt.Errorf("control: pin %q must look like P0.21", s)
	}
	p, err := strconv.Atoi(port)
	if err != nil || p < 0 {
		return Pin{}, fmt.Errorf("control: pin %q: bad port", s)
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 0 || n > 31 {
		return Pin{}, fmt.Errorf("control: pin %q: bit must be 0-31", s)
	}
	return Pin{Port: p, Num: uint8(n)}, nil
}

// Pinout assigns the matrix row and column pins.
// Rows[i] drives pin row i and Cols[i] column i, matching the matrix layout.
type Pinout struct {
	Name string
	Rows []Pin
	Cols []Pin
}

// Ports returns the number of ports the pinout uses.
func (p *Pinout) Ports() int {
	n := 0
	for _, pins := range [][]Pin{p.Rows, p.Cols} {
		for _, pin := range pins {
			if pin.Port+1 > n {
				n = pin.Port + 1
			}
		}
	}
	return n
}

// Validate checks the pinout against a port count and a matrix size.
func (p *Pinout) Validate(ports, rows, cols int) error {
	if len(p.Rows) != rows {
		return fmt.Errorf("control: %s has %d row pins, matrix has %d rows", p.Name, len(p.Rows), rows)
	}
	if len(p.Cols) != cols {
		return fmt.Errorf("control: %s has %d column pins, matrix has %d columns", p.Name, len(p.Cols), cols)
	}
	if n := p.Ports(); n > ports {
		return fmt.Errorf("control: %s needs %d ports, got %d", p.Name, n, ports)
	}
	seen := map[Pin]bool{}
	for _, pins := range [][]Pin{p.Rows, p.Cols} {
		for _, pin := range pins {
			if pin.Num > 31 {
				return fmt.Errorf("control: %s: %s is not a port bit", p.Name, pin)
			}
			if seen[pin] {
				return fmt.Errorf("control: %s: %s used twice", p.Name, pin)
			}
			seen[pin] = true
		}
	}
	return nil
}

func p0(nums ...uint8) []Pin {
	pins := make([]Pin, len(nums))
	for i, n := range nums {
		pins[i] = Pin{Port: 0, Num: n}
	}
	return pins
}

var (
	// V1Pinout is the micro:bit v1 wiring: one GPIO port, 3 rows, 9 columns.
	V1Pinout = Pinout{
		Name: "v1",
		Rows: p0(13, 14, 15),
		Cols: p0(4, 5, 6, 7, 8, 9, 10, 11, 12),
	}
	// V2Pinout is the micro:bit v2 wiring: 5 rows on P0, columns split
	// between P0 and P1.
	V2Pinout = Pinout{
		Name: "v2",
		Rows: p0(21, 22, 15, 24, 19),
		Cols: []Pin{{0, 28}, {0, 11}, {0, 31}, {1, 5}, {0, 30}},
	}
)
