package engine

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/physic"

	"github.com/flavioheleno/microbit/image5x5"
)

// Timing is the greyscale time-slicing policy.
//
// Each pin row is lit for CycleTicks timer ticks. An LED at brightness b
// (1-8) is lit for Levels[b-1] of those ticks; brightness 9 is lit for the
// whole cycle and brightness 0 never.
type Timing struct {
	// ClockHz is the timer tick rate.
	ClockHz physic.Frequency
	// CycleTicks is the row dwell time in ticks.
	CycleTicks uint16
	// Levels holds the lit duration in ticks for brightness 1 to 8.
	Levels [image5x5.MaxBrightness - 1]uint16
}

// micropythonLevels are the micro:bit MicroPython greyscale durations; each
// step is roughly 1.9× the previous one.
var micropythonLevels = [image5x5.MaxBrightness - 1]uint16{2, 4, 8, 15, 28, 53, 102, 199}

// V1Timing drives a 16-bit timer at 62.5kHz: 6ms per row, 18ms per refresh.
var V1Timing = Timing{
	ClockHz:    62500 * physic.Hertz,
	CycleTicks: 375,
	Levels:     micropythonLevels,
}

// V2Timing drives a 16-bit timer at 125kHz: 3ms per row, 15ms per refresh.
var V2Timing = Timing{
	ClockHz:    125 * physic.KiloHertz,
	CycleTicks: 375,
	Levels:     micropythonLevels,
}

// Validate checks that every level has a distinct offset inside the cycle.
func (t *Timing) Validate() error {
	if t.CycleTicks < 2 {
		return errors.New("engine: cycle must be at least 2 ticks")
	}
	prev := uint16(0)
	for i, d := range t.Levels {
		if d <= prev {
			return fmt.Errorf("engine: level %d lasts %d ticks, must be longer than level %d (%d ticks)", i+1, d, i, prev)
		}
		if d >= t.CycleTicks {
			return fmt.Errorf("engine: level %d lasts %d ticks, must be shorter than the %d tick cycle", i+1, d, t.CycleTicks)
		}
		prev = d
	}
	return nil
}

// RowDwell returns how long each pin row is held.
func (t *Timing) RowDwell() time.Duration {
	if t.ClockHz == 0 {
		return 0
	}
	return time.Duration(t.CycleTicks) * t.ClockHz.Period()
}

// Duty returns the fraction of a row cycle an LED at brightness b is lit.
func (t *Timing) Duty(b uint8) float64 {
	switch {
	case b == 0:
		return 0
	case b >= image5x5.MaxBrightness:
		return 1
	}
	return float64(t.Levels[b-1]) / float64(t.CycleTicks)
}

// Alignment selects where within a row cycle dimmer LEDs are lit.
type Alignment int

const (
	// AlignStart lights every nonzero LED when the row starts and switches each
	// level off as its time expires.
	AlignStart Alignment = iota
	// AlignEnd lights only full-brightness LEDs when the row starts and switches
	// dimmer levels on late enough that they are lit until the row ends.
	AlignEnd
)

func (a Alignment) String() string {
	switch a {
	case AlignStart:
		return "start"
	case AlignEnd:
		return "end"
	}
	return fmt.Sprintf("Alignment(%d)", int(a))
}

// ParseAlignment is the inverse of Alignment.String.
func ParseAlignment(s string) (Alignment, error) {
	switch s {
	case "", "start":
		return AlignStart, nil
	case "end":
		return AlignEnd, nil
	}
	return 0, fmt.Errorf("engine: unknown alignment %q", s)
}
