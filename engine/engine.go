// Package engine is the interrupt-driven scheduler behind the micro:bit LED display.
//
// The engine owns one timer and the display GPIO. Every timer interrupt it is
// told about (HandleEvent) either moves to the next pin row, or switches a
// greyscale level of the current row on or off. It never blocks, allocates or
// fails once started.
package engine

import (
	"errors"

	"github.com/flavioheleno/microbit/image5x5"
	"github.com/flavioheleno/microbit/matrix"
)

// Timer is a hardware timer programmed to drive the display.
//
// The primary cycle repeats every CycleTicks ticks. The secondary alarm fires
// at most once per cycle, at the programmed offset from the start of the cycle.
type Timer interface {
	// InitialiseCycle starts the primary cycle, ticks long, with its interrupt enabled.
	InitialiseCycle(ticks uint16)
	// EnableSecondary enables the secondary alarm interrupt.
	EnableSecondary()
	// DisableSecondary disables the secondary alarm interrupt.
	DisableSecondary()
	// ProgramSecondary sets the secondary alarm offset; ticks must be less than the cycle.
	ProgramSecondary(ticks uint16)
	// CheckPrimary reports and clears the primary event.
	CheckPrimary() bool
	// CheckSecondary reports and clears the secondary event.
	CheckSecondary() bool
}

// Control drives the LED row and column pins.
//
// A column mask has bit i set for column pin i.
type Control interface {
	// InitialiseForDisplay makes every row and column pin an output with all LEDs off.
	InitialiseForDisplay()
	// DisplayRowLEDs lights exactly cols on row, turning every other row off.
	DisplayRowLEDs(row int, cols uint32)
	// LightCurrentRowLEDs additionally lights cols on the active row.
	LightCurrentRowLEDs(cols uint32)
	// DarkenCurrentRowLEDs switches cols off on the active row.
	DarkenCurrentRowLEDs(cols uint32)
}

// Event reports what HandleEvent did.
type Event uint8

const (
	// EventRow means a new pin row was lit.
	EventRow Event = 1 << iota
	// EventLevel means a greyscale level of the current row was switched.
	EventLevel
)

// NewRow reports whether a new row was lit.
func (e Event) NewRow() bool { return e&EventRow != 0 }

// LevelChange reports whether a greyscale level was switched.
func (e Event) LevelChange() bool { return e&EventLevel != 0 }

// Engine is the display scheduler.
//
// HandleEvent and SetFrame must never run concurrently or interrupt each
// other; the caller provides that exclusion.
type Engine struct {
	timer   Timer
	control Control
	layout  *matrix.Layout
	timing  Timing
	align   Alignment

	frame matrix.Frame
	row   int
	level uint8 // next greyscale level to service in this row, 0 for none
}

// New returns an engine for the layout. Call Start before the first interrupt.
func New(t Timer, c Control, l *matrix.Layout, timing Timing, align Alignment) (*Engine, error) {
	if t == nil {
		return nil, errors.New("engine: nil timer")
	}
	if c == nil {
		return nil, errors.New("engine: nil control")
	}
	if l == nil {
		return nil, errors.New("engine: nil layout")
	}
	if err := timing.Validate(); err != nil {
		return nil, err
	}
	if align != AlignStart && align != AlignEnd {
		return nil, errors.New("engine: invalid alignment")
	}
	e := &Engine{
		timer:   t,
		control: c,
		layout:  l,
		timing:  timing,
		align:   align,
	}
	e.frame = *matrix.NewFrame(l)
	return e, nil
}

// Start initialises the pins and starts the timer.
func (e *Engine) Start() {
	e.control.InitialiseForDisplay()
	e.timer.InitialiseCycle(e.timing.CycleTicks)
}

// Layout returns the layout the engine drives.
func (e *Engine) Layout() *matrix.Layout {
	return e.layout
}

// Timing returns the greyscale timing policy.
func (e *Engine) Timing() Timing {
	return e.timing
}

// Alignment returns the greyscale alignment.
func (e *Engine) Alignment() Alignment {
	return e.align
}

// Row returns the pin row currently lit.
func (e *Engine) Row() int {
	return e.row
}

// Frame returns the frame being displayed.
func (e *Engine) Frame() *matrix.Frame {
	return &e.frame
}

// SetFrame replaces the displayed frame with a copy of f.
// The new frame is used from the next interrupt on.
func (e *Engine) SetFrame(f *matrix.Frame) error {
	if f == nil {
		return errors.New("engine: nil frame")
	}
	if f.Layout() != e.layout {
		return errors.New("engine: frame layout does not match display")
	}
	e.frame = *f
	return nil
}

// HandleEvent services the timer. Call it from the timer's interrupt handler.
//
// Both events are polled and cleared. When the primary event fired, any
// secondary event belongs to the row being replaced and is dropped.
func (e *Engine) HandleEvent() Event {
	primary := e.timer.CheckPrimary()
	secondary := e.timer.CheckSecondary()
	switch {
	case primary:
		e.nextRow()
		return EventRow
	case secondary && e.level != 0:
		e.nextLevel()
		return EventLevel
	}
	return 0
}

func (e *Engine) nextRow() {
	e.row++
	if e.row == e.layout.Rows() {
		e.row = 0
	}
	plan := e.frame.Row(e.row)
	if e.align == AlignEnd {
		e.control.DisplayRowLEDs(e.row, plan.Lit(image5x5.MaxBrightness))
		e.level = e.following(plan, image5x5.MaxBrightness)
	} else {
		e.control.DisplayRowLEDs(e.row, plan.Base())
		e.level = e.following(plan, 0)
	}
	if e.level == 0 {
		e.timer.DisableSecondary()
		return
	}
	e.timer.ProgramSecondary(e.offset(e.level))
	e.timer.EnableSecondary()
}

func (e *Engine) nextLevel() {
	plan := e.frame.Row(e.row)
	if e.align == AlignEnd {
		e.control.LightCurrentRowLEDs(plan.Exactly(e.level))
	} else {
		e.control.DarkenCurrentRowLEDs(plan.Exactly(e.level))
	}
	e.level = e.following(plan, e.level)
	if e.level == 0 {
		e.timer.DisableSecondary()
		return
	}
	e.timer.ProgramSecondary(e.offset(e.level))
}

// following returns the next level after b, in service order, that has any
// LED in the plan, or 0. Full brightness is never serviced.
func (e *Engine) following(plan *matrix.RowPlan, b uint8) uint8 {
	if e.align == AlignEnd {
		for l := int(b) - 1; l > 0; l-- {
			if plan.Exactly(uint8(l)) != 0 {
				return uint8(l)
			}
		}
		return 0
	}
	for l := b + 1; l < image5x5.MaxBrightness; l++ {
		if plan.Exactly(l) != 0 {
			return l
		}
	}
	return 0
}

// offset returns when, within the row cycle, level b is switched.
func (e *Engine) offset(b uint8) uint16 {
	if e.align == AlignEnd {
		return e.timing.CycleTicks - e.timing.Levels[b-1]
	}
	return e.timing.Levels[b-1]
}

// Pending returns the greyscale level the next secondary alarm will service, or 0.
func (e *Engine) Pending() uint8 {
	return e.level
}
