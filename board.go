package microbit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flavioheleno/microbit/control"
	"github.com/flavioheleno/microbit/engine"
	"github.com/flavioheleno/microbit/matrix"
	"github.com/flavioheleno/microbit/timer"
)

// Board describes one micro:bit revision: how the LEDs are wired and how
// fast the display timer runs.
type Board struct {
	Name   string
	Layout *matrix.Layout
	Pinout control.Pinout
	Timing engine.Timing
}

// V1 is the micro:bit v1: 3 pin rows by 9 pin columns on a single port.
var V1 = Board{
	Name:   "v1",
	Layout: matrix.V1,
	Pinout: control.V1Pinout,
	Timing: engine.V1Timing,
}

// V2 is the micro:bit v2: 5 rows by 5 columns, one column on the second port.
var V2 = Board{
	Name:   "v2",
	Layout: matrix.V2,
	Pinout: control.V2Pinout,
	Timing: engine.V2Timing,
}

// BoardByName returns the board called name ("v1" or "v2").
func BoardByName(name string) (Board, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "v1":
		return V1, nil
	case "v2", "":
		return V2, nil
	}
	return Board{}, fmt.Errorf("microbit: unknown board %q", name)
}

// Validate checks that the layout, pinout and timing agree with each other.
func (b *Board) Validate() error {
	if b.Layout == nil {
		return errors.New("microbit: board has no layout")
	}
	if err := b.Pinout.Validate(b.Pinout.Ports(), b.Layout.Rows(), b.Layout.Cols()); err != nil {
		return err
	}
	return b.Timing.Validate()
}

// Prescaler returns the nRF TIMER prescaler for the board's tick rate.
func (b *Board) Prescaler() (uint32, error) {
	return timer.Prescaler(b.Timing.ClockHz)
}

func (b *Board) String() string {
	return fmt.Sprintf("microbit.Board{%s %dx%d %s}", b.Name, b.Layout.Cols(), b.Layout.Rows(), b.Timing.RowDwell())
}
