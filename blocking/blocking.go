// Package blocking drives the micro:bit LED matrix from the calling
// goroutine, without a timer interrupt.
//
// Show scans the pin rows itself, holding each one for the row delay, and
// returns once the requested duration has been spent. LEDs are either on or
// off: any brightness above zero is fully lit. Use the microbit package for
// greyscale and for a display that keeps running in the background.
//
// Example usage:
//
//	dev, err := blocking.New(ports, &blocking.Opts{Board: &microbit.V1})
//	if err != nil {
//		log.Fatal(err)
//	}
//	for {
//		dev.Show(ctx, heart, time.Second)
//		time.Sleep(250 * time.Millisecond)
//	}
package blocking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/physic"

	"github.com/flavioheleno/microbit"
	"github.com/flavioheleno/microbit/control"
	"github.com/flavioheleno/microbit/image5x5"
	"github.com/flavioheleno/microbit/matrix"
)

// DefaultRowDelay is how long each pin row stays lit unless changed.
const DefaultRowDelay = 2 * time.Millisecond

// Opts is the configuration for the display.
type Opts struct {
	// Board selects the wiring (default: V2).
	Board *microbit.Board
	// RowDelay is the time spent on each pin row (default: DefaultRowDelay).
	RowDelay time.Duration
	// Delay waits for the given time (default: time.Sleep).
	Delay func(time.Duration)
	// Logger receives lifecycle events (default: disabled).
	Logger *zerolog.Logger
}

// Display is a micro:bit LED matrix refreshed by Show.
//
// A Display is not safe for concurrent use.
type Display struct {
	gpio     *control.GPIO
	board    microbit.Board
	frame    *matrix.Frame
	rowDelay time.Duration
	delay    func(time.Duration)
	log      zerolog.Logger
}

// New returns a dark display driven through ports; a pin's Port field
// indexes ports.
func New(ports []control.Port, opts *Opts) (*Display, error) {
	if opts == nil {
		opts = &Opts{}
	}
	board := microbit.V2
	if opts.Board != nil {
		board = *opts.Board
	}
	if err := board.Validate(); err != nil {
		return nil, err
	}
	g, err := control.NewGPIO(board.Pinout, ports)
	if err != nil {
		return nil, err
	}
	d := &Display{
		gpio:     g,
		board:    board,
		frame:    matrix.NewFrame(board.Layout),
		rowDelay: DefaultRowDelay,
		delay:    opts.Delay,
		log:      zerolog.Nop(),
	}
	if opts.RowDelay != 0 {
		if err := d.SetRowDelay(opts.RowDelay); err != nil {
			return nil, err
		}
	}
	if d.delay == nil {
		d.delay = time.Sleep
	}
	if opts.Logger != nil {
		d.log = opts.Logger.With().Str("board", board.Name).Logger()
	}
	g.InitialiseForDisplay()
	d.log.Debug().Dur("row", d.rowDelay).Msg("blocking display ready")
	return d, nil
}

// Board returns the board being driven.
func (d *Display) Board() microbit.Board {
	return d.board
}

// RowDelay returns the time spent on each pin row.
func (d *Display) RowDelay() time.Duration {
	return d.rowDelay
}

// SetRowDelay sets the time spent on each pin row.
func (d *Display) SetRowDelay(delay time.Duration) error {
	if delay <= 0 {
		return fmt.Errorf("blocking: row delay must be positive, got %s", delay)
	}
	d.rowDelay = delay
	return nil
}

// SetRefreshRate sets the row delay so that a full scan of the matrix runs
// at f.
func (d *Display) SetRefreshRate(f physic.Frequency) error {
	if f <= 0 {
		return errors.New("blocking: refresh rate must be positive")
	}
	return d.SetRowDelay(f.Period() / time.Duration(d.board.Layout.Rows()))
}

// RefreshPeriod returns the time of one full scan of the matrix.
func (d *Display) RefreshPeriod() time.Duration {
	return d.rowDelay * time.Duration(d.board.Layout.Rows())
}

// Clear turns every LED off.
func (d *Display) Clear() {
	d.gpio.Blank()
}

// Show displays r for dur, then turns the display off.
//
// The matrix is scanned a whole number of times, as many as fit in dur; a
// duration shorter than one scan shows nothing. Show returns ctx.Err() if
// ctx is done between scans.
func (d *Display) Show(ctx context.Context, r image5x5.Render, dur time.Duration) error {
	if err := d.frame.Set(r); err != nil {
		return err
	}
	defer d.gpio.Blank()

	scans := int(dur / d.RefreshPeriod())
	d.log.Trace().Int("scans", scans).Stringer("frame", d.frame).Msg("show")
	for i := 0; i < scans; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for row := 0; row < d.frame.Rows(); row++ {
			d.gpio.DisplayRowLEDs(row, d.frame.Row(row).Base())
			d.delay(d.rowDelay)
		}
	}
	return nil
}

func (d *Display) String() string {
	return fmt.Sprintf("blocking.Display{%s %s}", d.board.Name, d.rowDelay)
}
