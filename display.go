package microbit

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/display"
	"tinygo.org/x/drivers"

	"github.com/flavioheleno/microbit/control"
	"github.com/flavioheleno/microbit/engine"
	"github.com/flavioheleno/microbit/image5x5"
	"github.com/flavioheleno/microbit/matrix"
)

var (
	errHalted   = errors.New("microbit: halted")
	errNilFrame = errors.New("microbit: nil frame")
)

// Opts is the configuration for the display.
type Opts struct {
	// Board selects the wiring and timer rate (default: V2).
	Board *Board
	// Alignment selects where dim LEDs are lit within a row (default: AlignStart).
	Alignment engine.Alignment
	// Logger receives lifecycle events (default: disabled).
	Logger *zerolog.Logger
}

// Display is the micro:bit LED matrix.
//
// The timer interrupt must call HandleDisplayEvent. Every other method may be
// called from the application while the display runs.
type Display struct {
	cs     critical
	eng    *engine.Engine
	timer  engine.Timer
	gpio   *control.GPIO
	board  Board
	log    zerolog.Logger
	halted bool

	// back buffer for SetPixel and Draw
	mu   sync.Mutex
	back image5x5.Greyscale
}

var (
	_ display.Drawer    = (*Display)(nil)
	_ drivers.Displayer = (*Display)(nil)
)

// New starts a display driven by t through ports; a pin's Port field indexes
// ports.
//
// opts can be nil to use defaults (micro:bit v2, dimmer levels lit from the
// start of the row).
func New(t engine.Timer, ports []control.Port, opts *Opts) (*Display, error) {
	if opts == nil {
		opts = &Opts{}
	}
	board := V2
	if opts.Board != nil {
		board = *opts.Board
	}
	if err := board.Validate(); err != nil {
		return nil, err
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("board", board.Name).Logger()
	}

	g, err := control.NewGPIO(board.Pinout, ports)
	if err != nil {
		return nil, err
	}
	eng, err := engine.New(t, g, board.Layout, board.Timing, opts.Alignment)
	if err != nil {
		return nil, err
	}

	d := &Display{
		eng:   eng,
		timer: t,
		gpio:  g,
		board: board,
		log:   log,
		back:  image5x5.BlankGreyscale(),
	}
	eng.Start()
	d.log.Debug().
		Stringer("alignment", opts.Alignment).
		Dur("row", board.Timing.RowDwell()).
		Int("rows", board.Layout.Rows()).
		Msg("display started")
	return d, nil
}

// Board returns the board being driven.
func (d *Display) Board() Board {
	return d.board
}

// NewFrame returns a blank frame for this display.
func (d *Display) NewFrame() *matrix.Frame {
	return matrix.NewFrame(d.board.Layout)
}

// Show compiles r and displays it from the next row on.
func (d *Display) Show(r image5x5.Render) error {
	f := d.NewFrame()
	if err := f.Set(r); err != nil {
		return err
	}
	return d.ShowFrame(f)
}

// ShowFrame displays a copy of f from the next row on.
func (d *Display) ShowFrame(f *matrix.Frame) error {
	if f == nil {
		return errNilFrame
	}
	d.cs.enter()
	if d.halted {
		d.cs.exit()
		return errHalted
	}
	err := d.eng.SetFrame(f)
	d.cs.exit()
	if err != nil {
		return err
	}
	d.log.Trace().Stringer("frame", f).Msg("frame replaced")
	return nil
}

// SetFrame is ShowFrame.
func (d *Display) SetFrame(f *matrix.Frame) error {
	return d.ShowFrame(f)
}

// Clear turns every LED off and blanks the back buffer.
func (d *Display) Clear() error {
	d.mu.Lock()
	d.back = image5x5.BlankGreyscale()
	d.mu.Unlock()
	return d.ShowFrame(d.NewFrame())
}

// Frame returns a copy of the frame being displayed.
func (d *Display) Frame() *matrix.Frame {
	d.cs.enter()
	f := *d.eng.Frame()
	d.cs.exit()
	return &f
}

// HandleDisplayEvent services the display timer. Call it from the timer
// interrupt.
func (d *Display) HandleDisplayEvent() engine.Event {
	d.cs.enter()
	defer d.cs.exit()
	if d.halted {
		return 0
	}
	return d.eng.HandleEvent()
}

// ColorModel implements display.Drawer.
func (d *Display) ColorModel() color.Model {
	return image5x5.BrightnessModel
}

// Bounds implements display.Drawer.
func (d *Display) Bounds() image.Rectangle {
	return image5x5.Rect
}

// Draw implements display.Drawer.
//
// The part of src that lands on the display is converted to brightness levels
// and merged into the back buffer, which is then shown.
func (d *Display) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.Halted() {
		return errHalted
	}
	r := dst.Intersect(image5x5.Rect)
	d.mu.Lock()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := src.At(sp.X+x-dst.Min.X, sp.Y+y-dst.Min.Y)
			d.back = d.back.With(x, y, brightness(c))
		}
	}
	back := d.back
	d.mu.Unlock()
	return d.Show(back)
}

// Size implements drivers.Displayer.
func (d *Display) Size() (x, y int16) {
	return image5x5.Size, image5x5.Size
}

// SetPixel implements drivers.Displayer. It only updates the back buffer;
// call Display to show it.
func (d *Display) SetPixel(x, y int16, c color.RGBA) {
	d.mu.Lock()
	d.back = d.back.With(int(x), int(y), brightness(c))
	d.mu.Unlock()
}

// Display implements drivers.Displayer: it shows the back buffer.
func (d *Display) Display() error {
	d.mu.Lock()
	back := d.back
	d.mu.Unlock()
	return d.Show(back)
}

// Halted reports whether Halt was called.
func (d *Display) Halted() bool {
	d.cs.enter()
	defer d.cs.exit()
	return d.halted
}

// Halt turns every LED off and stops the display timer.
//
// Later frame operations fail; HandleDisplayEvent does nothing.
func (d *Display) Halt() error {
	d.cs.enter()
	if d.halted {
		d.cs.exit()
		return nil
	}
	d.halted = true
	d.timer.DisableSecondary()
	d.gpio.DisplayRowLEDs(d.eng.Row(), 0)
	d.cs.exit()

	if s, ok := d.timer.(interface{ Stop() }); ok {
		s.Stop()
	}
	d.log.Debug().Msg("display halted")
	return nil
}

// String returns a string representation of the display.
func (d *Display) String() string {
	return fmt.Sprintf("microbit.Display{%s %dx%d}", d.board.Name, image5x5.Size, image5x5.Size)
}

func brightness(c color.Color) uint8 {
	return image5x5.BrightnessModel.Convert(c).(image5x5.Brightness).L
}
