// Package preview shows what a simulated micro:bit display looks like to the
// eye: how long each LED is lit, streamed to browsers over a websocket.
package preview

import (
	"image"
	"math"
	"sync"

	"github.com/flavioheleno/microbit"
	"github.com/flavioheleno/microbit/control"
	"github.com/flavioheleno/microbit/image5x5"
)

// Snapshot is the apparent brightness of every LED over a sampling window.
type Snapshot struct {
	Board  string                                `json:"board"`
	Ticks  uint64                                `json:"ticks"`
	Duty   [image5x5.Size][image5x5.Size]float64 `json:"duty"`   // fraction of time lit
	Levels [image5x5.Size][image5x5.Size]uint8   `json:"levels"` // nearest brightness level
}

// BrightnessAt returns the nearest brightness level of LED (x, y).
func (s *Snapshot) BrightnessAt(x, y int) uint8 {
	if x < 0 || y < 0 || x >= image5x5.Size || y >= image5x5.Size {
		return 0
	}
	return s.Levels[y][x]
}

type wire struct {
	port int
	bit  uint32
}

// Integrator samples the pin registers once per timer tick and accumulates
// how long each LED is lit.
type Integrator struct {
	board microbit.Board
	regs  []*control.Register
	rows  []wire
	cols  []wire
	leds  [][]image.Point // [row][col], X < 0 when unused

	mu    sync.Mutex
	ticks uint64
	lit   [image5x5.Size][image5x5.Size]uint64
	words []uint32
}

// NewIntegrator watches regs, the ports of a display on board b.
func NewIntegrator(b microbit.Board, regs []*control.Register) *Integrator {
	in := &Integrator{
		board: b,
		regs:  regs,
		words: make([]uint32, len(regs)),
	}
	for _, p := range b.Pinout.Rows {
		in.rows = append(in.rows, wire{p.Port, 1 << p.Num})
	}
	for _, p := range b.Pinout.Cols {
		in.cols = append(in.cols, wire{p.Port, 1 << p.Num})
	}
	in.leds = make([][]image.Point, len(in.rows))
	for r := range in.leds {
		in.leds[r] = make([]image.Point, len(in.cols))
		for c := range in.leds[r] {
			in.leds[r][c] = image.Point{X: -1}
			if led, ok := b.Layout.ImageCoordinates(c, r); ok {
				in.leds[r][c] = image.Point{X: led.X, Y: led.Y}
			}
		}
	}
	return in
}

// Sample records one tick. Install it as the timer's observer.
func (in *Integrator) Sample() {
	in.mu.Lock()
	defer in.mu.Unlock()
	for i, r := range in.regs {
		in.words[i] = r.Out()
	}
	in.ticks++
	for r, row := range in.rows {
		if in.words[row.port]&row.bit == 0 {
			continue
		}
		for c, col := range in.cols {
			if in.words[col.port]&col.bit != 0 {
				continue
			}
			if p := in.leds[r][c]; p.X >= 0 {
				in.lit[p.Y][p.X]++
			}
		}
	}
}

// Snapshot returns the brightness accumulated since the last Snapshot and
// starts a new window.
func (in *Integrator) Snapshot() Snapshot {
	in.mu.Lock()
	ticks, lit := in.ticks, in.lit
	in.ticks, in.lit = 0, [image5x5.Size][image5x5.Size]uint64{}
	in.mu.Unlock()

	s := Snapshot{Board: in.board.Name, Ticks: ticks}
	if ticks == 0 {
		return s
	}
	// An LED can only be lit while its row is selected.
	rows := float64(len(in.rows))
	for y := range lit {
		for x := range lit[y] {
			d := float64(lit[y][x]) * rows / float64(ticks)
			s.Duty[y][x] = d
			s.Levels[y][x] = in.level(d)
		}
	}
	return s
}

// level returns the brightness whose duty cycle is closest to d.
func (in *Integrator) level(d float64) uint8 {
	best, diff := uint8(0), math.Inf(1)
	for b := uint8(0); b <= image5x5.MaxBrightness; b++ {
		if e := math.Abs(in.board.Timing.Duty(b) - d); e < diff {
			best, diff = b, e
		}
	}
	return best
}
