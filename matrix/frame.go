package matrix

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/flavioheleno/microbit/image5x5"
)

// RowPlan is the lighting plan for one pin row.
//
// lit[b-1] holds the columns whose brightness is at least b, so the masks are
// nested: Lit(b) is always a superset of Lit(b+1).
type RowPlan struct {
	lit [image5x5.MaxBrightness]uint32
}

// Lit returns the columns with brightness >= b. Lit(0) is the same as Lit(1).
func (p *RowPlan) Lit(b uint8) uint32 {
	if b == 0 {
		b = 1
	}
	if b > image5x5.MaxBrightness {
		return 0
	}
	return p.lit[b-1]
}

// Exactly returns the columns with brightness exactly b (1-9).
func (p *RowPlan) Exactly(b uint8) uint32 {
	if b == 0 || b > image5x5.MaxBrightness {
		return 0
	}
	if b == image5x5.MaxBrightness {
		return p.lit[b-1]
	}
	return p.lit[b-1] &^ p.lit[b]
}

// Base returns every column with nonzero brightness.
func (p *RowPlan) Base() uint32 {
	return p.lit[0]
}

// light adds cols at brightness b.
func (p *RowPlan) light(b uint8, cols uint32) {
	if b > image5x5.MaxBrightness {
		b = image5x5.MaxBrightness
	}
	for i := uint8(0); i < b; i++ {
		p.lit[i] |= cols
	}
}

func (p *RowPlan) clear() {
	*p = RowPlan{}
}

// Frame is a compiled representation of a 5×5 image, one RowPlan per pin row.
//
// A Frame is a plain value: preparing one (Set) can happen anywhere, only
// handing it to the display needs to be excluded from the display interrupt.
type Frame struct {
	layout *Layout
	plans  [MaxRows]RowPlan
}

// NewFrame returns a blank frame for the layout.
func NewFrame(l *Layout) *Frame {
	return &Frame{layout: l}
}

// Layout returns the layout the frame was compiled for.
func (f *Frame) Layout() *Layout {
	return f.layout
}

// Rows returns the number of row plans.
func (f *Frame) Rows() int {
	if f.layout == nil {
		return 0
	}
	return f.layout.rows
}

// Row returns the plan for pin row i.
func (f *Frame) Row(i int) *RowPlan {
	return &f.plans[i]
}

// Set compiles r into the frame, replacing all previous content.
func (f *Frame) Set(r image5x5.Render) error {
	if f.layout == nil {
		return errNilLayout
	}
	for row := 0; row < f.layout.rows; row++ {
		plan := &f.plans[row]
		plan.clear()
		for col := 0; col < f.layout.cols; col++ {
			led, ok := f.layout.ImageCoordinates(col, row)
			if !ok {
				continue
			}
			if b := r.BrightnessAt(led.X, led.Y); b > 0 {
				plan.light(b, 1<<col)
			}
		}
	}
	return nil
}

// Clear blanks every row.
func (f *Frame) Clear() {
	for i := range f.plans {
		f.plans[i].clear()
	}
}

// Blank reports whether no LED is lit.
func (f *Frame) Blank() bool {
	for i := 0; i < f.Rows(); i++ {
		if f.plans[i].Base() != 0 {
			return false
		}
	}
	return true
}

// BrightnessAt reports the brightness the frame gives LED (x, y).
// It makes a Frame usable as an image5x5.Render.
func (f *Frame) BrightnessAt(x, y int) uint8 {
	if f.layout == nil {
		return 0
	}
	col, row, ok := f.layout.Position(x, y)
	if !ok {
		return 0
	}
	plan := &f.plans[row]
	var b uint8
	for b < image5x5.MaxBrightness && plan.lit[b]&(1<<col) != 0 {
		b++
	}
	return b
}

// String returns a string representation of the frame.
func (f *Frame) String() string {
	var sb strings.Builder
	sb.WriteString("matrix.Frame{")
	for i := 0; i < f.Rows(); i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d:%d", i, bits.OnesCount32(f.plans[i].Base()))
	}
	sb.WriteByte('}')
	return sb.String()
}
