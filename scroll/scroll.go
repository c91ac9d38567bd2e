// Package scroll renders text that scrolls across the 5×5 display.
package scroll

import (
	"context"
	"image/color"
	"time"

	"tinygo.org/x/tinyfont"

	"github.com/flavioheleno/microbit/image5x5"
)

// baseline is where TomThumb capitals sit so that they fill rows 0 to 4.
const baseline = image5x5.Size

var on = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

// canvas is an off-screen monochrome surface that tinyfont draws on.
type canvas struct {
	w    int16
	cols []uint8 // one bit per row, bit y set when (x, y) is lit
}

func newCanvas(w int16) *canvas {
	return &canvas{w: w, cols: make([]uint8, w)}
}

func (c *canvas) Size() (x, y int16) {
	return c.w, image5x5.Size
}

func (c *canvas) SetPixel(x, y int16, col color.RGBA) {
	if x < 0 || x >= c.w || y < 0 || y >= image5x5.Size {
		return
	}
	if col.R|col.G|col.B == 0 {
		c.cols[x] &^= 1 << y
	} else {
		c.cols[x] |= 1 << y
	}
}

func (c *canvas) Display() error {
	return nil
}

// Text is a line of text laid out for scrolling. It enters from the right
// edge and leaves past the left edge.
type Text struct {
	s      string
	canvas *canvas
}

// NewText lays out s in the TomThumb font.
func NewText(s string) *Text {
	_, w := tinyfont.LineWidth(&tinyfont.TomThumb, s)
	c := newCanvas(int16(w) + 2*image5x5.Size)
	tinyfont.WriteLine(c, &tinyfont.TomThumb, image5x5.Size, baseline, s, on)
	return &Text{s: s, canvas: c}
}

// Len returns the number of scroll steps, blank first and last step included.
func (t *Text) Len() int {
	return int(t.canvas.w) - image5x5.Size + 1
}

// Step returns the window shown at step i. Steps outside [0, Len()) are blank.
func (t *Text) Step(i int) image5x5.Bits {
	var rows [image5x5.Size]uint8
	if i < 0 || i >= t.Len() {
		return image5x5.BitsFromRows(rows)
	}
	for x := 0; x < image5x5.Size; x++ {
		col := t.canvas.cols[i+x]
		for y := 0; y < image5x5.Size; y++ {
			if col&(1<<y) != 0 {
				rows[y] |= 1 << x
			}
		}
	}
	return image5x5.BitsFromRows(rows)
}

func (t *Text) String() string {
	return t.s
}

// Shower is anything that displays a 5×5 image.
type Shower interface {
	Show(r image5x5.Render) error
}

// Play shows every step of t on s, one per interval. It returns early when
// ctx is done or s fails.
func Play(ctx context.Context, s Shower, t *Text, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for i := 0; i < t.Len(); i++ {
		if err := s.Show(t.Step(i)); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
