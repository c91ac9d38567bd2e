// Package matrix describes how the micro:bit's visible 5×5 LEDs are wired to row and
// column pins, and compiles images into per-row lighting plans (frames).
package matrix

import (
	"errors"
	"fmt"

	"github.com/flavioheleno/microbit/image5x5"
)

// MaxRows is the largest number of row pins a layout can have.
const MaxRows = 16

// MaxCols is the largest number of column pins a layout can have; a row's
// columns are held in a uint32 mask.
const MaxCols = 32

// LED is the visible (x, y) position of an LED.
type LED struct {
	X, Y int
}

// NoLED marks a column/row pin pair with no LED attached.
var NoLED = LED{X: -1, Y: -1}

// Layout is the correspondence between pin rows/columns and visible LEDs.
type Layout struct {
	name  string
	cols  int
	rows  int
	table [MaxCols][MaxRows]LED
}

// NewLayout builds a Layout from a table indexed [col][row].
//
// Every entry must be NoLED or a position inside the 5×5 image, and no
// position may be used twice.
func NewLayout(name string, table [][]LED) (*Layout, error) {
	cols := len(table)
	if cols == 0 || cols > MaxCols {
		return nil, fmt.Errorf("matrix: %s: column count %d must be between 1 and %d", name, cols, MaxCols)
	}
	rows := len(table[0])
	if rows == 0 || rows > MaxRows {
		return nil, fmt.Errorf("matrix: %s: row count %d must be between 1 and %d", name, rows, MaxRows)
	}

	l := &Layout{name: name, cols: cols, rows: rows}
	var seen [image5x5.Size][image5x5.Size]bool
	for c, col := range table {
		if len(col) != rows {
			return nil, fmt.Errorf("matrix: %s: column %d has %d rows, want %d", name, c, len(col), rows)
		}
		for r, led := range col {
			l.table[c][r] = led
			if led == NoLED {
				continue
			}
			if led.X < 0 || led.X >= image5x5.Size || led.Y < 0 || led.Y >= image5x5.Size {
				return nil, fmt.Errorf("matrix: %s: col %d row %d maps to (%d, %d) outside the image", name, c, r, led.X, led.Y)
			}
			if seen[led.Y][led.X] {
				return nil, fmt.Errorf("matrix: %s: LED (%d, %d) is mapped twice", name, led.X, led.Y)
			}
			seen[led.Y][led.X] = true
		}
	}
	return l, nil
}

// MustLayout is like NewLayout but panics on error. Use it for built-in tables.
func MustLayout(name string, table [][]LED) *Layout {
	l, err := NewLayout(name, table)
	if err != nil {
		panic(err)
	}
	return l
}

// Name returns the layout name.
func (l *Layout) Name() string {
	return l.name
}

// Cols returns the number of column pins.
func (l *Layout) Cols() int {
	return l.cols
}

// Rows returns the number of row pins.
func (l *Layout) Rows() int {
	return l.rows
}

// ImageCoordinates returns the visible LED driven by the given column and row pins.
func (l *Layout) ImageCoordinates(col, row int) (LED, bool) {
	if col < 0 || col >= l.cols || row < 0 || row >= l.rows {
		return NoLED, false
	}
	led := l.table[col][row]
	return led, led != NoLED
}

// Position returns the column and row pins driving the LED at (x, y).
func (l *Layout) Position(x, y int) (col, row int, ok bool) {
	for c := 0; c < l.cols; c++ {
		for r := 0; r < l.rows; r++ {
			if l.table[c][r] == (LED{X: x, Y: y}) {
				return c, r, true
			}
		}
	}
	return 0, 0, false
}

// String returns a string representation of the layout.
func (l *Layout) String() string {
	return fmt.Sprintf("matrix.Layout{%s %dx%d}", l.name, l.cols, l.rows)
}

var errNilLayout = errors.New("matrix: nil layout")

// v1Table is the micro:bit v1 wiring: 9 column pins by 3 row pins.
var v1Table = [][]LED{
	{{0, 0}, {4, 2}, {2, 4}},
	{{2, 0}, {0, 2}, {4, 4}},
	{{4, 0}, {2, 2}, {0, 4}},
	{{4, 3}, {1, 0}, {0, 1}},
	{{3, 3}, {3, 0}, {1, 1}},
	{{2, 3}, {3, 4}, {2, 1}},
	{{1, 3}, {1, 4}, {3, 1}},
	{{0, 3}, NoLED, {4, 1}},
	{{1, 2}, NoLED, {3, 2}},
}

func identityTable(n int) [][]LED {
	t := make([][]LED, n)
	for c := range t {
		t[c] = make([]LED, n)
		for r := range t[c] {
			t[c][r] = LED{X: c, Y: r}
		}
	}
	return t
}

var (
	// V1 is the micro:bit v1 layout: 3 internal rows of 9 columns.
	V1 = MustLayout("v1", v1Table)
	// V2 is the micro:bit v2 layout: the 5×5 grid is wired directly.
	V2 = MustLayout("v2", identityTable(image5x5.Size))
)
