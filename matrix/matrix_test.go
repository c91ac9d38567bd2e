package matrix

import (
	"testing"

	"github.com/flavioheleno/microbit/image5x5"
)

var greyHeart = image5x5.NewGreyscale([5][5]uint8{
	{0, 9, 0, 9, 0},
	{9, 5, 9, 5, 9},
	{9, 5, 1, 5, 9},
	{0, 9, 5, 9, 0},
	{0, 0, 9, 0, 0},
})

func gradient() image5x5.Greyscale {
	var rows [5][5]uint8
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			rows[y][x] = uint8((y*5 + x) % 10)
		}
	}
	return image5x5.NewGreyscale(rows)
}

func TestBuiltinLayoutsCoverEveryLED(t *testing.T) {
	tests := []struct {
		layout     *Layout
		cols, rows int
	}{
		{V1, 9, 3},
		{V2, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.layout.Name(), func(t *testing.T) {
			if tt.layout.Cols() != tt.cols || tt.layout.Rows() != tt.rows {
				t.Fatalf("size = %dx%d, want %dx%d", tt.layout.Cols(), tt.layout.Rows(), tt.cols, tt.rows)
			}
			var count [5][5]int
			for c := 0; c < tt.layout.Cols(); c++ {
				for r := 0; r < tt.layout.Rows(); r++ {
					if led, ok := tt.layout.ImageCoordinates(c, r); ok {
						count[led.Y][led.X]++
					}
				}
			}
			for y := range count {
				for x := range count[y] {
					if count[y][x] != 1 {
						t.Errorf("LED (%d, %d) mapped %d times", x, y, count[y][x])
					}
				}
			}
		})
	}
}

func TestLayoutPosition(t *testing.T) {
	col, row, ok := V1.Position(3, 4)
	if !ok || col != 5 || row != 1 {
		t.Errorf("V1.Position(3, 4) = (%d, %d, %v), want (5, 1, true)", col, row, ok)
	}
	if _, _, ok := V1.Position(5, 0); ok {
		t.Error("Position outside the image should fail")
	}
	if _, ok := V1.ImageCoordinates(7, 1); ok {
		t.Error("V1 col 7 row 1 has no LED")
	}
}

func TestNewLayoutValidation(t *testing.T) {
	tests := []struct {
		name  string
		table [][]LED
	}{
		{"empty", nil},
		{"no rows", [][]LED{{}}},
		{"ragged", [][]LED{{{0, 0}, {1, 0}}, {{2, 0}}}},
		{"outside image", [][]LED{{{5, 0}}}},
		{"negative", [][]LED{{{-2, 0}}}},
		{"duplicate", [][]LED{{{0, 0}}, {{0, 0}}}},
		{"too many columns", make([][]LED, MaxCols+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLayout(tt.name, tt.table); err == nil {
				t.Error("expected error but didn't get one")
			}
		})
	}

	if _, err := NewLayout("sparse", [][]LED{{NoLED, {1, 1}}}); err != nil {
		t.Errorf("sparse layout: %v", err)
	}
}

func TestFrameMasksAreNested(t *testing.T) {
	for _, l := range []*Layout{V1, V2} {
		f := NewFrame(l)
		if err := f.Set(gradient()); err != nil {
			t.Fatal(err)
		}
		for r := 0; r < f.Rows(); r++ {
			plan := f.Row(r)
			for b := uint8(1); b < image5x5.MaxBrightness; b++ {
				lo, hi := plan.Lit(b), plan.Lit(b+1)
				if hi&^lo != 0 {
					t.Errorf("%s row %d: level %d mask %b is not a superset of level %d mask %b", l.Name(), r, b, lo, b+1, hi)
				}
			}
		}
	}
}

func TestFrameBaseMaskMatchesImage(t *testing.T) {
	for _, l := range []*Layout{V1, V2} {
		f := NewFrame(l)
		if err := f.Set(greyHeart); err != nil {
			t.Fatal(err)
		}
		for y := 0; y < 5; y++ {
			for x := 0; x < 5; x++ {
				col, row, ok := l.Position(x, y)
				if !ok {
					t.Fatalf("%s: no pins for (%d, %d)", l.Name(), x, y)
				}
				inBase := f.Row(row).Base()&(1<<col) != 0
				if lit := greyHeart.BrightnessAt(x, y) > 0; lit != inBase {
					t.Errorf("%s (%d, %d): lit = %v, in base mask = %v", l.Name(), x, y, lit, inBase)
				}
			}
		}
	}
}

func TestFrameBrightnessRoundTrip(t *testing.T) {
	src := gradient()
	for _, l := range []*Layout{V1, V2} {
		f := NewFrame(l)
		if err := f.Set(src); err != nil {
			t.Fatal(err)
		}
		for y := 0; y < 5; y++ {
			for x := 0; x < 5; x++ {
				if got, want := f.BrightnessAt(x, y), src.BrightnessAt(x, y); got != want {
					t.Errorf("%s (%d, %d) = %d, want %d", l.Name(), x, y, got, want)
				}
			}
		}
	}
}

func TestRowPlanExactly(t *testing.T) {
	var p RowPlan
	p.light(9, 0b00001)
	p.light(5, 0b00010)
	p.light(1, 0b00100)
	p.light(5, 0b01000)

	tests := []struct {
		b    uint8
		want uint32
	}{
		{0, 0},
		{1, 0b00100},
		{2, 0},
		{5, 0b01010},
		{8, 0},
		{9, 0b00001},
		{10, 0},
	}
	for _, tt := range tests {
		if got := p.Exactly(tt.b); got != tt.want {
			t.Errorf("Exactly(%d) = %05b, want %05b", tt.b, got, tt.want)
		}
	}
	if p.Base() != 0b01111 {
		t.Errorf("Base() = %05b, want 01111", p.Base())
	}
	if p.Lit(0) != p.Base() {
		t.Error("Lit(0) should equal Base()")
	}
}

func TestFrameSetReplacesContent(t *testing.T) {
	f := NewFrame(V2)
	if err := f.Set(greyHeart); err != nil {
		t.Fatal(err)
	}
	if f.Blank() {
		t.Fatal("heart frame reported blank")
	}
	if err := f.Set(image5x5.BlankBits()); err != nil {
		t.Fatal(err)
	}
	if !f.Blank() {
		t.Error("Set(blank) left LEDs lit")
	}
}

func TestFrameClearIsIdempotent(t *testing.T) {
	f := NewFrame(V1)
	if err := f.Set(greyHeart); err != nil {
		t.Fatal(err)
	}
	f.Clear()
	once := *f
	f.Clear()
	if *f != once {
		t.Error("second Clear changed the frame")
	}
	if *f != *NewFrame(V1) {
		t.Error("cleared frame differs from a new frame")
	}
}

func TestFrameWithoutLayout(t *testing.T) {
	var f Frame
	if err := f.Set(greyHeart); err == nil {
		t.Error("Set on a frame without layout should fail")
	}
	if f.Rows() != 0 || !f.Blank() || f.BrightnessAt(0, 0) != 0 {
		t.Error("zero frame should be empty")
	}
}

func TestFrameString(t *testing.T) {
	f := NewFrame(V2)
	if err := f.Set(greyHeart); err != nil {
		t.Fatal(err)
	}
	want := "matrix.Frame{0:2 1:5 2:5 3:3 4:1}"
	if got := f.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
