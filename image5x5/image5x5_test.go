package image5x5

import (
	"image"
	"image/color"
	"testing"
)

func TestBrightnessRGBA(t *testing.T) {
	tests := []struct {
		name string
		b    Brightness
		want uint32
	}{
		{"off", Brightness{L: 0}, 0x0000},
		{"dimmest", Brightness{L: 1}, 0xFFFF / 9},
		{"middle", Brightness{L: 5}, 5 * 0xFFFF / 9},
		{"brightest", Brightness{L: 9}, 0xFFFF},
		{"clamped", Brightness{L: 200}, 0xFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, a := tt.b.RGBA()
			if r != tt.want || g != tt.want || b != tt.want || a != 0xFFFF {
				t.Errorf("RGBA() = (%x, %x, %x, %x), want (%x, %x, %x, %x)",
					r, g, b, a, tt.want, tt.want, tt.want, uint32(0xFFFF))
			}
		})
	}
}

func TestBrightnessModelConvert(t *testing.T) {
	tests := []struct {
		name  string
		input color.Color
		want  uint8
	}{
		{"brightness passthrough", Brightness{L: 7}, 7},
		{"brightness clamped", Brightness{L: 12}, 9},
		{"black", color.Black, 0},
		{"white", color.White, 9},
		{"transparent", color.Transparent, 0},
		{"mid grey", color.RGBA{0x80, 0x80, 0x80, 0xFF}, 5},
		{"gray16 white", color.Gray16{Y: 0xFFFF}, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := BrightnessModel.Convert(tt.input).(Brightness)
			if result.L != tt.want {
				t.Errorf("BrightnessModel.Convert(%v).L = %d, want %d", tt.input, result.L, tt.want)
			}
		})
	}
}

func TestBrightnessRoundTrip(t *testing.T) {
	for l := uint8(0); l <= MaxBrightness; l++ {
		got := BrightnessModel.Convert(color.RGBA64Model.Convert(Brightness{L: l})).(Brightness)
		if got.L != l {
			t.Errorf("level %d converted back to %d", l, got.L)
		}
	}
}

func TestGreyscaleBrightnessAt(t *testing.T) {
	img := NewGreyscale([Size][Size]uint8{
		{0, 1, 2, 3, 4},
		{5, 6, 7, 8, 9},
		{0, 0, 0, 0, 0},
		{9, 9, 9, 9, 9},
		{0, 0, 42, 0, 0},
	})

	tests := []struct {
		name string
		x, y int
		want uint8
	}{
		{"origin", 0, 0, 0},
		{"top row", 4, 0, 4},
		{"second row", 3, 1, 8},
		{"full row", 2, 3, 9},
		{"out of range value clamps", 2, 4, 9},
		{"negative x", -1, 0, 0},
		{"x past edge", 5, 1, 0},
		{"y past edge", 1, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := img.BrightnessAt(tt.x, tt.y); got != tt.want {
				t.Errorf("BrightnessAt(%d, %d) = %d, want %d", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestGreyscaleWithDoesNotMutate(t *testing.T) {
	img := BlankGreyscale()
	lit := img.With(2, 2, 7)

	if img.BrightnessAt(2, 2) != 0 {
		t.Error("With modified the receiver")
	}
	if lit.BrightnessAt(2, 2) != 7 {
		t.Errorf("With(2, 2, 7) gave %d", lit.BrightnessAt(2, 2))
	}
	if lit.With(9, 9, 9) != lit {
		t.Error("With outside the image changed the copy")
	}
}

func TestGreyscaleImageInterface(t *testing.T) {
	img := NewGreyscale([Size][Size]uint8{{3}})

	if img.Bounds() != image.Rect(0, 0, 5, 5) {
		t.Errorf("Bounds() = %v", img.Bounds())
	}
	if img.ColorModel() != BrightnessModel {
		t.Error("ColorModel() did not return BrightnessModel")
	}
	if c := img.At(0, 0).(Brightness); c.L != 3 {
		t.Errorf("At(0, 0) = %v, want level 3", c)
	}
}

func TestBitsBrightnessAt(t *testing.T) {
	img := NewBits([Size][Size]uint8{
		{0, 1, 0, 1, 0},
		{1, 0, 1, 0, 1},
		{1, 0, 0, 0, 1},
		{0, 1, 0, 1, 0},
		{0, 0, 5, 0, 0},
	})

	want := [Size][Size]uint8{
		{0, 9, 0, 9, 0},
		{9, 0, 9, 0, 9},
		{9, 0, 0, 0, 9},
		{0, 9, 0, 9, 0},
		{0, 0, 9, 0, 0},
	}
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if got := img.BrightnessAt(x, y); got != want[y][x] {
				t.Errorf("BrightnessAt(%d, %d) = %d, want %d", x, y, got, want[y][x])
			}
		}
	}
	if img.BrightnessAt(5, 0) != 0 {
		t.Error("BrightnessAt outside the image should be 0")
	}
}

func TestBitsFromRows(t *testing.T) {
	img := BitsFromRows([Size]uint8{0b00001, 0b10000, 0xFF, 0, 0})

	if img.BrightnessAt(0, 0) != MaxBrightness {
		t.Error("bit 0 of row 0 should light (0, 0)")
	}
	if img.BrightnessAt(4, 1) != MaxBrightness {
		t.Error("bit 4 of row 1 should light (4, 1)")
	}
	if img != NewBits([Size][Size]uint8{{1}, {0, 0, 0, 0, 1}, {1, 1, 1, 1, 1}}) {
		t.Error("bits above column 4 were kept")
	}
}

func TestBlankImages(t *testing.T) {
	for _, r := range []Render{BlankGreyscale(), BlankBits()} {
		for y := 0; y < Size; y++ {
			for x := 0; x < Size; x++ {
				if r.BrightnessAt(x, y) != 0 {
					t.Errorf("%T: (%d, %d) is lit", r, x, y)
				}
			}
		}
	}
}

func TestConvert(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 10, 10))
	src.SetGray(3, 4, color.Gray{Y: 0xFF})
	src.SetGray(7, 8, color.Gray{Y: 0xFF})

	img := Convert(src, image.Pt(3, 4))

	if img.BrightnessAt(0, 0) != MaxBrightness {
		t.Errorf("(0, 0) = %d, want %d", img.BrightnessAt(0, 0), MaxBrightness)
	}
	if img.BrightnessAt(4, 4) != MaxBrightness {
		t.Errorf("(4, 4) = %d, want %d", img.BrightnessAt(4, 4), MaxBrightness)
	}
	if img.BrightnessAt(1, 1) != 0 {
		t.Errorf("(1, 1) = %d, want 0", img.BrightnessAt(1, 1))
	}
}
