// Package image5x5 provides the 5×5 brightness images shown on the micro:bit LED display.
//
// Each LED has a brightness level from 0 (off) to 9 (brightest). Two storage formats are
// provided: Greyscale keeps one byte per LED, Bits keeps one bit per LED.
package image5x5

import (
	"image"
	"image/color"
)

// MaxBrightness is the brightest level an LED can show.
const MaxBrightness = 9

// Size is the number of visible LED columns and rows.
const Size = 5

// Rect is the bounds of every image in this package.
var Rect = image.Rect(0, 0, Size, Size)

// Render is anything that can report the brightness of each visible LED.
//
// BrightnessAt must be a pure function of (x, y) returning a level in 0..MaxBrightness.
type Render interface {
	BrightnessAt(x, y int) uint8
}

// Brightness is an LED brightness level (0-9).
// Values above MaxBrightness are treated as MaxBrightness.
type Brightness struct {
	L uint8
}

// RGBA converts the Brightness to standard RGBA.
// Level 9 maps to full white.
func (c Brightness) RGBA() (r, g, b, a uint32) {
	y := uint32(clamp(c.L)) * 0xFFFF / MaxBrightness
	return y, y, y, 0xFFFF
}

// toBrightness converts any color.Color to Brightness.
func toBrightness(c color.Color) color.Color {
	if b, ok := c.(Brightness); ok {
		return Brightness{L: clamp(b.L)}
	}
	r, g, b, a := c.RGBA()
	if a == 0 {
		return Brightness{}
	}
	// Luma of the premultiplied colour, 16-bit.
	y := (299*r + 587*g + 114*b + 500) / 1000
	// Round to the nearest of the ten levels.
	return Brightness{L: uint8((y*MaxBrightness + 0x7FFF) / 0xFFFF)}
}

// BrightnessModel converts colors to Brightness.
var BrightnessModel = color.ModelFunc(toBrightness)

func clamp(l uint8) uint8 {
	if l > MaxBrightness {
		return MaxBrightness
	}
	return l
}

// Greyscale is a 5×5 image supporting all ten brightness levels.
// It uses 25 bytes of storage; rows are stored top first, each row left first.
type Greyscale struct {
	pix [Size][Size]uint8
}

// NewGreyscale builds a Greyscale image from 5 rows (top first) of 5 levels (left first).
func NewGreyscale(rows [Size][Size]uint8) Greyscale {
	return Greyscale{pix: rows}
}

// BlankGreyscale returns a Greyscale image with every LED off.
func BlankGreyscale() Greyscale {
	return Greyscale{}
}

// BrightnessAt returns the level of the LED at (x, y), or 0 outside the image.
func (p Greyscale) BrightnessAt(x, y int) uint8 {
	if !(image.Point{X: x, Y: y}.In(Rect)) {
		return 0
	}
	return clamp(p.pix[y][x])
}

// ColorModel returns the color model of the image.
func (p Greyscale) ColorModel() color.Model {
	return BrightnessModel
}

// Bounds returns the image bounds.
func (p Greyscale) Bounds() image.Rectangle {
	return Rect
}

// At returns the color of the LED at (x, y).
// It implements the image.Image interface.
func (p Greyscale) At(x, y int) color.Color {
	return Brightness{L: p.BrightnessAt(x, y)}
}

// With returns a copy of p with the LED at (x, y) set to level l.
// Points outside the image leave the copy unchanged.
func (p Greyscale) With(x, y int, l uint8) Greyscale {
	if image.Pt(x, y).In(Rect) {
		p.pix[y][x] = clamp(l)
	}
	return p
}

// Convert samples src into a Greyscale image.
// LED (x, y) takes the color of src at sp+(x, y).
func Convert(src image.Image, sp image.Point) Greyscale {
	var g Greyscale
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			b := BrightnessModel.Convert(src.At(sp.X+x, sp.Y+y)).(Brightness)
			g.pix[y][x] = b.L
		}
	}
	return g
}

// Bits is a 5×5 image supporting only on and off.
// It uses 5 bytes of storage, one per row; bit x is the LED in column x.
//
// For display, each lit LED has brightness MaxBrightness.
type Bits struct {
	rows [Size]uint8
}

// NewBits builds a Bits image from 5 rows (top first) of 5 values (left first).
// Any nonzero value is lit.
func NewBits(rows [Size][Size]uint8) Bits {
	var b Bits
	for y, row := range rows {
		for x, v := range row {
			if v != 0 {
				b.rows[y] |= 1 << x
			}
		}
	}
	return b
}

// BlankBits returns a Bits image with every LED off.
func BlankBits() Bits {
	return Bits{}
}

// BitsFromRows builds a Bits image from row bytes; bit x of rows[y] lights LED (x, y).
func BitsFromRows(rows [Size]uint8) Bits {
	for i := range rows {
		rows[i] &= 1<<Size - 1
	}
	return Bits{rows: rows}
}

// BrightnessAt returns 0 or MaxBrightness for the LED at (x, y).
func (p Bits) BrightnessAt(x, y int) uint8 {
	if !(image.Point{X: x, Y: y}.In(Rect)) {
		return 0
	}
	if p.rows[y]&(1<<x) != 0 {
		return MaxBrightness
	}
	return 0
}

// ColorModel returns the color model of the image.
func (p Bits) ColorModel() color.Model {
	return BrightnessModel
}

// Bounds returns the image bounds.
func (p Bits) Bounds() image.Rectangle {
	return Rect
}

// At returns the color of the LED at (x, y).
func (p Bits) At(x, y int) color.Color {
	return Brightness{L: p.BrightnessAt(x, y)}
}
