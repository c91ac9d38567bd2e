// Package image5x5 provides 5×5 brightness images for the micro:bit LED display.
//
// LED brightness is a level from 0 (off) to 9 (brightest). How long an LED stays lit
// within each display row period grows by roughly 1.9× per level, so the levels look
// evenly spaced to the eye rather than being linear PWM duty cycles.
//
// The LEDs are addressed with (x, y) coordinates, origin top-left:
//
//	(0,0) ... (4,0)
//	 ...  ...  ...
//	(0,4) ... (4,4)
//
// where the bottom row (x,4) is next to the edge connector.
//
// This package provides:
//
// - Render: the interface the display compiles frames from
// - Brightness and BrightnessModel: a color type and model for the ten levels
// - Greyscale: all ten levels, one byte per LED
// - Bits: on/off only, one bit per LED
//
// Example usage:
//
//	heart := image5x5.NewGreyscale([5][5]uint8{
//		{0, 9, 0, 9, 0},
//		{9, 5, 9, 5, 9},
//		{9, 5, 5, 5, 9},
//		{0, 9, 5, 9, 0},
//		{0, 0, 9, 0, 0},
//	})
//	println(heart.BrightnessAt(1, 1)) // Output: 5
//
//	// Any image.Image can be sampled into a Greyscale.
//	img := image5x5.Convert(image.NewUniform(color.White), image.Point{})
package image5x5
