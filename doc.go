// Package microbit drives the BBC micro:bit 5×5 LED matrix without blocking.
//
// The LEDs are wired as a matrix of pin rows and pin columns and only one pin
// row is lit at a time. A timer interrupt moves to the next row every few
// milliseconds, fast enough that the eye sees a steady image. Within a row,
// a second timer alarm switches LEDs on or off part-way through, which gives
// each LED one of ten brightness levels (0 off, 9 fully on).
//
// # Boards
//
// Two boards are supported:
//
//	Board  Pin matrix  Ports  Row time  Refresh
//	V1     3 × 9       P0     6ms       18ms
//	V2     5 × 5       P0,P1  3ms       15ms
//
// On the v1 the 25 LEDs are scattered over a 3×9 pin matrix with two unused
// positions; matrix.V1 holds the mapping.
//
// # Basic Usage
//
// On a host, Register ports and a Clocked timer stand in for the hardware:
//
//	package main
//
//	import (
//		"context"
//		"time"
//
//		"github.com/flavioheleno/microbit"
//		"github.com/flavioheleno/microbit/control"
//		"github.com/flavioheleno/microbit/image5x5"
//		"github.com/flavioheleno/microbit/timer"
//	)
//
//	func main() {
//		t, _ := timer.NewClocked(microbit.V2.Timing.ClockHz, time.Millisecond)
//		ports := []control.Port{&control.Register{}, &control.Register{}}
//
//		dev, _ := microbit.New(t, ports, nil)
//		defer dev.Halt()
//		t.Start(context.Background(), func() { dev.HandleDisplayEvent() })
//
//		dev.Show(image5x5.NewGreyscale([5][5]uint8{
//			{0, 9, 0, 9, 0},
//			{9, 5, 9, 5, 9},
//			{9, 5, 5, 5, 9},
//			{0, 9, 5, 9, 0},
//			{0, 0, 9, 0, 0},
//		}))
//		time.Sleep(time.Second)
//	}
//
// With TinyGo on the board itself, use timer.NRF and control.NRFPort, and
// call HandleDisplayEvent from the TIMER interrupt handler.
//
// # Frames
//
// Show compiles an image into a matrix.Frame of per-row column masks and
// swaps it in between two interrupts. To update the display repeatedly
// without recompiling, build frames with NewFrame and pass them to
// ShowFrame.
//
// # Greyscale
//
// Row time is split into 375 ticks. An LED at level b is lit for
//
//	2, 4, 8, 15, 28, 53, 102 or 199 ticks   (b = 1..8)
//
// and for the whole row at level 9. With Opts.Alignment set to
// engine.AlignStart every lit LED turns on when its row starts and dims off
// in turn; engine.AlignEnd instead turns dimmer LEDs on late so that they
// all go off when the row ends.
//
// # Compatibility with periph.io and TinyGo
//
// Display implements display.Drawer from periph.io and drivers.Displayer from
// tinygo.org/x/drivers, so it can be drawn on by either ecosystem, including
// tinyfont.
package microbit
