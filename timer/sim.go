// Package timer provides display timers for the micro:bit LED engine.
//
// Sim is a cycle-exact software model of an nRF TIMER in 16-bit mode with the
// COMPARE0→CLEAR shortcut: CC0 sets the primary cycle and CC1 the secondary
// alarm. Clocked runs a Sim against the wall clock on a host, and NRF (TinyGo
// only) programs the real peripheral.
package timer

import (
	"errors"
	"fmt"
	"math/bits"

	"periph.io/x/conn/v3/physic"
)

// Stats counts what the engine asked of a Sim.
type Stats struct {
	Cycles     int // InitialiseCycle calls
	Programmed int // ProgramSecondary calls
	Enabled    int // EnableSecondary calls
	Disabled   int // DisableSecondary calls
	Primary    int // primary events fired
	Secondary  int // secondary events fired with the interrupt enabled
}

// Sim is a software timer.
//
// Compare events latch whether or not their interrupt is enabled, as on the
// hardware; Pending reports a latched event whose interrupt is enabled.
type Sim struct {
	// Observe, if set, is called after every tick.
	Observe func()

	running bool
	counter uint16
	cc      [2]uint16
	inten   [2]bool
	events  [2]bool
	stats   Stats
}

// NewSim returns a stopped timer.
func NewSim() *Sim {
	return &Sim{}
}

// InitialiseCycle stops and clears the counter, sets CC0 to ticks with the
// clear shortcut and the CC0 interrupt, and starts the timer.
func (s *Sim) InitialiseCycle(ticks uint16) {
	s.running = false
	s.counter = 0
	s.cc[0] = ticks
	s.inten[0] = true
	s.running = true
	s.stats.Cycles++
}

// EnableSecondary enables the CC1 interrupt.
func (s *Sim) EnableSecondary() {
	s.inten[1] = true
	s.stats.Enabled++
}

// DisableSecondary disables the CC1 interrupt.
func (s *Sim) DisableSecondary() {
	s.inten[1] = false
	s.stats.Disabled++
}

// ProgramSecondary sets CC1.
//
// Compare events fire when the counter is incremented onto a value, and the
// counter only reaches 0 by being cleared, so a CC1 of 0 never fires. The
// same holds for any value past CC0.
func (s *Sim) ProgramSecondary(ticks uint16) {
	s.cc[1] = ticks
	s.stats.Programmed++
}

// CheckPrimary reports and clears the CC0 event.
func (s *Sim) CheckPrimary() bool {
	fired := s.events[0]
	s.events[0] = false
	return fired
}

// CheckSecondary reports and clears the CC1 event.
func (s *Sim) CheckSecondary() bool {
	fired := s.events[1]
	s.events[1] = false
	return fired
}

// Stop halts the counter and disables both interrupts.
func (s *Sim) Stop() {
	s.running = false
	s.inten = [2]bool{}
}

// Tick advances the counter by one and reports whether an interrupt is pending.
func (s *Sim) Tick() bool {
	if !s.running {
		return false
	}
	s.counter++
	if s.counter == s.cc[1] {
		s.events[1] = true
		if s.inten[1] {
			s.stats.Secondary++
		}
	}
	if s.counter == s.cc[0] {
		s.events[0] = true
		s.stats.Primary++
		s.counter = 0
	}
	if s.Observe != nil {
		s.Observe()
	}
	return s.Pending()
}

// Run advances the timer by ticks, calling isr whenever an interrupt is
// pending. It returns the number of isr calls.
func (s *Sim) Run(ticks int, isr func()) int {
	calls := 0
	for i := 0; i < ticks; i++ {
		if s.Tick() {
			isr()
			calls++
		}
	}
	return calls
}

// Pending reports whether a latched event has its interrupt enabled.
func (s *Sim) Pending() bool {
	return (s.events[0] && s.inten[0]) || (s.events[1] && s.inten[1])
}

// Running reports whether the counter is running.
func (s *Sim) Running() bool {
	return s.running
}

// Counter returns the current counter value.
func (s *Sim) Counter() uint16 {
	return s.counter
}

// Compare returns the value of compare register i (0 or 1).
func (s *Sim) Compare(i int) uint16 {
	return s.cc[i]
}

// SecondaryEnabled reports whether the CC1 interrupt is enabled.
func (s *Sim) SecondaryEnabled() bool {
	return s.inten[1]
}

// Stats returns the call and event counters.
func (s *Sim) Stats() Stats {
	return s.stats
}

// ResetStats zeroes the counters.
func (s *Sim) ResetStats() {
	s.stats = Stats{}
}

// String returns a string representation of the timer.
func (s *Sim) String() string {
	return fmt.Sprintf("timer.Sim{cc0=%d cc1=%d count=%d}", s.cc[0], s.cc[1], s.counter)
}

// BaseClock is the nRF TIMER input clock.
const BaseClock = 16 * physic.MegaHertz

// Prescaler returns the nRF TIMER PRESCALER value giving freq.
// freq must be BaseClock divided by a power of two from 1 to 512.
func Prescaler(freq physic.Frequency) (uint32, error) {
	if freq <= 0 || BaseClock%freq != 0 {
		return 0, fmt.Errorf("timer: %s is not reachable from %s", freq, BaseClock)
	}
	div := uint64(BaseClock / freq)
	if bits.OnesCount64(div) != 1 {
		return 0, fmt.Errorf("timer: %s is not a power-of-two division of %s", freq, BaseClock)
	}
	p := uint32(bits.TrailingZeros64(div))
	if p > 9 {
		return 0, errors.New("timer: prescaler out of range")
	}
	return p, nil
}
