//go:build tinygo && nrf

package timer

import (
	"device/nrf"
)

// nRF TIMER register values.
const (
	bitmode16      = 0
	shortsCC0Clear = 1 << 0
	intenCompare0  = 1 << 16
	intenCompare1  = 1 << 17
)

// NRF is a TIMERn peripheral programmed to drive the display.
//
// CC0 is the primary cycle, cleared by the COMPARE0_CLEAR shortcut; CC1 is
// the secondary alarm.
type NRF struct {
	t         *nrf.TIMER_Type
	prescaler uint32
}

// NewNRF takes over the timer; prescaler comes from Prescaler.
func NewNRF(t *nrf.TIMER_Type, prescaler uint32) *NRF {
	return &NRF{t: t, prescaler: prescaler}
}

// InitialiseCycle restarts the counter with a primary cycle of ticks.
func (n *NRF) InitialiseCycle(ticks uint16) {
	n.t.TASKS_STOP.Set(1)
	n.t.TASKS_CLEAR.Set(1)
	n.t.BITMODE.Set(bitmode16)
	n.t.PRESCALER.Set(n.prescaler)
	n.t.CC[0].Set(uint32(ticks))
	n.t.SHORTS.Set(shortsCC0Clear)
	n.t.INTENSET.Set(intenCompare0)
	n.t.TASKS_START.Set(1)
}

// EnableSecondary enables the CC1 interrupt.
func (n *NRF) EnableSecondary() {
	n.t.INTENSET.Set(intenCompare1)
}

// DisableSecondary disables the CC1 interrupt. The event still latches.
func (n *NRF) DisableSecondary() {
	n.t.INTENCLR.Set(intenCompare1)
}

// ProgramSecondary sets CC1. A value of 0 never matches while CC0 clears the counter.
func (n *NRF) ProgramSecondary(ticks uint16) {
	n.t.CC[1].Set(uint32(ticks))
}

// CheckPrimary reports and clears the CC0 event.
func (n *NRF) CheckPrimary() bool {
	if n.t.EVENTS_COMPARE[0].Get() == 0 {
		return false
	}
	n.t.EVENTS_COMPARE[0].Set(0)
	return true
}

// CheckSecondary reports and clears the CC1 event.
func (n *NRF) CheckSecondary() bool {
	if n.t.EVENTS_COMPARE[1].Get() == 0 {
		return false
	}
	n.t.EVENTS_COMPARE[1].Set(0)
	return true
}

// Stop disables both interrupts and stops the counter.
func (n *NRF) Stop() {
	n.t.INTENCLR.Set(intenCompare0 | intenCompare1)
	n.t.TASKS_STOP.Set(1)
}
