//go:build tinygo && nrf

package control

import (
	"device/nrf"
)

// NRFPort is an nRF GPIO port, written through DIRSET, OUTSET and OUTCLR.
type NRFPort struct {
	g *nrf.GPIO_Type
}

// NewNRFPort wraps a GPIO port peripheral.
func NewNRFPort(g *nrf.GPIO_Type) *NRFPort {
	return &NRFPort{g: g}
}

// Configure makes the masked pins outputs.
func (p *NRFPort) Configure(mask uint32) {
	p.g.DIRSET.Set(mask)
}

// Set drives the masked pins high.
func (p *NRFPort) Set(mask uint32) {
	p.g.OUTSET.Set(mask)
}

// Clear drives the masked pins low.
func (p *NRFPort) Clear(mask uint32) {
	p.g.OUTCLR.Set(mask)
}
