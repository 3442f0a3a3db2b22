//go:build rp2040 || rp2350

// Package rp2line drives a DHT line from an RP2040/RP2350 GPIO.
package rp2line

import (
	"machine"
	"runtime/interrupt"

	"dhtcode-go/drivers/dht"
	"dhtcode-go/x/timex"
)

// Line implements dht.Line on a machine.Pin.
type Line struct {
	p machine.Pin
	n int
}

var _ dht.Line = (*Line)(nil)

// New returns the line for GPIO n.
func New(n int) *Line { return &Line{p: machine.Pin(n), n: n} }

func (l *Line) Number() int { return l.n }

func (l *Line) ConfigureOutput() error {
	l.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	l.p.High()
	return nil
}

func (l *Line) ConfigureInput(pullUp bool) error {
	mode := machine.PinInput
	if pullUp {
		mode = machine.PinInputPullup
	}
	l.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (l *Line) Set(high bool) { l.p.Set(high) }
func (l *Line) Get() bool     { return l.p.Get() }

// DelayMicros spins; the scheduler is not involved.
func (l *Line) DelayMicros(us uint32) { timex.SpinMicros(us) }

// Critical masks interrupts on this core for the duration of fn. The
// hardware timer keeps counting, so the clock stays valid inside.
func (l *Line) Critical(fn func()) {
	state := interrupt.Disable()
	defer interrupt.Restore(state)
	fn()
}
