//go:build !tinygo

// Package periphline drives a DHT line through periph.io GPIO on Linux
// hosts (Raspberry Pi and similar).
package periphline

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"dhtcode-go/drivers/dht"
	"dhtcode-go/errcode"
	"dhtcode-go/x/timex"
)

// HostInit loads the periph.io host drivers. Call it once before Open.
func HostInit() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periphline: host init: %w", err)
	}
	return nil
}

// Line implements dht.Line on a periph gpio.PinIO.
type Line struct {
	pin gpio.PinIO
}

var _ dht.Line = (*Line)(nil)

func New(pin gpio.PinIO) *Line { return &Line{pin: pin} }

// Open looks a pin up by name ("GPIO4", "4", "P1_7"). An unknown name
// fails with errcode.UnknownPin.
func Open(name string) (*Line, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, &errcode.E{C: errcode.UnknownPin, Op: "periphline: open", Msg: name}
	}
	return New(p), nil
}

func (l *Line) Number() int    { return l.pin.Number() }
func (l *Line) String() string { return l.pin.Name() }

// ConfigureOutput switches to output, idling high.
func (l *Line) ConfigureOutput() error {
	if err := l.pin.Out(gpio.High); err != nil {
		return fmt.Errorf("periphline: %s out: %w", l.pin.Name(), err)
	}
	return nil
}

func (l *Line) ConfigureInput(pullUp bool) error {
	pull := gpio.Float
	if pullUp {
		pull = gpio.PullUp
	}
	if err := l.pin.In(pull, gpio.NoEdge); err != nil {
		return fmt.Errorf("periphline: %s in: %w", l.pin.Name(), err)
	}
	return nil
}

func (l *Line) Set(high bool) { _ = l.pin.Out(gpio.Level(high)) }
func (l *Line) Get() bool     { return bool(l.pin.Read()) }

func (l *Line) DelayMicros(us uint32) { timex.SpinMicros(us) }

// Critical pins the goroutine to its thread and holds off the collector for
// the duration of fn. Kernel preemption still applies; a late edge shows up
// as a timeout or checksum failure.
func (l *Line) Critical(fn func()) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	gc := debug.SetGCPercent(-1)
	defer debug.SetGCPercent(gc)
	fn()
}
