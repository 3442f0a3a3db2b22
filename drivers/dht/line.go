package dht

// Line is the single-wire GPIO line the driver talks over.
//
// Implementations live in platform packages (periph.io on Linux, machine.Pin
// on TinyGo). The driver never owns goroutines or touches the line outside a
// transaction.
type Line interface {
	// Number is the platform pin number, for diagnostics only.
	Number() int
	ConfigureOutput() error
	ConfigureInput(pullUp bool) error
	Set(high bool)
	Get() bool
	// DelayMicros busy-waits or sleeps for at least us microseconds.
	DelayMicros(us uint32)
	// Critical runs fn with preemption and interrupts suppressed as far as
	// the platform allows. fn must not block.
	Critical(fn func())
}

// Clock supplies monotonic timestamps. NowMillis may wrap; the rate limiter
// only ever looks at differences.
type Clock interface {
	NowMillis() int32
	NowMicros() int64
}
