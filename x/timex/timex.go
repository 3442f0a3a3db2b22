// Package timex holds small time helpers shared by the platform lines.
package timex

import "time"

// Mono is a monotonic clock anchored at its creation. It satisfies
// dht.Clock.
type Mono struct {
	start time.Time
}

func NewMono() Mono { return Mono{start: time.Now()} }

// NowMillis wraps after about 24.8 days; consumers compare differences.
func (m Mono) NowMillis() int32 { return int32(time.Since(m.start).Milliseconds()) }

func (m Mono) NowMicros() int64 { return time.Since(m.start).Microseconds() }

// SpinMicros busy-waits for at least us microseconds. time.Sleep granularity
// on a general purpose kernel is far coarser than the start pulse needs.
func SpinMicros(us uint32) {
	deadline := time.Now().Add(time.Duration(us) * time.Microsecond)
	for time.Now().Before(deadline) {
	}
}

// PeriodFromSeconds returns the sampling period for a configured interval,
// never shorter than floor.
func PeriodFromSeconds(s float64, floor time.Duration) time.Duration {
	d := time.Duration(s * float64(time.Second))
	if d < floor {
		return floor
	}
	return d
}
