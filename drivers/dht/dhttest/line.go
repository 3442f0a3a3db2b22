// Package dhttest provides a synthetic DHT line for tests.
//
// Line replays the sensor's response waveform against a virtual microsecond
// clock: every Get advances time by one microsecond and DelayMicros advances
// it by the requested amount, so decoding is exact and independent of the
// host scheduler. The same value serves as the dht.Clock.
package dhttest

import "math"

// Waveform timings in microseconds.
const (
	ReleaseUs  = 30 // host release before the sensor pulls low
	AckLowUs   = 80
	AckHighUs  = 80
	BitLowUs   = 50
	ZeroHighUs = 27
	OneHighUs  = 70
)

// Minimum start-signal hold each family answers to.
const (
	HoldDHT11Us = 18000
	HoldDHT22Us = 1000
)

// Frame is one 40-bit transmission in wire order.
type Frame [5]byte

type segment struct {
	high bool
	end  int64 // exclusive, relative to response start
}

// Line is a fake single-wire line with a DHT sensor attached.
type Line struct {
	Pin int

	// MinHoldUs is the shortest start pulse the simulated sensor answers.
	MinHoldUs int64

	// Frames are transmitted one per answered transaction; the last one
	// repeats once the queue is exhausted. No frames means no sensor.
	Frames []Frame

	// ConfigErr, when set, is returned by ConfigureOutput.
	ConfigErr error

	// Observations.
	Attempts  int     // start signals seen
	Answered  int     // transactions the sensor responded to
	Criticals int     // Critical sections entered
	Holds     []int64 // start pulse widths in µs

	now      int64
	output   bool
	level    bool
	lowSince int64
	lastHold int64
	next     int

	answering bool
	t0        int64
	wave      []segment
}

// NewDHT22 returns a line with a DHT22-family sensor transmitting frames.
func NewDHT22(frames ...Frame) *Line {
	return &Line{Pin: 4, MinHoldUs: HoldDHT22Us, Frames: frames, level: true}
}

// NewDHT11 returns a line with a DHT11 transmitting frames.
func NewDHT11(frames ...Frame) *Line {
	return &Line{Pin: 4, MinHoldUs: HoldDHT11Us, Frames: frames, level: true}
}

// NewSilent returns a line with nothing attached; it idles high.
func NewSilent() *Line {
	return &Line{Pin: 4, level: true}
}

func (l *Line) Number() int { return l.Pin }

func (l *Line) ConfigureOutput() error {
	if l.ConfigErr != nil {
		return l.ConfigErr
	}
	l.output = true
	l.answering = false
	return nil
}

func (l *Line) ConfigureInput(pullUp bool) error {
	l.output = false
	l.Attempts++
	l.Holds = append(l.Holds, l.lastHold)

	l.answering = len(l.Frames) > 0 && l.lastHold >= l.MinHoldUs
	if !l.answering {
		return nil
	}
	f := l.Frames[l.next]
	if l.next < len(l.Frames)-1 {
		l.next++
	}
	l.t0 = l.now
	l.wave = waveform(f)
	l.Answered++
	return nil
}

func (l *Line) Set(high bool) {
	if !l.output {
		return
	}
	switch {
	case l.level && !high:
		l.lowSince = l.now
	case !l.level && high:
		l.lastHold = l.now - l.lowSince
	}
	l.level = high
}

// Get samples the line and advances the clock by one microsecond.
func (l *Line) Get() bool {
	v := l.sample()
	l.now++
	return v
}

func (l *Line) sample() bool {
	if l.output {
		return l.level
	}
	if !l.answering {
		return true // pull-up
	}
	rel := l.now - l.t0
	for _, s := range l.wave {
		if rel < s.end {
			return s.high
		}
	}
	return true
}

func (l *Line) DelayMicros(us uint32) { l.now += int64(us) }

func (l *Line) Critical(fn func()) {
	l.Criticals++
	fn()
}

// Clock.

func (l *Line) NowMicros() int64 { return l.now }
func (l *Line) NowMillis() int32 { return int32(l.now / 1000) }

// Advance moves virtual time forward by ms milliseconds.
func (l *Line) Advance(ms int64) { l.now += ms * 1000 }

func waveform(f Frame) []segment {
	segs := make([]segment, 0, 3+80+1)
	var t int64
	add := func(high bool, d int64) {
		t += d
		segs = append(segs, segment{high: high, end: t})
	}
	add(true, ReleaseUs)
	add(false, AckLowUs)
	add(true, AckHighUs)
	for _, b := range f {
		for bit := 7; bit >= 0; bit-- {
			add(false, BitLowUs)
			if b&(1<<bit) != 0 {
				add(true, OneHighUs)
			} else {
				add(true, ZeroHighUs)
			}
		}
	}
	add(false, BitLowUs)
	return segs
}

// FrameDHT22 encodes a DHT22-family reading with a correct checksum.
// Values are rounded to one decimal.
func FrameDHT22(tempC, rh float64) Frame {
	h := uint16(math.Round(rh * 10))
	t := uint16(math.Round(math.Abs(tempC) * 10))
	if tempC < 0 {
		t |= 0x8000
	}
	return withSum(Frame{byte(h >> 8), byte(h), byte(t >> 8), byte(t)})
}

// FrameDHT11 encodes a DHT11 reading: integer and tenths bytes, with the
// temperature sign in bit 7 of the tenths byte.
func FrameDHT11(tempC, rh float64) Frame {
	hi, hf := math.Modf(rh)
	ti, tf := math.Modf(math.Abs(tempC))
	tl := byte(math.Round(tf * 10))
	if tempC < 0 {
		tl |= 0x80
	}
	return withSum(Frame{byte(hi), byte(math.Round(hf * 10)), byte(ti), tl})
}

// Corrupt returns f with a checksum that cannot match.
func Corrupt(f Frame) Frame {
	f[4] ^= 0xFF
	return f
}

func withSum(f Frame) Frame {
	f[4] = f[0] + f[1] + f[2] + f[3]
	return f
}
