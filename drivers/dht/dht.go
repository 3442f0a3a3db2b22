// Package dht provides a driver for the DHT11 and DHT22-family (AM2302,
// RHT03) single-wire temperature/humidity sensors.
//
//	d := dht.New(line, clock)
//	d.Configure(dht.Config{Model: dht.AutoDetect})
//	r := d.TempAndHumidity()   // NaN fields on failure; see d.Status()
//
// Transactions are rate limited to the sensor's duty cycle (1 Hz DHT11,
// 0.5 Hz DHT22). A call inside that window performs no bus activity and
// returns the values and status stored by the previous attempt.
//
// Every attempt first clears the stored reading to NaN, so a failed attempt
// never leaves an older valid reading behind.
//
// A Device is not safe for concurrent use. Callers sharing one must serialise
// access themselves.
package dht

import (
	"math"

	"dhtcode-go/x/climate"

	"tinygo.org/x/drivers"
)

// Reading is one validated temperature (°C) and relative humidity (%) pair.
// Both fields are NaN when no valid reading is available.
type Reading struct {
	Temperature float64
	Humidity    float64
}

func invalidReading() Reading {
	return Reading{Temperature: math.NaN(), Humidity: math.NaN()}
}

// Valid reports whether both fields carry real values.
func (r Reading) Valid() bool {
	return !math.IsNaN(r.Temperature) && !math.IsNaN(r.Humidity)
}

// Config controls device selection. The zero value auto-detects.
type Config struct {
	Model Model
}

// Device is one sensor on one line.
type Device struct {
	line Line
	clk  Clock

	model   Model
	profile climate.Profile

	lastRead int32 // ms stamp of the last real attempt
	attempts uint32
	reading  Reading
	status   Status
	err      error
}

// Ensure Device satisfies the TinyGo sensor contract at compile time.
var _ drivers.Sensor = (*Device)(nil)

// New creates a Device bound to line and clk. It does not touch the line.
func New(line Line, clk Clock) *Device {
	return &Device{
		line:    line,
		clk:     clk,
		profile: climate.DefaultProfile(),
		reading: invalidReading(),
	}
}

// Configure selects the model, restores the default comfort profile, idles
// the line high and arms the sampling timer so the next call reads. With
// AutoDetect it runs Probe once; the probe's outcome is left in Status.
func (d *Device) Configure(cfgs ...Config) error {
	var cfg Config
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}
	d.model = cfg.Model
	d.profile = climate.DefaultProfile()
	d.ResetSamplingTimer()

	if err := d.line.ConfigureOutput(); err != nil {
		return err
	}
	d.line.Set(true)

	if d.model == AutoDetect {
		d.Probe()
	}
	return nil
}

// ResetSamplingTimer makes the next getter call perform a transaction
// regardless of when the previous one ran.
func (d *Device) ResetSamplingTimer() {
	d.lastRead = d.clk.NowMillis() - resetOffsetMs
}

// read performs one attempt. When gated, the rate limiter may suppress it;
// the return value reports whether the line was actually exercised.
func (d *Device) read(gated bool) bool {
	now := d.clk.NowMillis()
	if gated && !shouldSample(now, d.lastRead, d.model) {
		return false
	}
	d.lastRead = now
	d.attempts++

	d.reading = invalidReading()
	p, st, err := d.transact()
	d.status, d.err = st, err
	if st != StatusNone {
		return true
	}
	d.reading = DecodePayload(d.model, p)
	return true
}

// sample is the getter policy: one gated attempt, and one immediate retry
// only when that attempt ran and timed out.
func (d *Device) sample() {
	if d.read(true) && d.status == StatusTimeout {
		d.read(false)
	}
}

// Humidity returns relative humidity in percent, or NaN.
func (d *Device) Humidity() float64 {
	d.sample()
	return d.reading.Humidity
}

// Temperature returns the temperature in °C, or NaN.
func (d *Device) Temperature() float64 {
	d.sample()
	return d.reading.Temperature
}

// TempAndHumidity returns both values from the same transaction.
func (d *Device) TempAndHumidity() Reading {
	d.sample()
	return d.reading
}

// Update implements drivers.Sensor. It follows the getter policy and returns
// the error of the stored outcome.
func (d *Device) Update(which drivers.Measurement) error {
	if which&(drivers.Temperature|drivers.Humidity) == 0 {
		return nil
	}
	d.sample()
	return d.err
}

// Last returns the stored reading without starting a transaction.
func (d *Device) Last() Reading { return d.reading }

func (d *Device) Status() Status       { return d.status }
func (d *Device) StatusString() string { return d.status.String() }

// Err returns nil, ErrTimeout or ErrChecksum (possibly wrapped) for the
// stored outcome.
func (d *Device) Err() error {
	if d.err != nil {
		return d.err
	}
	return d.status.err()
}

// Attempts counts transactions that reached the line, retries and probes
// included. It wraps.
func (d *Device) Attempts() uint32 { return d.attempts }

func (d *Device) Model() Model { return d.model }
func (d *Device) Pin() int     { return d.line.Number() }

// Model-dependent metadata.

func (d *Device) MinimumSamplingPeriod() int { return d.model.MinimumSamplingPeriod() }
func (d *Device) DecimalsTemperature() int   { return d.model.DecimalsTemperature() }
func (d *Device) DecimalsHumidity() int      { return d.model.DecimalsHumidity() }
func (d *Device) LowerBoundTemperature() int { return d.model.LowerBoundTemperature() }
func (d *Device) UpperBoundTemperature() int { return d.model.UpperBoundTemperature() }
func (d *Device) LowerBoundHumidity() int    { return d.model.LowerBoundHumidity() }
func (d *Device) UpperBoundHumidity() int    { return d.model.UpperBoundHumidity() }

// Comfort evaluation against the device's profile.

func (d *Device) ComfortProfile() climate.Profile     { return d.profile }
func (d *Device) SetComfortProfile(p climate.Profile) { d.profile = p }

func (d *Device) IsTooHot(t, h float64) bool   { return d.profile.IsTooHot(t, h) }
func (d *Device) IsTooHumid(t, h float64) bool { return d.profile.IsTooHumid(t, h) }
func (d *Device) IsTooCold(t, h float64) bool  { return d.profile.IsTooCold(t, h) }
func (d *Device) IsTooDry(t, h float64) bool   { return d.profile.IsTooDry(t, h) }

// ComfortRatio scores (t, h) against the device profile; see
// climate.Profile.ComfortRatio.
func (d *Device) ComfortRatio(t, h float64, isFahrenheit bool) (float64, climate.ComfortState) {
	return d.profile.ComfortRatio(t, h, isFahrenheit)
}
