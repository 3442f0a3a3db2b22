package dht_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tinygo.org/x/drivers"

	"dhtcode-go/drivers/dht"
	"dhtcode-go/drivers/dht/dhttest"
	"dhtcode-go/x/climate"
)

const eps = 1e-9

func newDevice(t *testing.T, line *dhttest.Line, m dht.Model) *dht.Device {
	t.Helper()
	d := dht.New(line, line)
	require.NoError(t, d.Configure(dht.Config{Model: m}))
	return d
}

func TestDHT22_DecodesKnownFrame(t *testing.T) {
	line := dhttest.NewDHT22(dhttest.FrameDHT22(23.5, 61.2))
	d := newDevice(t, line, dht.DHT22)

	r := d.TempAndHumidity()

	assert.Equal(t, dht.StatusNone, d.Status())
	assert.Equal(t, "OK", d.StatusString())
	assert.NoError(t, d.Err())
	assert.InDelta(t, 23.5, r.Temperature, eps)
	assert.InDelta(t, 61.2, r.Humidity, eps)
	assert.Equal(t, 1, line.Attempts)
	assert.Equal(t, 1, line.Criticals)
	assert.Equal(t, []int64{2000}, line.Holds)
}

func TestDHT22_RawFrameBytes(t *testing.T) {
	// 0x028C = 652 -> 65.2 %RH, 0x015F = 351 -> 35.1 °C.
	f := dhttest.Frame{0x02, 0x8C, 0x01, 0x5F, 0xEE}
	line := dhttest.NewDHT22(f)
	d := newDevice(t, line, dht.AM2302)

	r := d.TempAndHumidity()
	require.Equal(t, dht.StatusNone, d.Status())
	assert.InDelta(t, 65.2, r.Humidity, eps)
	assert.InDelta(t, 35.1, r.Temperature, eps)
}

func TestDHT22_NegativeTemperatureIsSignMagnitude(t *testing.T) {
	line := dhttest.NewDHT22(dhttest.FrameDHT22(-12.3, 56.7))
	d := newDevice(t, line, dht.RHT03)

	r := d.TempAndHumidity()
	require.Equal(t, dht.StatusNone, d.Status())
	assert.InDelta(t, -12.3, r.Temperature, eps)
	assert.InDelta(t, 56.7, r.Humidity, eps)
}

func TestDHT11_Decode(t *testing.T) {
	cases := []struct {
		name     string
		temp, rh float64
	}{
		{"positive", 23.4, 45},
		{"fractional humidity", 21.0, 38.5},
		{"negative", -2.5, 60},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			line := dhttest.NewDHT11(dhttest.FrameDHT11(tc.temp, tc.rh))
			d := newDevice(t, line, dht.DHT11)

			r := d.TempAndHumidity()
			require.Equal(t, dht.StatusNone, d.Status())
			assert.InDelta(t, tc.temp, r.Temperature, eps)
			assert.InDelta(t, tc.rh, r.Humidity, eps)
			assert.Equal(t, []int64{18000}, line.Holds)
		})
	}
}

func TestChecksumMismatch_NaNAndNoRetry(t *testing.T) {
	line := dhttest.NewDHT22(dhttest.Corrupt(dhttest.FrameDHT22(20, 50)))
	d := newDevice(t, line, dht.DHT22)

	r := d.TempAndHumidity()

	assert.Equal(t, dht.StatusChecksum, d.Status())
	assert.Equal(t, "CHECKSUM", d.StatusString())
	assert.True(t, errors.Is(d.Err(), dht.ErrChecksum))
	assert.True(t, math.IsNaN(r.Temperature))
	assert.True(t, math.IsNaN(r.Humidity))
	assert.False(t, r.Valid())
	assert.Equal(t, 1, line.Attempts)
}

func TestTimeout_RetriedOnceWithinBoundedTime(t *testing.T) {
	line := dhttest.NewSilent()
	d := newDevice(t, line, dht.DHT22)

	start := line.NowMicros()
	h := d.Humidity()
	elapsed := line.NowMicros() - start

	assert.True(t, math.IsNaN(h))
	assert.Equal(t, dht.StatusTimeout, d.Status())
	assert.Equal(t, "TIMEOUT", d.StatusString())
	assert.True(t, errors.Is(d.Err(), dht.ErrTimeout))
	assert.Equal(t, 2, line.Attempts)
	assert.Equal(t, uint32(2), d.Attempts())

	// Each attempt: 2 ms start hold plus one segment that gives up after 90us.
	assert.LessOrEqual(t, elapsed, int64(2*(2000+91)))
}

func TestRateLimiter_SecondCallIsIdempotent(t *testing.T) {
	line := dhttest.NewDHT22(
		dhttest.FrameDHT22(22.0, 40.0),
		dhttest.FrameDHT22(25.0, 45.0),
	)
	d := newDevice(t, line, dht.DHT22)

	first := d.TempAndHumidity()
	second := d.TempAndHumidity()
	assert.Equal(t, first, second)
	assert.Equal(t, dht.StatusNone, d.Status())
	assert.Equal(t, 1, line.Attempts)

	line.Advance(1990)
	assert.Equal(t, first, d.TempAndHumidity())
	assert.Equal(t, 1, line.Attempts)
	assert.Equal(t, uint32(1), d.Attempts())

	line.Advance(10)
	third := d.TempAndHumidity()
	assert.Equal(t, 2, line.Attempts)
	assert.InDelta(t, 25.0, third.Temperature, eps)
}

func TestRateLimiter_IdempotentAfterFailure(t *testing.T) {
	line := dhttest.NewSilent()
	d := newDevice(t, line, dht.DHT22)

	a := d.Temperature()
	b := d.Temperature()
	assert.True(t, math.IsNaN(a))
	assert.True(t, math.IsNaN(b))
	assert.Equal(t, dht.StatusTimeout, d.Status())
	// One attempt plus its retry; the suppressed call adds none.
	assert.Equal(t, 2, line.Attempts)
}

func TestResetSamplingTimer_AllowsImmediateRead(t *testing.T) {
	line := dhttest.NewDHT22(
		dhttest.FrameDHT22(22.0, 40.0),
		dhttest.FrameDHT22(26.5, 41.0),
	)
	d := newDevice(t, line, dht.DHT22)

	d.Temperature()
	d.ResetSamplingTimer()
	assert.InDelta(t, 26.5, d.Temperature(), eps)
	assert.Equal(t, 2, line.Attempts)
}

func TestFailedAttemptDiscardsPreviousReading(t *testing.T) {
	line := dhttest.NewDHT22(
		dhttest.FrameDHT22(22.0, 40.0),
		dhttest.Corrupt(dhttest.FrameDHT22(22.0, 40.0)),
	)
	d := newDevice(t, line, dht.DHT22)

	require.True(t, d.TempAndHumidity().Valid())

	line.Advance(2000)
	r := d.TempAndHumidity()
	assert.Equal(t, dht.StatusChecksum, d.Status())
	assert.True(t, math.IsNaN(r.Temperature))
	assert.True(t, math.IsNaN(r.Humidity))
	assert.False(t, d.Last().Valid())
}

func TestAutoDetect_DHT11FallsBackOnTimeout(t *testing.T) {
	line := dhttest.NewDHT11(dhttest.FrameDHT11(24.0, 50))
	d := newDevice(t, line, dht.AutoDetect)

	assert.Equal(t, dht.DHT11, d.Model())
	assert.Equal(t, dht.StatusTimeout, d.Status())
	assert.Equal(t, []int64{2000}, line.Holds)
	assert.Equal(t, 0, line.Answered)

	// Still inside the DHT11 window: the probe's outcome is returned as is.
	r := d.TempAndHumidity()
	assert.False(t, r.Valid())
	assert.Equal(t, dht.StatusTimeout, d.Status())
	assert.Equal(t, 1, line.Attempts)

	line.Advance(1000)
	r = d.TempAndHumidity()
	require.Equal(t, dht.StatusNone, d.Status())
	assert.InDelta(t, 24.0, r.Temperature, eps)
	assert.InDelta(t, 50.0, r.Humidity, eps)
	assert.Equal(t, int64(18000), line.Holds[len(line.Holds)-1])
}

func TestAutoDetect_DHT22Resolves(t *testing.T) {
	line := dhttest.NewDHT22(dhttest.FrameDHT22(19.9, 33.3))
	d := newDevice(t, line, dht.AutoDetect)

	assert.Equal(t, dht.DHT22, d.Model())
	assert.Equal(t, dht.StatusNone, d.Status())
	assert.InDelta(t, 19.9, d.Last().Temperature, eps)

	m, st := d.Probe()
	assert.Equal(t, dht.DHT22, m)
	assert.Equal(t, dht.StatusNone, st)
	assert.Equal(t, 1, line.Attempts, "a resolved model is not probed again")
}

func TestLineErrorReportsTimeout(t *testing.T) {
	line := dhttest.NewDHT22(dhttest.FrameDHT22(20, 50))
	d := newDevice(t, line, dht.DHT22)

	boom := errors.New("gpio busy")
	line.ConfigErr = boom

	d.Temperature()
	assert.Equal(t, dht.StatusTimeout, d.Status())
	assert.True(t, errors.Is(d.Err(), dht.ErrTimeout))
	assert.Contains(t, d.Err().Error(), "gpio busy")
}

func TestConfigureFailsOnLineError(t *testing.T) {
	line := dhttest.NewDHT22()
	line.ConfigErr = errors.New("no such pin")
	d := dht.New(line, line)
	assert.Error(t, d.Configure())
}

func TestUpdate_SensorInterface(t *testing.T) {
	line := dhttest.NewDHT22(
		dhttest.FrameDHT22(21.0, 42.0),
		dhttest.Corrupt(dhttest.FrameDHT22(21.0, 42.0)),
	)
	d := newDevice(t, line, dht.DHT22)
	var s drivers.Sensor = d

	assert.NoError(t, s.Update(drivers.Voltage))
	assert.Equal(t, 0, line.Attempts)

	assert.NoError(t, s.Update(drivers.Temperature|drivers.Humidity))
	assert.InDelta(t, 21.0, d.Last().Temperature, eps)

	line.Advance(2000)
	assert.ErrorIs(t, s.Update(drivers.Humidity), dht.ErrChecksum)
}

func TestModelMetadata(t *testing.T) {
	cases := []struct {
		model              dht.Model
		period             int
		decT, decH         int
		tLo, tHi, hLo, hHi int
	}{
		{dht.DHT11, 1000, 0, 0, 0, 50, 20, 90},
		{dht.DHT22, 2000, 1, 0, -40, 125, 0, 100},
		{dht.AM2302, 2000, 1, 0, -40, 125, 0, 100},
		{dht.RHT03, 2000, 1, 0, -40, 125, 0, 100},
	}
	for _, tc := range cases {
		t.Run(tc.model.String(), func(t *testing.T) {
			d := newDevice(t, dhttest.NewDHT22(), tc.model)
			assert.Equal(t, tc.model, d.Model())
			assert.Equal(t, 4, d.Pin())
			assert.Equal(t, tc.period, d.MinimumSamplingPeriod())
			assert.Equal(t, tc.decT, d.DecimalsTemperature())
			assert.Equal(t, tc.decH, d.DecimalsHumidity())
			assert.Equal(t, tc.tLo, d.LowerBoundTemperature())
			assert.Equal(t, tc.tHi, d.UpperBoundTemperature())
			assert.Equal(t, tc.hLo, d.LowerBoundHumidity())
			assert.Equal(t, tc.hHi, d.UpperBoundHumidity())
		})
	}
}

func TestParseModel(t *testing.T) {
	for _, m := range []dht.Model{dht.DHT11, dht.DHT22, dht.AM2302, dht.RHT03} {
		assert.Equal(t, m, dht.ParseModel(m.String()))
	}
	assert.Equal(t, dht.AutoDetect, dht.ParseModel("auto"))
	assert.Equal(t, dht.AutoDetect, dht.ParseModel("bme280"))
}

func TestComfortProfileOnDevice(t *testing.T) {
	d := newDevice(t, dhttest.NewDHT22(), dht.DHT22)
	assert.Equal(t, climate.DefaultProfile(), d.ComfortProfile())

	assert.True(t, d.IsTooHot(30, 50))
	assert.False(t, d.IsTooCold(30, 50))

	p := climate.DefaultProfile()
	p.TooHot = climate.Boundary{M: 0, B: 35}
	d.SetComfortProfile(p)
	assert.False(t, d.IsTooHot(30, 50))

	ratio, state := d.ComfortRatio(24, 50, false)
	assert.Equal(t, 100.0, ratio)
	assert.True(t, state.OK())

	// Configure restores the defaults.
	require.NoError(t, d.Configure(dht.Config{Model: dht.DHT22}))
	assert.Equal(t, climate.DefaultProfile(), d.ComfortProfile())
}
