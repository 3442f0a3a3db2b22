//go:build !tinygo

package periphline

import (
	"runtime/debug"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"

	"dhtcode-go/drivers/dht"
	"dhtcode-go/drivers/dht/dhttest"
	"dhtcode-go/errcode"
)

func TestLine_OutputAndLevels(t *testing.T) {
	p := &gpiotest.Pin{N: "GPIO4", Num: 4}
	l := New(p)

	assert.Equal(t, 4, l.Number())
	assert.Equal(t, "GPIO4", l.String())

	require.NoError(t, l.ConfigureOutput())
	assert.True(t, l.Get())

	l.Set(false)
	assert.Equal(t, gpio.Low, p.Read())
	assert.False(t, l.Get())

	l.Set(true)
	assert.True(t, l.Get())
}

func TestLine_InputPull(t *testing.T) {
	p := &gpiotest.Pin{N: "GPIO17", Num: 17}
	l := New(p)

	require.NoError(t, l.ConfigureInput(true))
	assert.Equal(t, gpio.PullUp, p.P)

	require.NoError(t, l.ConfigureInput(false))
	assert.Equal(t, gpio.Float, p.P)
}

func TestOpen_UnknownPin(t *testing.T) {
	_, err := Open("NO_SUCH_PIN_42")
	require.Error(t, err)
	assert.Equal(t, errcode.UnknownPin, errcode.Of(err))
	assert.Contains(t, err.Error(), "NO_SUCH_PIN_42")
}

func TestCritical_RestoresGC(t *testing.T) {
	l := New(&gpiotest.Pin{N: "GPIO4", Num: 4})

	prev := debug.SetGCPercent(77)
	defer debug.SetGCPercent(prev)

	ran := false
	l.Critical(func() {
		ran = true
		assert.Equal(t, -1, debug.SetGCPercent(-1))
	})
	assert.True(t, ran)
	assert.Equal(t, 77, debug.SetGCPercent(77))
}

func TestDelayMicros(t *testing.T) {
	l := New(&gpiotest.Pin{N: "GPIO4", Num: 4})
	start := time.Now()
	l.DelayMicros(300)
	assert.GreaterOrEqual(t, time.Since(start), 300*time.Microsecond)
}

func newEnv(t *testing.T, line *dhttest.Line, m dht.Model) *Env {
	t.Helper()
	d := dht.New(line, line)
	require.NoError(t, d.Configure(dht.Config{Model: m}))
	return NewEnv(d, "dht-test")
}

func TestEnv_Sense(t *testing.T) {
	e := newEnv(t, dhttest.NewDHT22(dhttest.FrameDHT22(-5.5, 62.5)), dht.DHT22)

	env := physic.Env{Pressure: 101 * physic.KiloPascal}
	require.NoError(t, e.Sense(&env))

	assert.Equal(t, physic.ZeroCelsius-5500*physic.MilliKelvin, env.Temperature)
	assert.Equal(t, 625*physic.MilliRH, env.Humidity)
	assert.Equal(t, 101*physic.KiloPascal, env.Pressure, "pressure untouched")
	assert.Equal(t, "dht-test", e.String())
}

func TestEnv_SenseFailure(t *testing.T) {
	e := newEnv(t, dhttest.NewDHT22(dhttest.Corrupt(dhttest.FrameDHT22(20, 50))), dht.DHT22)

	var env physic.Env
	assert.ErrorIs(t, e.Sense(&env), dht.ErrChecksum)
	assert.Zero(t, env.Temperature)
}

func TestEnv_Precision(t *testing.T) {
	var env physic.Env
	newEnv(t, dhttest.NewDHT22(), dht.DHT22).Precision(&env)
	assert.Equal(t, physic.Kelvin/10, env.Temperature)
	assert.Equal(t, physic.PercentRH/10, env.Humidity)

	newEnv(t, dhttest.NewDHT11(), dht.DHT11).Precision(&env)
	assert.Equal(t, physic.Kelvin, env.Temperature)
	assert.Equal(t, physic.PercentRH, env.Humidity)
}

func TestEnv_SenseContinuous(t *testing.T) {
	e := newEnv(t, dhttest.NewDHT22(dhttest.FrameDHT22(21, 45)), dht.DHT22)

	ch, err := e.SenseContinuous(time.Millisecond)
	require.NoError(t, err)

	_, err = e.SenseContinuous(time.Millisecond)
	assert.Error(t, err, "second stream refused")

	select {
	case env := <-ch:
		assert.Equal(t, physic.ZeroCelsius+21*physic.Kelvin, env.Temperature)
	case <-time.After(time.Second):
		t.Fatal("no sample")
	}

	require.NoError(t, e.Halt())
	for range ch {
	}
	require.NoError(t, e.Halt(), "halt is idempotent")
}
