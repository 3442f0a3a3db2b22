//go:build !tinygo

package periphline

import (
	"errors"
	"math"
	"sync"
	"time"

	"periph.io/x/conn/v3/physic"

	"dhtcode-go/drivers/dht"
)

// Env exposes a dht.Device as a periph physic.SenseEnv. It serialises access
// to the device, so Sense and SenseContinuous may be mixed.
type Env struct {
	name string

	mu   sync.Mutex
	dev  *dht.Device
	stop chan struct{}
	done chan struct{}
}

var _ physic.SenseEnv = (*Env)(nil)

func NewEnv(dev *dht.Device, name string) *Env {
	return &Env{dev: dev, name: name}
}

func (e *Env) String() string { return e.name }

// Sense fills temperature and humidity; pressure is left untouched.
func (e *Env) Sense(env *physic.Env) error {
	e.mu.Lock()
	r := e.dev.TempAndHumidity()
	err := e.dev.Err()
	e.mu.Unlock()

	if !r.Valid() {
		if err == nil {
			err = dht.ErrTimeout
		}
		return err
	}
	env.Temperature = celsius(r.Temperature)
	env.Humidity = percentRH(r.Humidity)
	return nil
}

// SenseContinuous samples every interval, never faster than the sensor's
// duty cycle. Failed samples are skipped. Halt stops it.
func (e *Env) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stop != nil {
		return nil, errors.New("periphline: already sensing continuously")
	}
	if floor := time.Duration(e.dev.MinimumSamplingPeriod()) * time.Millisecond; interval < floor {
		interval = floor
	}

	out := make(chan physic.Env)
	e.stop, e.done = make(chan struct{}), make(chan struct{})
	go func(stop, done chan struct{}) {
		defer close(done)
		defer close(out)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			var env physic.Env
			if e.Sense(&env) == nil {
				select {
				case out <- env:
				case <-stop:
					return
				}
			}
			select {
			case <-t.C:
			case <-stop:
				return
			}
		}
	}(e.stop, e.done)
	return out, nil
}

// Precision reports the resolution of the attached model.
func (e *Env) Precision(env *physic.Env) {
	e.mu.Lock()
	defer e.mu.Unlock()
	env.Temperature = physic.Kelvin
	if e.dev.DecimalsTemperature() > 0 {
		env.Temperature = physic.Kelvin / 10
	}
	env.Humidity = physic.PercentRH
	if e.dev.Model() != dht.DHT11 {
		env.Humidity = physic.PercentRH / 10
	}
	env.Pressure = 0
}

// Halt stops continuous sensing, if running.
func (e *Env) Halt() error {
	e.mu.Lock()
	stop, done := e.stop, e.done
	e.stop, e.done = nil, nil
	e.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	return nil
}

func celsius(c float64) physic.Temperature {
	return physic.ZeroCelsius + physic.Temperature(math.Round(c*float64(physic.Kelvin)))
}

func percentRH(h float64) physic.RelativeHumidity {
	return physic.RelativeHumidity(math.Round(h * float64(physic.PercentRH)))
}
