package envmon

import (
	"math"

	"dhtcode-go/drivers/dht"
	"dhtcode-go/types"
	"dhtcode-go/x/climate"
	"dhtcode-go/x/mathx"
)

// Sensor is the narrow driver contract the service relies on. *dht.Device
// satisfies it.
type Sensor interface {
	TempAndHumidity() dht.Reading
	ResetSamplingTimer()
	Status() dht.Status
	Err() error
	Attempts() uint32

	Model() dht.Model
	Pin() int
	MinimumSamplingPeriod() int
	DecimalsTemperature() int
	DecimalsHumidity() int
	LowerBoundTemperature() int
	UpperBoundTemperature() int
	LowerBoundHumidity() int
	UpperBoundHumidity() int

	ComfortProfile() climate.Profile
	SetComfortProfile(climate.Profile)
	ComfortRatio(t, h float64, isFahrenheit bool) (float64, climate.ComfortState)
}

var _ Sensor = (*dht.Device)(nil)

func infoOf(s Sensor) types.Info {
	return types.Info{
		SchemaVersion: 1,
		Driver:        "dht",
		Detail: types.DHTInfo{
			Model:            s.Model().String(),
			Pin:              s.Pin(),
			MinPeriodMs:      s.MinimumSamplingPeriod(),
			DecimalsTemp:     s.DecimalsTemperature(),
			DecimalsHumidity: s.DecimalsHumidity(),
			TempMinC:         s.LowerBoundTemperature(),
			TempMaxC:         s.UpperBoundTemperature(),
			HumidityMinPct:   s.LowerBoundHumidity(),
			HumidityMaxPct:   s.UpperBoundHumidity(),
		},
	}
}

func temperatureValue(r dht.Reading) types.TemperatureValue {
	return types.TemperatureValue{DeciC: mathx.Fixed[int16](r.Temperature, 10, math.MinInt16, math.MaxInt16)}
}

func humidityValue(r dht.Reading) types.HumidityValue {
	return types.HumidityValue{RHx100: mathx.Fixed[uint16](r.Humidity, 100, 0, 10000)}
}

// deriveClimate computes the secondary metrics of a valid reading in the
// requested unit, scoring comfort against the sensor's profile.
func deriveClimate(s Sensor, r dht.Reading, fahrenheit bool, ts int64) types.ClimateValue {
	t, h, unit := r.Temperature, r.Humidity, "C"
	if fahrenheit {
		t, unit = climate.ToFahrenheit(t), "F"
	}
	ratio, state := s.ComfortRatio(t, h, fahrenheit)
	return types.ClimateValue{
		Unit:             unit,
		Temperature:      t,
		Humidity:         h,
		HeatIndex:        climate.HeatIndex(t, h, fahrenheit),
		DewPoint:         climate.DewPoint(t, h, fahrenheit),
		AbsoluteHumidity: climate.AbsoluteHumidity(t, h, fahrenheit),
		ComfortRatio:     ratio,
		Comfort:          state.String(),
		ComfortFlags:     uint8(state),
		Perception:       climate.ComputePerception(t, h, fahrenheit).String(),
		TS:               ts,
	}
}

// profileFrom applies overrides to the default comfort profile.
func profileFrom(c *types.ComfortConfig) climate.Profile {
	p := climate.DefaultProfile()
	if c == nil {
		return p
	}
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.TooHot.M, c.HotM)
	set(&p.TooHot.B, c.HotB)
	set(&p.TooCold.M, c.ColdM)
	set(&p.TooCold.B, c.ColdB)
	set(&p.TooDry.M, c.DryM)
	set(&p.TooDry.B, c.DryB)
	set(&p.TooHumid.M, c.HumidM)
	set(&p.TooHumid.B, c.HumidB)
	return p
}
