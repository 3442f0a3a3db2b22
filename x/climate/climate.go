// Package climate derives secondary environmental metrics from a
// temperature/relative-humidity pair: unit conversion, heat index, dew point,
// absolute humidity, a comfort classification and a dew-point based
// perception level.
//
// Every function that takes an isFahrenheit flag interprets its temperature
// argument (and returns temperatures) in that unit; humidity is always %RH.
package climate

import "math"

func ToFahrenheit(c float64) float64 { return 1.8*c + 32 }
func ToCelsius(f float64) float64    { return (f - 32) / 1.8 }

// HeatIndex returns the apparent temperature using Steadman's simple
// estimate, switching to the Rothfusz regression above 79 °F.
// Reference: NOAA WPC heat index equation.
func HeatIndex(t, rh float64, isFahrenheit bool) float64 {
	if !isFahrenheit {
		t = ToFahrenheit(t)
	}

	hi := 0.5 * (t + 61 + (t-68)*1.2 + rh*0.094)
	if hi > 79 {
		hi = rothfusz(t, rh)
		switch {
		case rh < 13 && t >= 80 && t <= 112:
			hi -= ((13 - rh) * 0.25) * math.Sqrt((17-math.Abs(t-95))*0.05882)
		case rh > 85 && t >= 80 && t <= 87:
			hi += ((rh - 85) * 0.1) * ((87 - t) * 0.2)
		}
	}

	if isFahrenheit {
		return hi
	}
	return ToCelsius(hi)
}

// rothfusz is the nine-term regression, t in °F.
func rothfusz(t, rh float64) float64 {
	t2, rh2 := t*t, rh*rh
	return -42.379 +
		2.04901523*t +
		10.14333127*rh +
		-0.22475541*t*rh +
		-0.00683783*t2 +
		-0.05481717*rh2 +
		0.00122874*t2*rh +
		0.00085282*t*rh2 +
		-0.00000199*t2*rh2
}

// DewPoint returns the dew point. The saturation vapour pressure comes from
// the Goff-Gratch style series referenced to 373.15 K and the result from the
// inverted Magnus form.
// Reference: wahiduddin.net/calc/density_algorithms.htm
func DewPoint(t, rh float64, isFahrenheit bool) float64 {
	if isFahrenheit {
		t = ToCelsius(t)
	}

	ratio := 373.15 / (273.15 + t)
	sum := -7.90298 * (ratio - 1)
	sum += 5.02808 * math.Log10(ratio)
	sum += -1.3816e-7 * (math.Pow(10, 11.344*(1-1/ratio)) - 1)
	sum += 8.1328e-3 * (math.Pow(10, -3.49149*(ratio-1)) - 1)
	sum += math.Log10(1013.246)

	vp := math.Pow(10, sum-3) * rh // kPa
	x := math.Log(vp / 0.61078)
	dew := 241.88 * x / (17.558 - x)

	if isFahrenheit {
		return ToFahrenheit(dew)
	}
	return dew
}

// AbsoluteHumidity returns water vapour density in g/m³.
func AbsoluteHumidity(t, rh float64, isFahrenheit bool) float64 {
	if isFahrenheit {
		t = ToCelsius(t)
	}
	return 6.112 * math.Exp(17.67*t/(243.5+t)) * rh * 2.1674 / (t + 273.15)
}
