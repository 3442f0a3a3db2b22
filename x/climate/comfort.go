package climate

import (
	"strings"

	"dhtcode-go/x/mathx"
)

// Boundary is one straight line temperature = M·humidity + B over the
// (%RH, °C) plane.
type Boundary struct {
	M, B float64
}

// At returns the boundary temperature at humidity h.
func (b Boundary) At(h float64) float64 { return h*b.M + b.B }

// Profile is the comfort zone: the quadrilateral enclosed by four boundaries.
type Profile struct {
	TooHot   Boundary
	TooCold  Boundary
	TooDry   Boundary
	TooHumid Boundary
}

// DefaultProfile is a four-line simplification of a thermal comfort chart,
// drawn through A(30%, 30°C) B(70%, 26.2°C) C(70.1%, 20.55°C) D(30.1%, 22.22°C).
// The near-vertical lines carry a 0.1 %RH skew.
func DefaultProfile() Profile {
	return Profile{
		TooHot:   Boundary{M: -0.095, B: 32.85},       // AB
		TooHumid: Boundary{M: -56.5, B: 3981.2},       // BC
		TooCold:  Boundary{M: -0.04175, B: 23.476675}, // DC
		TooDry:   Boundary{M: -77.8, B: 2364},         // AD
	}
}

func (p Profile) IsTooHot(t, h float64) bool   { return t > p.TooHot.At(h) }
func (p Profile) IsTooHumid(t, h float64) bool { return t > p.TooHumid.At(h) }
func (p Profile) IsTooCold(t, h float64) bool  { return t < p.TooCold.At(h) }
func (p Profile) IsTooDry(t, h float64) bool   { return t < p.TooDry.At(h) }

// Signed distances from each boundary; positive means outside the zone.
func (p Profile) distanceTooHot(t, h float64) float64   { return t - p.TooHot.At(h) }
func (p Profile) distanceTooHumid(t, h float64) float64 { return t - p.TooHumid.At(h) }
func (p Profile) distanceTooCold(t, h float64) float64  { return p.TooCold.At(h) - t }
func (p Profile) distanceTooDry(t, h float64) float64   { return p.TooDry.At(h) - t }

// Penalty weights per unit of distance; they compensate for the slopes of the
// temperature-axis and humidity-axis lines.
const (
	tempFactor  = 3
	humidFactor = 0.1
)

// ComfortRatio scores (t, h) from 100 (inside the zone) down to 0 and reports
// which boundaries are violated.
func (p Profile) ComfortRatio(t, h float64, isFahrenheit bool) (float64, ComfortState) {
	if isFahrenheit {
		t = ToCelsius(t)
	}

	ratio := 100.0
	state := ComfortOK

	if d := p.distanceTooHot(t, h); d > 0 {
		state |= ComfortTooHot
		ratio -= d * tempFactor
	}
	if d := p.distanceTooHumid(t, h); d > 0 {
		state |= ComfortTooHumid
		ratio -= d * humidFactor
	}
	if d := p.distanceTooCold(t, h); d > 0 {
		state |= ComfortTooCold
		ratio -= d * tempFactor
	}
	if d := p.distanceTooDry(t, h); d > 0 {
		state |= ComfortTooDry
		ratio -= d * humidFactor
	}

	return mathx.Max(ratio, 0), state
}

// ComfortState is a set of violated comfort boundaries.
type ComfortState uint8

const (
	ComfortOK       ComfortState = 0
	ComfortTooHot   ComfortState = 1 << 0
	ComfortTooCold  ComfortState = 1 << 1
	ComfortTooDry   ComfortState = 1 << 2
	ComfortTooHumid ComfortState = 1 << 3

	ComfortHotAndHumid  = ComfortTooHot | ComfortTooHumid
	ComfortHotAndDry    = ComfortTooHot | ComfortTooDry
	ComfortColdAndHumid = ComfortTooCold | ComfortTooHumid
	ComfortColdAndDry   = ComfortTooCold | ComfortTooDry
)

// Has reports whether every flag in f is set.
func (s ComfortState) Has(f ComfortState) bool { return s&f == f }

func (s ComfortState) OK() bool       { return s == ComfortOK }
func (s ComfortState) TooHot() bool   { return s.Has(ComfortTooHot) }
func (s ComfortState) TooCold() bool  { return s.Has(ComfortTooCold) }
func (s ComfortState) TooDry() bool   { return s.Has(ComfortTooDry) }
func (s ComfortState) TooHumid() bool { return s.Has(ComfortTooHumid) }

// String joins the set flag names with '+', e.g. "too_hot+too_humid".
func (s ComfortState) String() string {
	if s == ComfortOK {
		return "ok"
	}
	var parts []string
	if s.TooHot() {
		parts = append(parts, "too_hot")
	}
	if s.TooCold() {
		parts = append(parts, "too_cold")
	}
	if s.TooDry() {
		parts = append(parts, "too_dry")
	}
	if s.TooHumid() {
		parts = append(parts, "too_humid")
	}
	return strings.Join(parts, "+")
}
