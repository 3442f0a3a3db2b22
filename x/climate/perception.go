package climate

// Perception is how humid the air feels, ordered from dry to oppressive.
// Reference: Horstmeyer (2006), dew point relationship to human comfort.
type Perception uint8

const (
	PerceptionDry           Perception = iota // under 10 °C
	PerceptionVeryComfy                       // 10–13 °C
	PerceptionComfy                           // 13–16 °C
	PerceptionOk                              // 16–18 °C
	PerceptionUnComfy                         // 18–21 °C
	PerceptionQuiteUnComfy                    // 21–24 °C
	PerceptionVeryUnComfy                     // 24–26 °C
	PerceptionSevereUncomfy                   // 26 °C and over
)

var perceptionNames = [...]string{
	"dry", "very_comfy", "comfy", "ok",
	"uncomfy", "quite_uncomfy", "very_uncomfy", "severe_uncomfy",
}

func (p Perception) String() string {
	if int(p) < len(perceptionNames) {
		return perceptionNames[p]
	}
	return "unknown"
}

// Upper bounds (exclusive) of each tier, in dew point °C.
var perceptionLimits = [...]float64{10, 13, 16, 18, 21, 24, 26}

// PerceptionFor maps a dew point in °C to its tier. A value equal to a limit
// belongs to the tier above it.
func PerceptionFor(dewC float64) Perception {
	for i, lim := range perceptionLimits {
		if dewC < lim {
			return Perception(i)
		}
	}
	return PerceptionSevereUncomfy
}

// ComputePerception derives the dew point of (t, rh) and classifies it.
func ComputePerception(t, rh float64, isFahrenheit bool) Perception {
	if isFahrenheit {
		t = ToCelsius(t)
	}
	return PerceptionFor(DewPoint(t, rh, false))
}
