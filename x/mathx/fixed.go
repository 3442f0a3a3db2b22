package mathx

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Fixed scales v by scale, rounds half away from zero and saturates to the
// range of T. NaN maps to zero; callers check validity first.
func Fixed[T constraints.Integer](v, scale float64, lo, hi T) T {
	if math.IsNaN(v) {
		return 0
	}
	x := math.Round(v * scale)
	return T(Clamp(x, float64(lo), float64(hi)))
}
