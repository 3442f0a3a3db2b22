package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItoa(t *testing.T) {
	var buf [20]byte
	for _, tt := range []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{-40, "-40"},
		{2000, "2000"},
		{math.MaxInt32, "2147483647"},
	} {
		assert.Equal(t, tt.want, string(Itoa(buf[:], tt.in)))
	}
	assert.Empty(t, Itoa(nil, 5))
}

func TestDeci(t *testing.T) {
	var buf [16]byte
	for _, tt := range []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{21, "21.0"},
		{23.14, "23.1"},
		{50.36, "50.4"},
		{-3.5, "-3.5"},
		{-0.25, "-0.3"},
		{-40, "-40.0"},
		{math.NaN(), "0.0"},
	} {
		assert.Equal(t, tt.want, string(Deci(buf[:], tt.in)), "%v", tt.in)
	}
	assert.Empty(t, Deci(buf[:2], 1))
}
