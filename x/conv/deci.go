package conv

import "dhtcode-go/x/mathx"

// Deci writes v rounded to one decimal place ("-3.5", "21.0") into buf and
// returns the used slice. buf should be length >= 13. NaN renders as "0.0".
func Deci(buf []byte, v float64) []byte {
	if len(buf) < 3 {
		return buf[:0]
	}
	n := int64(mathx.Fixed[int32](v, 10, -1<<30, 1<<30))
	neg := n < 0
	if neg {
		n = -n
	}
	i := len(buf)
	i--
	buf[i] = byte('0' + n%10)
	i--
	buf[i] = '.'
	head := Itoa(buf[:i], n/10)
	i -= len(head)
	if neg && i > 0 {
		i--
		buf[i] = '-'
	}
	return buf[i:]
}
