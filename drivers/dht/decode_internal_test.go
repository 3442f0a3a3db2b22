package dht

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayload_BytesAndChecksum(t *testing.T) {
	b := [5]byte{0x02, 0x8C, 0x01, 0x5F, 0xEE}
	p := PayloadFromBytes(b)

	assert.Equal(t, uint16(0x028C), p.Humidity)
	assert.Equal(t, uint16(0x015F), p.Temperature)
	assert.Equal(t, b, p.Bytes())
	assert.True(t, p.Valid())

	p.Checksum++
	assert.False(t, p.Valid())
}

func TestPayload_ChecksumWraps(t *testing.T) {
	p := Payload{Humidity: 0xFFFF, Temperature: 0x0101}
	// 0xFF + 0xFF + 0x01 + 0x01 = 0x200 -> 0x00
	assert.Equal(t, uint8(0x00), p.Sum())
}

func TestDecodePayload(t *testing.T) {
	cases := []struct {
		name  string
		model Model
		p     Payload
		wantT float64
		wantH float64
	}{
		{"dht22", DHT22, Payload{Humidity: 652, Temperature: 351}, 35.1, 65.2},
		{"dht22 negative", DHT22, Payload{Humidity: 1000, Temperature: 0x8065}, -10.1, 100},
		{"dht22 negative zero", AM2302, Payload{Humidity: 0, Temperature: 0x8000}, 0, 0},
		{"dht11", DHT11, Payload{Humidity: 0x2D00, Temperature: 0x1704}, 23.4, 45},
		{"dht11 negative", DHT11, Payload{Humidity: 0x3C00, Temperature: 0x0285}, -2.5, 60},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := DecodePayload(tc.model, tc.p)
			assert.InDelta(t, tc.wantT, r.Temperature, 1e-9)
			assert.InDelta(t, tc.wantH, r.Humidity, 1e-9)
		})
	}
}

func TestShouldSample(t *testing.T) {
	assert.False(t, shouldSample(1998, 0, DHT22))
	assert.True(t, shouldSample(1999, 0, DHT22))
	assert.False(t, shouldSample(998, 0, DHT11))
	assert.True(t, shouldSample(999, 0, DHT11))

	// Reset offset always admits the next call.
	assert.True(t, shouldSample(5, 5-resetOffsetMs, DHT22))
}

func TestShouldSample_SurvivesWrap(t *testing.T) {
	last := int32(math.MaxInt32 - 600)
	assert.False(t, shouldSample(math.MinInt32+500, last, DHT22)) // 1101 ms later
	assert.True(t, shouldSample(math.MinInt32+1500, last, DHT22)) // 2101 ms later
}
