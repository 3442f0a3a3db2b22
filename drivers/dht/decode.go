package dht

import "fmt"

// Payload is one 40-bit frame as transmitted by the sensor: two 16-bit data
// words followed by the checksum byte.
type Payload struct {
	Humidity    uint16
	Temperature uint16
	Checksum    uint8
}

// Bytes returns the frame in wire order.
func (p Payload) Bytes() [5]byte {
	return [5]byte{
		byte(p.Humidity >> 8), byte(p.Humidity),
		byte(p.Temperature >> 8), byte(p.Temperature),
		p.Checksum,
	}
}

// Sum is the checksum the sensor should have sent for the two data words.
func (p Payload) Sum() uint8 {
	return uint8(p.Humidity>>8) + uint8(p.Humidity) +
		uint8(p.Temperature>>8) + uint8(p.Temperature)
}

// Valid reports whether the transmitted checksum matches the data words.
func (p Payload) Valid() bool { return p.Sum() == p.Checksum }

// PayloadFromBytes builds a frame from its five wire bytes.
func PayloadFromBytes(b [5]byte) Payload {
	return Payload{
		Humidity:    uint16(b[0])<<8 | uint16(b[1]),
		Temperature: uint16(b[2])<<8 | uint16(b[3]),
		Checksum:    b[4],
	}
}

// DecodePayload converts a frame to engineering units for the given model.
// The checksum is not checked here.
func DecodePayload(m Model, p Payload) Reading {
	var r Reading
	if m == DHT11 {
		r.Humidity = float64(p.Humidity>>8) + float64(p.Humidity&0x00FF)*0.1
		r.Temperature = float64(p.Temperature>>8) + float64(p.Temperature&0x007F)*0.1
		if p.Temperature&0x0080 != 0 {
			r.Temperature = -r.Temperature
		}
		return r
	}

	r.Humidity = float64(p.Humidity) * 0.1
	// Sign and magnitude, not two's complement.
	r.Temperature = float64(p.Temperature&0x7FFF) * 0.1
	if p.Temperature&0x8000 != 0 {
		r.Temperature = -r.Temperature
	}
	return r
}

// Edge layout: three start segments (falling, rising, falling) then a
// rising and a falling edge for each of the 40 data bits.
const (
	firstSegment = -3
	lastSegment  = 2 * 40
)

// transact runs one full exchange on the line: start signal, timed edge
// sampling and checksum verification. It never consults the rate limiter.
func (d *Device) transact() (Payload, Status, error) {
	if err := d.sendStart(); err != nil {
		return Payload{}, StatusTimeout, fmt.Errorf("%w: start signal: %v", ErrTimeout, err)
	}

	var (
		p      Payload
		data   uint16
		failed bool
	)
	// Sampling must stay well under the 30us bit threshold; run it with the
	// platform's preemption guard held.
	d.line.Critical(func() {
		for i := firstSegment; i < lastSegment; i++ {
			held := i&1 != 0
			start := d.clk.NowMicros()
			var age int64
			for {
				age = d.clk.NowMicros() - start
				if age > edgeTimeoutUs {
					failed = true
					return
				}
				if d.line.Get() != held {
					break
				}
			}

			if i >= 0 && i&1 != 0 {
				data <<= 1
				// A zero is ~26-28us high, a one ~70us.
				if age > bitThresholdUs {
					data |= 1
				}
			}

			switch i {
			case 31:
				p.Humidity = data
			case 63:
				p.Temperature = data
				data = 0
			}
		}
	})
	if failed {
		return Payload{}, StatusTimeout, ErrTimeout
	}

	p.Checksum = uint8(data)
	if !p.Valid() {
		return p, StatusChecksum, ErrChecksum
	}
	return p, StatusNone, nil
}

// sendStart drives the line low for the model's hold time, then releases it
// and hands the line to the sensor.
func (d *Device) sendStart() error {
	if err := d.line.ConfigureOutput(); err != nil {
		return err
	}
	d.line.Set(false)
	d.line.DelayMicros(d.model.startHoldUs())
	d.line.Set(true)
	return d.line.ConfigureInput(true)
}
