package dht

import "errors"

// Model identifies the attached sensor family.
type Model uint8

const (
	AutoDetect Model = iota
	DHT11
	DHT22
	AM2302 // packaged DHT22
	RHT03  // DHT22 equivalent
)

func (m Model) String() string {
	switch m {
	case DHT11:
		return "dht11"
	case DHT22:
		return "dht22"
	case AM2302:
		return "am2302"
	case RHT03:
		return "rht03"
	default:
		return "auto"
	}
}

// ParseModel accepts the lower-case names returned by String. Unknown names
// map to AutoDetect.
func ParseModel(s string) Model {
	switch s {
	case "dht11", "DHT11":
		return DHT11
	case "dht22", "DHT22":
		return DHT22
	case "am2302", "AM2302":
		return AM2302
	case "rht03", "RHT03":
		return RHT03
	default:
		return AutoDetect
	}
}

// Status is the outcome of the most recent transaction attempt.
type Status uint8

const (
	StatusNone Status = iota
	StatusTimeout
	StatusChecksum
)

func (s Status) String() string {
	switch s {
	case StatusTimeout:
		return "TIMEOUT"
	case StatusChecksum:
		return "CHECKSUM"
	default:
		return "OK"
	}
}

// Errors returned by the driver.
var (
	ErrTimeout  = errors.New("dht: timeout")
	ErrChecksum = errors.New("dht: checksum mismatch")
)

func (s Status) err() error {
	switch s {
	case StatusTimeout:
		return ErrTimeout
	case StatusChecksum:
		return ErrChecksum
	default:
		return nil
	}
}

// Per-model timing and range constants.
const (
	startHoldDHT11Us = 18 * 1000
	startHoldDHT22Us = 2 * 1000

	minIntervalDHT11Ms = 999
	minIntervalDHT22Ms = 1999

	edgeTimeoutUs  = 90
	bitThresholdUs = 30
)

// MinimumSamplingPeriod returns the documented duty cycle in milliseconds.
func (m Model) MinimumSamplingPeriod() int {
	if m == DHT11 {
		return 1000
	}
	return 2000
}

func (m Model) minIntervalMs() uint32 {
	if m == DHT11 {
		return minIntervalDHT11Ms
	}
	return minIntervalDHT22Ms
}

func (m Model) startHoldUs() uint32 {
	if m == DHT11 {
		return startHoldDHT11Us
	}
	// This will fail for a DHT11, which is how the probe detects one.
	return startHoldDHT22Us
}

func (m Model) DecimalsTemperature() int {
	if m == DHT11 {
		return 0
	}
	return 1
}

func (m Model) DecimalsHumidity() int { return 0 }

func (m Model) LowerBoundTemperature() int {
	if m == DHT11 {
		return 0
	}
	return -40
}

func (m Model) UpperBoundTemperature() int {
	if m == DHT11 {
		return 50
	}
	return 125
}

func (m Model) LowerBoundHumidity() int {
	if m == DHT11 {
		return 20
	}
	return 0
}

func (m Model) UpperBoundHumidity() int {
	if m == DHT11 {
		return 90
	}
	return 100
}
