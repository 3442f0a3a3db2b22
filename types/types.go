package types

// Link is the link/state reported for a sensor.
type Link string

const (
	LinkUp       Link = "up"
	LinkDown     Link = "down"
	LinkDegraded Link = "degraded"
)

// Kind names the value published under env/<kind>/<name>/value.
type Kind string

const (
	KindTemperature Kind = "temperature"
	KindHumidity    Kind = "humidity"
	KindClimate     Kind = "climate"
	KindSensor      Kind = "sensor"
)

// Info envelope each sensor exposes (retained).
type Info struct {
	SchemaVersion int    `json:"schema_version"`
	Driver        string `json:"driver"`
	Detail        any    `json:"detail,omitempty"`
}

// SensorStatus is the retained health of a sensor after each attempt.
type SensorStatus struct {
	Link   Link   `json:"link"`
	Status string `json:"status"` // "OK", "TIMEOUT", "CHECKSUM"
	Error  string `json:"error,omitempty"`
	TS     int64  `json:"ts_ms"`
}

// ErrorEvent is published (not retained) when an attempt fails.
type ErrorEvent struct {
	Code string `json:"code"`
	Op   string `json:"op"`
	Msg  string `json:"msg,omitempty"`
	TS   int64  `json:"ts_ms"`
}

// Heartbeat is the retained liveness beat on sys/heartbeat.
type Heartbeat struct {
	UptimeMs   int64  `json:"uptime_ms"`
	Alloc      uint64 `json:"alloc"`
	HeapInuse  uint64 `json:"heap_inuse"`
	Mallocs    uint64 `json:"mallocs"`
	Goroutines int    `json:"goroutines"`
	TS         int64  `json:"ts_ms"`
}
