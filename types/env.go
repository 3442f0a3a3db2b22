package types

// ------------------------
// Temperature & humidity
// ------------------------

// DHTInfo is Info.Detail for a DHT sensor.
type DHTInfo struct {
	Model            string `json:"model"` // "dht11", "dht22", ...
	Pin              int    `json:"pin"`
	MinPeriodMs      int    `json:"min_period_ms"`
	DecimalsTemp     int    `json:"decimals_temp"`
	DecimalsHumidity int    `json:"decimals_humidity"`
	TempMinC         int    `json:"temp_min_c"`
	TempMaxC         int    `json:"temp_max_c"`
	HumidityMinPct   int    `json:"humidity_min_pct"`
	HumidityMaxPct   int    `json:"humidity_max_pct"`
}

type TemperatureValue struct {
	// Tenths of °C (e.g. 231 => 23.1°C).
	DeciC int16 `json:"deci_c"`
}

type HumidityValue struct {
	// Hundredths of %RH (0..10000 for 0..100.00%).
	RHx100 uint16 `json:"rh_x100"`
}

// ClimateValue carries the derived metrics of one reading. Temperatures are
// in Unit; humidity is %RH and absolute humidity g/m³.
type ClimateValue struct {
	Unit             string  `json:"unit"` // "C" or "F"
	Temperature      float64 `json:"temperature"`
	Humidity         float64 `json:"humidity"`
	HeatIndex        float64 `json:"heat_index"`
	DewPoint         float64 `json:"dew_point"`
	AbsoluteHumidity float64 `json:"abs_humidity"`
	ComfortRatio     float64 `json:"comfort_ratio"`
	Comfort          string  `json:"comfort"`
	ComfortFlags     uint8   `json:"comfort_flags"`
	Perception       string  `json:"perception"`
	TS               int64   `json:"ts_ms"`
}

// ReadReply answers a control/read request.
type ReadReply struct {
	OK     bool          `json:"ok"`
	Error  string        `json:"error,omitempty"`
	Status string        `json:"status"`
	Value  *ClimateValue `json:"value,omitempty"`
}
