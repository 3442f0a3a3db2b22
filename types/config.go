package types

// DHTConfig is the payload of config/dht. Absent keys leave the current
// setting alone.
type DHTConfig struct {
	Name       string         `json:"name" mapstructure:"name"`
	Interval   float64        `json:"interval" mapstructure:"interval"` // seconds
	Fahrenheit *bool          `json:"fahrenheit,omitempty" mapstructure:"fahrenheit"`
	Comfort    *ComfortConfig `json:"comfort,omitempty" mapstructure:"comfort"`
}

// ComfortConfig overrides comfort boundaries; nil fields keep the default.
type ComfortConfig struct {
	HotM   *float64 `json:"hot_m,omitempty" mapstructure:"hot_m"`
	HotB   *float64 `json:"hot_b,omitempty" mapstructure:"hot_b"`
	ColdM  *float64 `json:"cold_m,omitempty" mapstructure:"cold_m"`
	ColdB  *float64 `json:"cold_b,omitempty" mapstructure:"cold_b"`
	DryM   *float64 `json:"dry_m,omitempty" mapstructure:"dry_m"`
	DryB   *float64 `json:"dry_b,omitempty" mapstructure:"dry_b"`
	HumidM *float64 `json:"humid_m,omitempty" mapstructure:"humid_m"`
	HumidB *float64 `json:"humid_b,omitempty" mapstructure:"humid_b"`
}
