package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgHost = `{
  "dht": {
    "name": "dht",
    "interval": 5,
    "fahrenheit": false
  },
  "log": {
    "level": "info"
  },
  "heartbeat": {
    "interval": 60
  },
  "metrics": {
    "addr": ":9102"
  }
}`

var embeddedConfigs = map[string][]byte{
	"host": []byte(cfgHost),
}
