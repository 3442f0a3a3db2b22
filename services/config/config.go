package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"dhtcode-go/bus"
)

const (
	serviceName  = "config"
	configPrefix = "config"
	envPrefix    = "dht"
)

type ctxKey string

// CtxDeviceKey is the context key carrying the device ID.
const CtxDeviceKey ctxKey = "device"

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

// ConfigService publishes the device configuration as one retained
// config/<key> message per top-level key. The embedded document for the
// device is the base; an optional file is merged over it and DHT_* env vars
// override individual keys (DHT_DHT_INTERVAL=10).
type ConfigService struct {
	Name string

	// File is merged over the embedded defaults when set.
	File string

	log *slog.Logger

	mu sync.Mutex
	v  *viper.Viper
}

func NewConfigService(file string, log *slog.Logger) *ConfigService {
	if log == nil {
		log = slog.Default()
	}
	return &ConfigService{
		Name: serviceName,
		File: file,
		log:  log.With("service", serviceName),
	}
}

// load builds a fresh viper instance for device.
func (s *ConfigService) load(device string) (*viper.Viper, error) {
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return nil, errors.New("no embedded config for device: " + device)
	}

	v := viper.New()
	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("embedded config: %w", err)
	}
	if s.File != "" {
		v.SetConfigFile(s.File)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("config file %s: %w", s.File, err)
		}
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v, nil
}

// publishConfig reads the device config and publishes it as retained messages.
func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	device, _ := ctx.Value(CtxDeviceKey).(string)
	if device == "" {
		return errors.New("missing device ID in context")
	}

	v, err := s.load(device)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.v = v
	s.mu.Unlock()

	s.publish(conn, v)
	return nil
}

func (s *ConfigService) publish(conn *bus.Connection, v *viper.Viper) {
	settings := v.AllSettings()
	for k, val := range settings {
		conn.Publish(conn.NewMessage(bus.T(configPrefix, k), val, true))
	}
	s.log.Info("config published", "keys", len(settings))
}

// Publish loads and publishes the config synchronously.
func (s *ConfigService) Publish(ctx context.Context, conn *bus.Connection) error {
	return s.publishConfig(ctx, conn)
}

// Watch republishes the config whenever File changes. It needs a prior
// successful Publish and is a no-op without a file.
func (s *ConfigService) Watch(ctx context.Context, conn *bus.Connection) {
	device, _ := ctx.Value(CtxDeviceKey).(string)

	s.mu.Lock()
	v := s.v
	s.mu.Unlock()
	if v == nil || s.File == "" {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if ctx.Err() != nil {
			return
		}
		nv, err := s.load(device)
		if err != nil {
			s.log.Warn("config reload failed", "file", e.Name, "err", err)
			return
		}
		s.mu.Lock()
		s.v = nv
		s.mu.Unlock()
		s.log.Info("config reloaded", "file", e.Name, "op", e.Op.String())
		s.publish(conn, nv)
	})
	v.WatchConfig()
}

// GetString returns the current value of a dotted key, or the zero value
// before the first load. GetFloat64 and GetBool behave the same way.
func (s *ConfigService) GetString(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.v == nil {
		return ""
	}
	return s.v.GetString(key)
}

func (s *ConfigService) GetFloat64(key string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.v == nil {
		return 0
	}
	return s.v.GetFloat64(key)
}

func (s *ConfigService) GetBool(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.v == nil {
		return false
	}
	return s.v.GetBool(key)
}
