// Package envmon samples a temperature/humidity sensor on a timer and
// publishes its readings and derived climate metrics on the bus.
//
// Topics, for a sensor named <name>:
//
//	env/temperature/<name>/value     TemperatureValue (retained)
//	env/humidity/<name>/value        HumidityValue (retained)
//	env/climate/<name>/value         ClimateValue (retained)
//	env/sensor/<name>/info           Info (retained)
//	env/sensor/<name>/status         SensorStatus (retained)
//	env/sensor/<name>/event          ErrorEvent
//	env/sensor/<name>/control/read   request; reply is ReadReply
//
// The service goroutine is the sensor's only caller.
package envmon

import (
	"context"
	"log/slog"
	"time"

	"github.com/mitchellh/mapstructure"

	"dhtcode-go/bus"
	"dhtcode-go/drivers/dht"
	"dhtcode-go/errcode"
	"dhtcode-go/types"
	"dhtcode-go/x/timex"
)

const (
	serviceName     = "envmon"
	defaultName     = "dht"
	defaultInterval = 5 * time.Second
)

var topicConfigDHT = bus.T("config", "dht")

// Options configures a Service. Zero values take defaults; config/dht
// overrides them at run time.
type Options struct {
	Name       string
	Interval   time.Duration
	Fahrenheit bool
	Logger     *slog.Logger
	Metrics    *Metrics
	// Now stamps published values; defaults to time.Now.
	Now func() time.Time
}

type Service struct {
	sensor  Sensor
	log     *slog.Logger
	metrics *Metrics
	now     func() time.Time

	name       string
	interval   time.Duration
	fahrenheit bool
}

func New(s Sensor, o Options) *Service {
	if o.Name == "" {
		o.Name = defaultName
	}
	if o.Interval <= 0 {
		o.Interval = defaultInterval
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	svc := &Service{
		sensor:     s,
		log:        o.Logger.With("service", serviceName),
		metrics:    o.Metrics,
		now:        o.Now,
		name:       o.Name,
		fahrenheit: o.Fahrenheit,
	}
	svc.interval = svc.clampInterval(o.Interval)
	return svc
}

func (s *Service) topic(kind types.Kind, leaf ...bus.Token) bus.Topic {
	return bus.T("env", string(kind), s.name).Append(leaf...)
}

func (s *Service) controlTopic() bus.Topic { return s.topic(types.KindSensor, "control", "read") }

// clampInterval keeps the period at or above the sensor's duty cycle.
func (s *Service) clampInterval(d time.Duration) time.Duration {
	floor := time.Duration(s.sensor.MinimumSamplingPeriod()) * time.Millisecond
	if d < floor {
		return floor
	}
	return d
}

// Start runs the service loop until ctx ends.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	go s.serviceLoop(ctx, conn)
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigDHT)
	defer conn.Unsubscribe(cfgSub)
	ctrlSub := conn.Subscribe(s.controlTopic())
	defer func() { conn.Unsubscribe(ctrlSub) }()

	tick := time.NewTicker(s.interval)
	defer tick.Stop()

	s.log.Info("started", "sensor", s.name, "model", s.sensor.Model().String(),
		"pin", s.sensor.Pin(), "interval", s.interval)
	s.publishInfo(conn)
	s.sample(conn)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("stopping", "sensor", s.name)
			return

		case <-tick.C:
			s.sample(conn)

		case msg, ok := <-cfgSub.Channel():
			if !ok {
				return
			}
			if s.applyConfig(conn, msg.Payload, tick) {
				conn.Unsubscribe(ctrlSub)
				ctrlSub = conn.Subscribe(s.controlTopic())
				s.publishInfo(conn)
			}

		case msg, ok := <-ctrlSub.Channel():
			if !ok {
				return
			}
			s.handleRead(conn, msg)
		}
	}
}

// sample performs one getter call and publishes its outcome. It returns the
// derived value, or nil when the reading is invalid.
func (s *Service) sample(conn *bus.Connection) *types.ClimateValue {
	before := s.sensor.Attempts()
	r := s.sensor.TempAndHumidity()
	st := s.sensor.Status()
	s.metrics.observe(s.sensor.Attempts()-before, st, s.sensor.Model())

	ts := s.now().UnixMilli()
	if !r.Valid() {
		s.publishFailure(conn, st, ts)
		return nil
	}

	cv := deriveClimate(s.sensor, r, s.fahrenheit, ts)
	conn.Publish(conn.NewMessage(s.topic(types.KindTemperature, "value"), temperatureValue(r), true))
	conn.Publish(conn.NewMessage(s.topic(types.KindHumidity, "value"), humidityValue(r), true))
	conn.Publish(conn.NewMessage(s.topic(types.KindClimate, "value"), cv, true))
	conn.Publish(conn.NewMessage(s.topic(types.KindSensor, "status"), types.SensorStatus{
		Link:   types.LinkUp,
		Status: st.String(),
		TS:     ts,
	}, true))

	s.log.Debug("sample", "sensor", s.name, "temp", cv.Temperature, "unit", cv.Unit,
		"humidity", cv.Humidity, "comfort", cv.Comfort, "perception", cv.Perception)
	return &cv
}

func (s *Service) publishFailure(conn *bus.Connection, st dht.Status, ts int64) {
	err := errcode.Wrap("read", s.sensor.Err())
	if err == nil {
		// Reading invalid without a recorded error: nothing has been sampled.
		err = &errcode.E{C: errcode.NotReady, Op: "read"}
	}
	code := errcode.Of(err)

	link := types.LinkDegraded
	if st == dht.StatusTimeout {
		link = types.LinkDown
	}
	conn.Publish(conn.NewMessage(s.topic(types.KindSensor, "status"), types.SensorStatus{
		Link:   link,
		Status: st.String(),
		Error:  string(code),
		TS:     ts,
	}, true))
	conn.Publish(conn.NewMessage(s.topic(types.KindSensor, "event"), types.ErrorEvent{
		Code: string(code),
		Op:   "read",
		Msg:  err.Error(),
		TS:   ts,
	}, false))

	s.log.Warn("read failed", "sensor", s.name, "status", st.String(), "code", string(code), "err", err)
}

func (s *Service) publishInfo(conn *bus.Connection) {
	conn.Publish(conn.NewMessage(s.topic(types.KindSensor, "info"), infoOf(s.sensor), true))
}

// handleRead answers a control/read request. A payload of {"force": true}
// restarts the sampling window so the reply reflects a fresh transaction.
func (s *Service) handleRead(conn *bus.Connection, msg *bus.Message) {
	if m, ok := msg.Payload.(map[string]any); ok {
		if force, _ := m["force"].(bool); force {
			s.sensor.ResetSamplingTimer()
		}
	}

	cv := s.sample(conn)
	reply := types.ReadReply{
		OK:     cv != nil,
		Status: s.sensor.Status().String(),
		Value:  cv,
	}
	if cv == nil {
		reply.Error = string(errcode.MapDriverErr(s.sensor.Err()))
	}
	conn.Reply(msg, reply, false)
}

// applyConfig merges a config/dht payload. It reports whether the sensor
// name changed; the caller then moves the control subscription and
// republishes info.
func (s *Service) applyConfig(conn *bus.Connection, payload any, tick *time.Ticker) bool {
	if payload == nil {
		return false
	}
	var cfg types.DHTConfig
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
	})
	if err == nil {
		err = dec.Decode(payload)
	}
	if err != nil {
		s.log.Warn("ignoring config", "sensor", s.name, "code", string(errcode.InvalidPayload), "err", err)
		return false
	}

	if cfg.Interval > 0 {
		floor := time.Duration(s.sensor.MinimumSamplingPeriod()) * time.Millisecond
		s.interval = timex.PeriodFromSeconds(cfg.Interval, floor)
		tick.Reset(s.interval)
	}
	if cfg.Fahrenheit != nil {
		s.fahrenheit = *cfg.Fahrenheit
	}
	if cfg.Comfort != nil {
		s.sensor.SetComfortProfile(profileFrom(cfg.Comfort))
	}

	renamed := cfg.Name != "" && cfg.Name != s.name
	if renamed {
		s.clearRetained(conn)
		s.name = cfg.Name
	}

	s.log.Info("config applied", "sensor", s.name, "interval", s.interval,
		"fahrenheit", s.fahrenheit, "custom_comfort", cfg.Comfort != nil)
	return renamed
}

// clearRetained drops every retained value published under the current name.
func (s *Service) clearRetained(conn *bus.Connection) {
	for _, t := range []bus.Topic{
		s.topic(types.KindTemperature, "value"),
		s.topic(types.KindHumidity, "value"),
		s.topic(types.KindClimate, "value"),
		s.topic(types.KindSensor, "info"),
		s.topic(types.KindSensor, "status"),
	} {
		conn.Publish(conn.NewMessage(t, nil, true))
	}
}
