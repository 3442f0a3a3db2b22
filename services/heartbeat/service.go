// Package heartbeat publishes a periodic liveness beat with uptime and heap
// figures. Its period follows config/heartbeat {"interval": <seconds>}.
package heartbeat

import (
	"context"
	"runtime"
	"strconv"
	"time"

	"dhtcode-go/bus"
	"dhtcode-go/types"
	"dhtcode-go/x/timex"
)

const (
	defaultInterval = 10 * time.Second
	minInterval     = time.Second
)

var (
	topicConfigHeartbeat = bus.T("config", "heartbeat")
	TopicHeartbeat       = bus.T("sys", "heartbeat")
)

type Service struct {
	interval time.Duration
	start    time.Time
}

// New returns a service beating every interval (default 10s, floor 1s).
func New(interval time.Duration) *Service {
	if interval <= 0 {
		interval = defaultInterval
	}
	if interval < minInterval {
		interval = minInterval
	}
	return &Service{interval: interval, start: time.Now()}
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(s.interval)
	defer tick.Stop()

	s.beat(conn, time.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-tick.C:
			s.beat(conn, t)
		case msg, ok := <-cfgSub.Channel():
			if !ok {
				return
			}
			if d, ok := intervalOf(msg.Payload); ok && d != s.interval {
				s.interval = d
				tick.Reset(d)
			}
		}
	}
}

func (s *Service) beat(conn *bus.Connection, t time.Time) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	conn.Publish(conn.NewMessage(TopicHeartbeat, types.Heartbeat{
		UptimeMs:   t.Sub(s.start).Milliseconds(),
		Alloc:      ms.Alloc,
		HeapInuse:  ms.HeapInuse,
		Mallocs:    ms.Mallocs,
		Goroutines: runtime.NumGoroutine(),
		TS:         t.UnixMilli(),
	}, true))
}

// intervalOf reads the period from a config/heartbeat payload.
func intervalOf(payload any) (time.Duration, bool) {
	m, ok := payload.(map[string]any)
	if !ok {
		return 0, false
	}
	var secs float64
	switch v := m["interval"].(type) {
	case float64:
		secs = v
	case int:
		secs = float64(v)
	case int64:
		secs = float64(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		secs = f
	default:
		return 0, false
	}
	if secs <= 0 {
		return 0, false
	}
	return timex.PeriodFromSeconds(secs, minInterval), true
}

// Start runs the heartbeat until ctx ends.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	go s.serviceLoop(ctx, conn)
}
