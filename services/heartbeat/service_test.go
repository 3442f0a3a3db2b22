package heartbeat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dhtcode-go/bus"
	"dhtcode-go/types"
)

func TestHeartbeat_PublishesRetainedBeat(t *testing.T) {
	b := bus.NewBus(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	New(time.Hour).Start(ctx, b.NewConnection("heartbeat"))

	sub := b.NewConnection("test").Subscribe(TopicHeartbeat)
	select {
	case m := <-sub.Channel():
		assert.True(t, m.Retained)
		hb, ok := m.Payload.(types.Heartbeat)
		require.True(t, ok)
		assert.GreaterOrEqual(t, hb.UptimeMs, int64(0))
		assert.Positive(t, hb.Goroutines)
		assert.Positive(t, hb.TS)
	case <-time.After(time.Second):
		t.Fatal("no heartbeat")
	}
}

func TestNew_Interval(t *testing.T) {
	assert.Equal(t, defaultInterval, New(0).interval)
	assert.Equal(t, minInterval, New(10*time.Millisecond).interval)
	assert.Equal(t, 3*time.Second, New(3*time.Second).interval)
}

func TestIntervalOf(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		want    time.Duration
		ok      bool
	}{
		{"float", map[string]any{"interval": 2.5}, 2500 * time.Millisecond, true},
		{"int", map[string]any{"interval": 30}, 30 * time.Second, true},
		{"floored", map[string]any{"interval": 0.1}, time.Second, true},
		{"zero", map[string]any{"interval": 0.0}, 0, false},
		{"env string", map[string]any{"interval": "30"}, 30 * time.Second, true},
		{"bad string", map[string]any{"interval": "soon"}, 0, false},
		{"missing", map[string]any{}, 0, false},
		{"not a map", 5, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := intervalOf(tt.payload)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
