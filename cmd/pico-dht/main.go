//go:build rp2040 || rp2350

package main

import (
	"context"
	"time"

	"dhtcode-go/bus"
	"dhtcode-go/drivers/dht"
	"dhtcode-go/errcode"
	"dhtcode-go/platform/rp2line"
	"dhtcode-go/services/heartbeat"
	"dhtcode-go/types"
	"dhtcode-go/x/climate"
	"dhtcode-go/x/conv"
	"dhtcode-go/x/timex"
)

const (
	dhtPin      = 15
	sensorName  = "indoor"
	samplePause = 2500 * time.Millisecond
)

func itoa(n int) string {
	var buf [20]byte
	return string(conv.Itoa(buf[:], int64(n)))
}

func deci(v float64) string {
	var buf [16]byte
	return string(conv.Deci(buf[:], v))
}

func topic(kind types.Kind, leaf string) bus.Topic {
	return bus.T("env", string(kind), sensorName, leaf)
}

func main() {
	time.Sleep(3 * time.Second)

	println("[main] bootstrapping bus …")
	b := bus.NewBus(4)
	conn := b.NewConnection("dht")
	ui := b.NewConnection("ui")

	mon := ui.Subscribe(bus.T("env", "#"))
	beats := ui.Subscribe(heartbeat.TopicHeartbeat)
	go func() {
		for m := range beats.Channel() {
			if hb, ok := m.Payload.(types.Heartbeat); ok {
				println("[mem]", "up:", itoa(int(hb.UptimeMs/1000))+"s", "alloc:", uint32(hb.Alloc),
					"heapInuse:", uint32(hb.HeapInuse), "mallocs:", uint32(hb.Mallocs))
			}
		}
	}()
	go func() {
		for m := range mon.Channel() {
			switch v := m.Payload.(type) {
			case types.ClimateValue:
				println("[monitor]", m.Topic.String(), "t="+deci(v.Temperature)+v.Unit,
					"rh="+deci(v.Humidity), "hi="+deci(v.HeatIndex), "dew="+deci(v.DewPoint),
					"comfort="+v.Comfort, "feel="+v.Perception)
			case types.ErrorEvent:
				println("[monitor]", m.Topic.String(), "error:", v.Code)
			}
		}
	}()

	heartbeat.New(10*time.Second).Start(context.Background(), b.NewConnection("heartbeat"))

	println("[main] configuring DHT on GPIO", dhtPin, "…")
	line := rp2line.New(dhtPin)
	dev := dht.New(line, timex.NewMono())
	if err := dev.Configure(dht.Config{Model: dht.AutoDetect}); err != nil {
		println("[main] configure failed:", err.Error())
		return
	}
	println("[main] model:", dev.Model().String(), "status:", dev.StatusString())
	conn.Publish(conn.NewMessage(topic(types.KindSensor, "info"), types.Info{
		SchemaVersion: 1, Driver: "dht",
		Detail: types.DHTInfo{Model: dev.Model().String(), Pin: dev.Pin(), MinPeriodMs: dev.MinimumSamplingPeriod()},
	}, true))

	for {
		r := dev.TempAndHumidity()
		ts := time.Now().UnixMilli()
		if !r.Valid() {
			conn.Publish(conn.NewMessage(topic(types.KindSensor, "event"), types.ErrorEvent{
				Code: string(errcode.MapDriverErr(dev.Err())), Op: "read", TS: ts,
			}, false))
		} else {
			ratio, state := dev.ComfortRatio(r.Temperature, r.Humidity, false)
			conn.Publish(conn.NewMessage(topic(types.KindClimate, "value"), types.ClimateValue{
				Unit:             "C",
				Temperature:      r.Temperature,
				Humidity:         r.Humidity,
				HeatIndex:        climate.HeatIndex(r.Temperature, r.Humidity, false),
				DewPoint:         climate.DewPoint(r.Temperature, r.Humidity, false),
				AbsoluteHumidity: climate.AbsoluteHumidity(r.Temperature, r.Humidity, false),
				ComfortRatio:     ratio,
				Comfort:          state.String(),
				ComfortFlags:     uint8(state),
				Perception:       climate.ComputePerception(r.Temperature, r.Humidity, false).String(),
				TS:               ts,
			}, true))
		}
		time.Sleep(samplePause)
	}
}
