//go:build !tinygo

// dht-monitor samples a DHT sensor on a Linux GPIO, publishes readings on the
// in-process bus and exports transaction counters for Prometheus.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"periph.io/x/conn/v3/physic"

	"dhtcode-go/bus"
	"dhtcode-go/drivers/dht"
	"dhtcode-go/platform/periphline"
	"dhtcode-go/services/config"
	"dhtcode-go/services/envmon"
	"dhtcode-go/services/heartbeat"
	"dhtcode-go/types"
	"dhtcode-go/x/strx"
	"dhtcode-go/x/timex"
)

var logLevelMapping = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func main() {
	var (
		device      = pflag.String("device", "host", "embedded config to start from")
		cfgFile     = pflag.StringP("config", "c", "", "JSON config merged over the embedded defaults")
		pinName     = pflag.StringP("pin", "p", "GPIO4", "GPIO the sensor data line is wired to")
		model       = pflag.StringP("model", "m", "auto", "sensor model: auto, dht11, dht22, am2302 or rht03")
		logLevel    = pflag.String("log-level", "", "debug, info, warn or error (overrides config)")
		metricsAddr = pflag.String("metrics-addr", "", "listen address for /metrics (overrides config)")
		watch       = pflag.Bool("watch", false, "republish config when the file changes")
		once        = pflag.Bool("once", false, "print a single reading and exit")
	)
	pflag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = context.WithValue(ctx, config.CtxDeviceKey, *device)

	b := bus.NewBus(32)
	cfgConn := b.NewConnection("config")
	cfgSvc := config.NewConfigService(*cfgFile, slog.Default())
	if err := cfgSvc.Publish(ctx, cfgConn); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	level := strx.Coalesce(*logLevel, cfgSvc.GetString("log.level"), "info")
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: level == "debug",
		Level:     logLevelMapping[level],
	})))

	if err := periphline.HostInit(); err != nil {
		slog.Error("host init failed", "err", err)
		os.Exit(1)
	}
	line, err := periphline.Open(*pinName)
	if err != nil {
		slog.Error("open pin failed", "pin", *pinName, "err", err)
		os.Exit(1)
	}
	dev := dht.New(line, timex.NewMono())
	if err := dev.Configure(dht.Config{Model: dht.ParseModel(*model)}); err != nil {
		slog.Error("configure failed", "pin", *pinName, "err", err)
		os.Exit(1)
	}

	name := strx.Coalesce(cfgSvc.GetString("dht.name"), "dht")
	if *once {
		if err := printOnce(periphline.NewEnv(dev, name)); err != nil {
			slog.Error("read failed", "sensor", name, "model", dev.Model().String(), "err", err)
			os.Exit(1)
		}
		return
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := envmon.New(dev, envmon.Options{
		Name:       name,
		Interval:   timex.PeriodFromSeconds(cfgSvc.GetFloat64("dht.interval"), 0),
		Fahrenheit: cfgSvc.GetBool("dht.fahrenheit"),
		Logger:     slog.Default(),
		Metrics:    envmon.NewMetrics(reg, name),
	})

	monitor(ctx, b.NewConnection("monitor"))
	heartbeat.New(timex.PeriodFromSeconds(cfgSvc.GetFloat64("heartbeat.interval"), 0)).Start(ctx, b.NewConnection("heartbeat"))
	svc.Start(ctx, b.NewConnection("envmon"))
	if *watch {
		cfgSvc.Watch(ctx, cfgConn)
	}

	srv := serveMetrics(strx.Coalesce(*metricsAddr, cfgSvc.GetString("metrics.addr")), reg)

	<-ctx.Done()
	slog.Info("shutting down")
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown", "err", err)
		}
	}
}

func printOnce(env physic.SenseEnv) error {
	var e physic.Env
	if err := env.Sense(&e); err != nil {
		return err
	}
	fmt.Printf("%s: %s %s\n", env, e.Temperature, e.Humidity)
	return nil
}

// serveMetrics exposes reg on addr/metrics. An empty addr disables it.
func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		slog.Info("metrics listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "err", err)
		}
	}()
	return srv
}

// monitor logs everything published under env/ and the heartbeat.
func monitor(ctx context.Context, conn *bus.Connection) {
	env := conn.Subscribe(bus.T("env", "#"))
	hb := conn.Subscribe(heartbeat.TopicHeartbeat)
	go func() {
		defer conn.Disconnect()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-hb.Channel():
				if !ok {
					return
				}
				if v, ok := m.Payload.(types.Heartbeat); ok {
					slog.Debug("heartbeat", "uptime_ms", v.UptimeMs, "alloc", v.Alloc,
						"heap_inuse", v.HeapInuse, "goroutines", v.Goroutines)
				}
			case m, ok := <-env.Channel():
				if !ok {
					return
				}
				switch v := m.Payload.(type) {
				case types.ClimateValue:
					slog.Info("climate", "topic", m.Topic.String(), "temp", v.Temperature, "unit", v.Unit,
						"humidity", v.Humidity, "heat_index", v.HeatIndex, "dew_point", v.DewPoint,
						"comfort", v.Comfort, "perception", v.Perception)
				case types.ErrorEvent:
					slog.Warn("sensor error", "topic", m.Topic.String(), "code", v.Code, "msg", v.Msg)
				default:
					slog.Debug("bus", "topic", m.Topic.String(), "payload", v)
				}
			}
		}
	}()
}
