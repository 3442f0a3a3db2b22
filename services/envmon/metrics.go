package envmon

import (
	"github.com/prometheus/client_golang/prometheus"

	"dhtcode-go/drivers/dht"
)

// Metrics counts sensor transactions. Readings themselves are published on
// the bus, not exported here.
type Metrics struct {
	transactions *prometheus.CounterVec
	model        prometheus.Gauge
}

// NewMetrics registers the collectors on reg, labelled with the sensor name.
func NewMetrics(reg prometheus.Registerer, sensor string) *Metrics {
	labels := prometheus.Labels{"sensor": sensor}
	m := &Metrics{
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "dht_transactions_total",
			Help:        "Sensor transactions that reached the line, by outcome.",
			ConstLabels: labels,
		}, []string{"status"}),
		model: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "dht_model",
			Help:        "Resolved sensor model (0 auto, 1 dht11, 2 dht22, 3 am2302, 4 rht03).",
			ConstLabels: labels,
		}),
	}
	reg.MustRegister(m.transactions, m.model)

	for _, st := range []dht.Status{dht.StatusNone, dht.StatusTimeout, dht.StatusChecksum} {
		m.transactions.WithLabelValues(st.String())
	}
	return m
}

// observe records the n transactions of one getter call, the last ending in
// st. The driver only retries after a timeout, so any earlier ones timed out.
func (m *Metrics) observe(n uint32, st dht.Status, model dht.Model) {
	if m == nil {
		return
	}
	if n > 1 {
		m.transactions.WithLabelValues(dht.StatusTimeout.String()).Add(float64(n - 1))
	}
	if n > 0 {
		m.transactions.WithLabelValues(st.String()).Inc()
	}
	m.model.Set(float64(model))
}
