package instrument

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/devmaster24/shelly-smartplug-exporter/exporter/internal/poller"
)

var deviceLabelNames = []string{"hostname"}

// Metrics describes the exporter's own behaviour. It is registered on its
// own registry and served apart from the device metrics.
type Metrics struct {
	scrapes        prometheus.Counter
	scrapeDuration prometheus.Histogram
	devices        prometheus.Gauge
	deviceUp       *prometheus.GaugeVec
	fetchFailures  *prometheus.CounterVec
}

// New creates the exporter metrics and registers them, together with the
// Go runtime and process collectors, on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		scrapes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shelly",
			Subsystem: "exporter",
			Name:      "scrapes_total",
			Help:      "Number of completed scrape cycles",
		}),
		scrapeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "shelly",
			Subsystem: "exporter",
			Name:      "scrape_duration_seconds",
			Help:      "Time taken to poll all devices for one scrape (seconds)",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
		devices: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "shelly",
			Subsystem: "exporter",
			Name:      "devices",
			Help:      "Number of configured devices",
		}),
		deviceUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "shelly",
			Subsystem: "exporter",
			Name:      "device_up",
			Help:      "Whether the last status fetch of a device succeeded (0 = failed, 1 = ok)",
		}, deviceLabelNames),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shelly",
			Subsystem: "exporter",
			Name:      "fetch_failures_total",
			Help:      "Failed device status fetches by failure kind",
		}, []string{"hostname", "kind"}),
	}
	reg.MustRegister(
		m.scrapes,
		m.scrapeDuration,
		m.devices,
		m.deviceUp,
		m.fetchFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// SetDevices records the configured device count.
func (m *Metrics) SetDevices(n int) {
	m.devices.Set(float64(n))
}

// RecordSnapshot implements poller.Recorder.
func (m *Metrics) RecordSnapshot(snap poller.Snapshot) {
	m.scrapes.Inc()
	m.scrapeDuration.Observe(snap.Duration.Seconds())
	for _, res := range snap.Results {
		labels := prometheus.Labels{"hostname": res.Device.Label}
		if res.OK() {
			m.deviceUp.With(labels).Set(1)
			continue
		}
		m.deviceUp.With(labels).Set(0)
		m.fetchFailures.WithLabelValues(res.Device.Label, res.Err.Kind.String()).Inc()
	}
}
