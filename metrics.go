package jumpkit

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	placementsTotal *prometheus.CounterVec
	probes          prometheus.Histogram
	servers         prometheus.Gauge
	placedKeys      prometheus.GaugeFunc

	capacitySlack prometheus.Gauge
	maxAttempts   prometheus.Gauge
}

var _ prometheus.Collector = (*metrics)(nil)

func newMetrics(cfg Config, loads *LoadTable) *metrics {
	var m metrics

	m.placementsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jumpkit_placements_total",
		Help: "Total number of placement calls. result will be one of: placed or overflow.",
	}, []string{"result"})
	m.probes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "jumpkit_placement_probes",
		Help:    "Histogram of the number of servers probed per placement.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 8),
	})
	m.servers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jumpkit_servers",
		Help: "Current number of servers in the roster.",
	})
	m.placedKeys = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "jumpkit_placed_keys",
		Help: "Current number of keys placed and not yet released.",
	}, func() float64 {
		return float64(loads.total.Load())
	})

	m.capacitySlack = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jumpkit_capacity_slack",
		Help: "Configured multiplicative allowance above the fleet-average load.",
	})
	m.maxAttempts = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jumpkit_max_attempts",
		Help: "Configured maximum number of servers probed per placement.",
	})

	// Set constants
	m.servers.Set(float64(cfg.InitialServers))
	m.capacitySlack.Set(cfg.CapacitySlack)
	m.maxAttempts.Set(float64(cfg.MaxAttempts))

	return &m
}

func (m *metrics) Describe(ch chan<- *prometheus.Desc) {
	m.placementsTotal.Describe(ch)
	m.probes.Describe(ch)
	m.servers.Describe(ch)
	m.placedKeys.Describe(ch)
	m.capacitySlack.Describe(ch)
	m.maxAttempts.Describe(ch)
}

func (m *metrics) Collect(ch chan<- prometheus.Metric) {
	m.placementsTotal.Collect(ch)
	m.probes.Collect(ch)
	m.servers.Collect(ch)
	m.placedKeys.Collect(ch)
	m.capacitySlack.Collect(ch)
	m.maxAttempts.Collect(ch)
}
