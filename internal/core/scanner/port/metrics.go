package port

import (
	"github.com/prometheus/client_golang/prometheus"

	"neoport/internal/core/model"
)

const metricsNamespace = "neoport"

// Metrics 扫描指标
type Metrics struct {
	Probes       *prometheus.CounterVec
	InFlight     prometheus.Gauge
	ScanDuration prometheus.Histogram
	Scans        prometheus.Counter
}

// NewMetrics reg 为 nil 时只创建不注册 (测试场景)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "probes_total",
			Help:      "Number of completed probes by resulting port state.",
		}, []string{"state"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "probes_in_flight",
			Help:      "Number of probes currently holding an admission slot.",
		}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "scan_duration_seconds",
			Help:      "Wall time of complete scans.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		Scans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "scans_total",
			Help:      "Number of scans run.",
		}),
	}

	// 预先初始化各状态，使 /metrics 中始终可见
	for _, state := range []model.PortState{model.PortStateOpen, model.PortStateClosed, model.PortStateFiltered} {
		m.Probes.WithLabelValues(string(state))
	}

	if reg != nil {
		reg.MustRegister(m.Probes, m.InFlight, m.ScanDuration, m.Scans)
	}
	return m
}

func (m *Metrics) observeProbe(state model.PortState) {
	if m == nil {
		return
	}
	m.Probes.WithLabelValues(string(state)).Inc()
}
