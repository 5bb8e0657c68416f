package classifier

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Source says where a category came from.
type Source string

const (
	SourceCache    Source = "cache"
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// Reasons a remote classification did not produce a category.
const (
	reasonTransport    = "transport"
	reasonUnrecognized = "unrecognized"
	reasonUnavailable  = "unavailable"
	reasonCanceled     = "canceled"
)

// Metrics holds the classifier's Prometheus collectors. A nil *Metrics
// records nothing.
type Metrics struct {
	Classifications *prometheus.CounterVec
	RemoteFailures  *prometheus.CounterVec
	RemoteDuration  prometheus.Histogram
}

// NewMetrics registers the classifier collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Classifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catswitch_classifications_total",
				Help: "Applications classified, by where the category came from",
			},
			[]string{"source"},
		),
		RemoteFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catswitch_remote_failures_total",
				Help: "Remote classifications that fell back, by reason",
			},
			[]string{"reason"},
		),
		RemoteDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "catswitch_remote_duration_seconds",
				Help:    "Remote classification call latency",
				Buckets: []float64{.05, .1, .25, .5, 1, 2, 4, 8, 16},
			},
		),
	}
}

func (m *Metrics) classified(src Source) {
	if m == nil {
		return
	}
	m.Classifications.WithLabelValues(string(src)).Inc()
}

func (m *Metrics) remoteFailed(reason string) {
	if m == nil {
		return
	}
	m.RemoteFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) observeRemote(d time.Duration) {
	if m == nil {
		return
	}
	m.RemoteDuration.Observe(d.Seconds())
}
