package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Business Metrics
var (
	RegistriesSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRegistriesSubmitted,
			Help: HelpTextRegistriesSubmitted,
		},
		[]string{LabelActivity},
	)

	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameNotifications,
			Help: HelpTextNotifications,
		},
		[]string{LabelOutcome},
	)

	PayoutAmount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNamePayoutAmount,
			Help: HelpTextPayoutAmount,
		},
	)

	InventoryAdjusts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameInventoryAdjusts,
			Help: HelpTextInventoryAdjusts,
		},
	)

	SnapshotRefreshes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameSnapshotRefreshes,
			Help: HelpTextSnapshotRefreshes,
		},
	)
)
