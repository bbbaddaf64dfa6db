package metrics

// Metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"

	MetricNameRegistriesSubmitted = "registries_submitted_total"
	MetricNameNotifications       = "notifications_total"
	MetricNamePayoutAmount        = "payout_amount_total"
	MetricNameInventoryAdjusts    = "inventory_adjustments_total"
	MetricNameSnapshotRefreshes   = "snapshot_refreshes_total"
)

// Metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"

	HelpTextRegistriesSubmitted = "Total number of loot registries submitted"
	HelpTextNotifications       = "Total number of Discord webhook notification attempts"
	HelpTextPayoutAmount        = "Total payout value across all submitted registries"
	HelpTextInventoryAdjusts    = "Total number of manual inventory adjustments"
	HelpTextSnapshotRefreshes   = "Total number of reference-data snapshot refreshes"
)

// Label names
const (
	LabelMethod   = "method"
	LabelPath     = "path"
	LabelStatus   = "status"
	LabelActivity = "activity"
	LabelOutcome  = "outcome"
)

// Notification outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// HTTPLatencyBuckets defines the histogram buckets for HTTP request
// duration in seconds, from 1ms to 10s.
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
