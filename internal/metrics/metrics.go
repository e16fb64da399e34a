// Package metrics defines and registers the custom Prometheus metrics for
// orderdesk. Metrics register with the default registry on package init and
// are exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "orderdesk"

// Login attempt results
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultError    = "error"
	ResultRejected = "rejected"
)

// LoginAttemptsTotal counts login submissions.
// Label:
//   - result: "success", "failure" (authenticator said no), "error"
//     (session could not be established) or "rejected" (already pending)
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login submissions, by result.",
	},
	[]string{"result"},
)

// LoginDuration measures how long the authentication call takes.
var LoginDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "login_duration_seconds",
		Help:      "Duration of the authentication call for a login submission.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// LoginFormsActive tracks login forms currently held in the form registry.
var LoginFormsActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "login_forms_active",
		Help:      "Number of login forms awaiting submission.",
	},
)

// HTTPRequestsTotal counts served HTTP requests.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by method and status code.",
	},
	[]string{"method", "status"},
)
