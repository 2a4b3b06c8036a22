package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Provider holds the service-level Prometheus collectors.
type Provider struct {
	mintTotal    *prometheus.CounterVec
	mintFailures *prometheus.CounterVec
	submissions  *prometheus.CounterVec
}

// Attach registers the attendance collectors with the default registerer and
// returns a provider handle.
func Attach() *Provider {
	return &Provider{
		mintTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Subsystem: "scheduler",
			Name:      "mints_total",
			Help:      "Total number of credential mint attempts that succeeded, per event.",
		}, []string{"event"}),
		mintFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Subsystem: "scheduler",
			Name:      "mint_failures_total",
			Help:      "Total number of credential mint attempts that failed, per event.",
		}, []string{"event"}),
		submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Subsystem: "verifier",
			Name:      "submissions_total",
			Help:      "Total number of attendee submissions partitioned by outcome.",
		}, []string{"outcome"}),
	}
}

// MintSucceeded records a successful credential mint.
func (p *Provider) MintSucceeded(eventID string) {
	if p == nil {
		return
	}
	p.mintTotal.WithLabelValues(eventID).Inc()
}

// MintFailed records a failed credential mint.
func (p *Provider) MintFailed(eventID string) {
	if p == nil {
		return
	}
	p.mintFailures.WithLabelValues(eventID).Inc()
}

// SubmissionResolved records a resolved submission outcome.
func (p *Provider) SubmissionResolved(outcome string) {
	if p == nil {
		return
	}
	p.submissions.WithLabelValues(outcome).Inc()
}
