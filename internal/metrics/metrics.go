// Package metrics holds the domain collectors. HTTP request metrics live in the middleware package.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"docvault/internal/access"
)

// Streaming modes used as label values.
const (
	ModeDownload = "download"
	ModeStream   = "stream"
	ModeRange    = "range"
)

// Metrics methods are safe to call on a nil receiver, which records nothing.
type Metrics struct {
	bytesServed     *prometheus.CounterVec
	accessDecisions *prometheus.CounterVec
	cascadeErrors   *prometheus.CounterVec
}

func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		bytesServed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docvault_blob_bytes_served_total",
				Help: "Bytes of blob content handed to clients.",
			},
			[]string{"mode"},
		),
		accessDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docvault_access_decisions_total",
				Help: "Access evaluator decisions by matching rule.",
			},
			[]string{"rule", "allowed"},
		),
		cascadeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docvault_cascade_errors_total",
				Help: "Failed steps during cascading deletes.",
			},
			[]string{"stage"},
		),
	}

	for _, c := range []prometheus.Collector{m.bytesServed, m.accessDecisions, m.cascadeErrors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) AddBytesServed(mode string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.bytesServed.WithLabelValues(mode).Add(float64(n))
}

func (m *Metrics) ObserveDecision(d access.Decision) {
	if m == nil {
		return
	}
	m.accessDecisions.WithLabelValues(string(d.Rule), strconv.FormatBool(d.Allowed)).Inc()
}

// CascadeError counts one failed step, e.g. "blob", "shares", "memberships", "record".
func (m *Metrics) CascadeError(stage string) {
	if m == nil {
		return
	}
	m.cascadeErrors.WithLabelValues(stage).Inc()
}
