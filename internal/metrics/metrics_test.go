package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault/internal/access"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.AddBytesServed(ModeRange, 3)
	m.AddBytesServed(ModeRange, 2)
	m.AddBytesServed(ModeDownload, 0)
	m.ObserveDecision(access.Decision{Allowed: true, Rule: access.RuleGrant})
	m.ObserveDecision(access.Decision{Allowed: false, Rule: access.RuleNone})
	m.CascadeError("blob")

	assert.Equal(t, float64(5), testutil.ToFloat64(m.bytesServed.WithLabelValues(ModeRange)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.accessDecisions.WithLabelValues("grant", "true")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.accessDecisions.WithLabelValues("none", "false")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.cascadeErrors.WithLabelValues("blob")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.bytesServed))
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.AddBytesServed(ModeStream, 10)
		m.ObserveDecision(access.Decision{})
		m.CascadeError("record")
	})
}
