package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RegistersAndCounts(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()

	m.CounterReps.Inc()
	m.CounterReps.Inc()
	m.CounterSelections.WithLabelValues("squats").Inc()
	m.GaugeSessionActive.Set(1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterReps))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterSelections.WithLabelValues("squats")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GaugeSessionActive))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["nutrical_test_reps"])
	assert.True(t, names["nutrical_test_session_active"])
}

func TestManager_SeparateRegistries(t *testing.T) {
	// two managers must not collide on registration
	assert.NotPanics(t, func() {
		NewDiscardManager()
		NewDiscardManager()
	})
}

func TestSetupPrometheus(t *testing.T) {
	reg := SetupPrometheus()
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
