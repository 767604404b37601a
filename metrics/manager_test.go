package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerObserve(t *testing.T) {
	m := NewTestManager()

	m.ObserveRecords(map[string]int{"heart_rate": 10, "steps": 3}, 2)
	m.ObserveRecords(map[string]int{"heart_rate": 1}, 0)
	assert.Equal(t, 11.0, testutil.ToFloat64(m.CounterRecords.WithLabelValues("heart_rate")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CounterRecords.WithLabelValues("steps")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterSkipped))

	load := 42.5
	m.ObserveScores(81.2, 73.1, &load)
	assert.Equal(t, 81.2, testutil.ToFloat64(m.GaugeReadiness))
	assert.Equal(t, 73.1, testutil.ToFloat64(m.GaugeRecovery))
	assert.Equal(t, 42.5, testutil.ToFloat64(m.GaugeTrainingLoad.WithLabelValues()))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GaugeTrainingLoadPresent))
	m.ObserveScores(60, 54, nil)
	assert.Equal(t, 0, testutil.CollectAndCount(m.GaugeTrainingLoad))
	assert.Zero(t, testutil.ToFloat64(m.GaugeTrainingLoadPresent))

	end := time.Unix(1760263200, 0)
	m.ObserveRun(nil, 2*time.Second, end)
	m.ObserveRun(errors.New("boom"), time.Second, end.Add(time.Hour))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterRuns.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterRuns.WithLabelValues("error")))
	assert.Equal(t, float64(end.Unix()), testutil.ToFloat64(m.GaugeLastRun))
}

func TestWriteTextfile(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()
	m.GaugeReadiness.Set(77)

	path := filepath.Join(t.TempDir(), "health.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "health_test_readiness_score 77")
}

func TestWriteTextfileOmitsMissingTrainingLoad(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()
	m.ObserveScores(62.5, 56.3, nil)

	path := filepath.Join(t.TempDir(), "health.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "health_test_training_load_present 0")
	assert.NotContains(t, string(data), "health_test_training_load ")
}
