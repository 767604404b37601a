package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	Namespace = "health"
	Subsystem = "analyzer"
)

type Manager struct {
	// counters
	CounterRecords *prometheus.CounterVec
	CounterSkipped prometheus.Counter
	CounterRuns    *prometheus.CounterVec

	// gauges
	GaugeReadiness    prometheus.Gauge
	GaugeRecovery     prometheus.Gauge
	// Unlabelled vec so the series is absent while training load is omitted.
	GaugeTrainingLoad        *prometheus.GaugeVec
	GaugeTrainingLoadPresent prometheus.Gauge
	GaugeWorkouts            prometheus.Gauge
	GaugeLastRun             prometheus.Gauge

	// histograms
	HistRunDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager(Namespace, "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager(Namespace, "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRecords := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "records_ingested_total",
		Help:      "Number of records ingested per category",
	}, []string{"category"})
	counterSkipped := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "records_skipped_total",
		Help:      "Number of malformed records dropped",
	})
	counterRuns := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "runs_total",
		Help:      "Number of analysis runs by outcome",
	}, []string{"status"})

	gaugeReadiness := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "readiness_score",
		Help:      "Latest readiness score",
	})
	gaugeRecovery := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "recovery_score",
		Help:      "Latest recovery score",
	})
	gaugeTrainingLoad := factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "training_load",
		Help:      "Latest training load, absent when there is no recent step data",
	}, nil)
	gaugeTrainingLoadPresent := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "training_load_present",
		Help:      "1 when the latest run computed a training load, else 0",
	})
	gaugeWorkouts := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "workout_sessions",
		Help:      "Workout sessions in the latest run",
	})
	gaugeLastRun := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time of the latest successful run",
	})

	histRunDuration := factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
			Name:      "run_duration_seconds",
			Help:      "Duration of one analysis run in seconds",
		},
	)

	return &Manager{
		CounterRecords:    counterRecords,
		CounterSkipped:    counterSkipped,
		CounterRuns:       counterRuns,
		GaugeReadiness:    gaugeReadiness,
		GaugeRecovery:     gaugeRecovery,
		GaugeTrainingLoad:        gaugeTrainingLoad,
		GaugeTrainingLoadPresent: gaugeTrainingLoadPresent,
		GaugeWorkouts:            gaugeWorkouts,
		GaugeLastRun:             gaugeLastRun,
		HistRunDuration:   histRunDuration,
	}
}

// ObserveRecords adds per-category ingested counts and the skipped count.
func (m *Manager) ObserveRecords(byCategory map[string]int, skipped int) {
	for category, n := range byCategory {
		m.CounterRecords.WithLabelValues(category).Add(float64(n))
	}
	m.CounterSkipped.Add(float64(skipped))
}

// ObserveScores sets the score gauges. A nil training load removes the
// training_load series and clears training_load_present.
func (m *Manager) ObserveScores(readiness, recovery float64, trainingLoad *float64) {
	m.GaugeReadiness.Set(readiness)
	m.GaugeRecovery.Set(recovery)
	if trainingLoad == nil {
		m.GaugeTrainingLoad.Reset()
		m.GaugeTrainingLoadPresent.Set(0)
		return
	}
	m.GaugeTrainingLoad.WithLabelValues().Set(*trainingLoad)
	m.GaugeTrainingLoadPresent.Set(1)
}

// ObserveRun records the outcome and duration of a run finished at end.
func (m *Manager) ObserveRun(err error, duration time.Duration, end time.Time) {
	m.HistRunDuration.Observe(duration.Seconds())
	if err != nil {
		m.CounterRuns.WithLabelValues("error").Inc()
		return
	}
	m.CounterRuns.WithLabelValues("ok").Inc()
	m.GaugeLastRun.Set(float64(end.Unix()))
}

// WriteTextfile writes every metric gathered from g to path in the text
// exposition format read by the node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
