package score

import (
	"testing"
	"time"

	"github.com/aimansalim/health-analyzer/record"
	"github.com/aimansalim/health-analyzer/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 10, 12, 10, 0, 0, 0, time.UTC)

func at(days, hour int) time.Time {
	return record.Day(now).AddDate(0, 0, -days).Add(time.Duration(hour) * time.Hour)
}

func addSteps(t *testing.T, s *record.Stores, ts time.Time, v float64) {
	t.Helper()
	require.NoError(t, s.AddMeasurement(record.StepCount, record.NewMeasurement(ts, v, "count", "test")))
}

func addHR(t *testing.T, s *record.Stores, ts time.Time, v float64) {
	t.Helper()
	require.NoError(t, s.AddMeasurement(record.HeartRate, record.NewMeasurement(ts, v, "count/min", "test")))
}

func addSleep(t *testing.T, s *record.Stores, start time.Time, hours float64) {
	t.Helper()
	iv, err := record.NewSleepInterval(start, start.Add(time.Duration(hours*float64(time.Hour))), "asleep", "test")
	require.NoError(t, err)
	s.AddSleep(iv)
}

func TestReadinessIdealDay(t *testing.T) {
	s := record.NewStores()
	addSleep(t, s, at(1, 23), 8)
	addHR(t, s, at(0, 7), 60)
	for d := 0; d < 7; d++ {
		addSteps(t, s, at(d, 9), 9500)
	}

	scores := Compute(s, now)
	assert.Equal(t, 100.0, scores.Readiness.Score)
	assert.Equal(t, Factors{Sleep: 100, RestingHR: 100, Activity: 100}, scores.Readiness.Factors)
	assert.Equal(t, RecommendOptimal, scores.Readiness.Recommendation)
	assert.Equal(t, Recovery{Score: 90, Status: "good"}, scores.Recovery)

	require.NotNil(t, scores.TrainingLoad)
	assert.Equal(t, 66.5, scores.TrainingLoad.Current)
	assert.Equal(t, TrendStable, scores.TrainingLoad.Trend)
}

func TestReadinessNoData(t *testing.T) {
	scores := Compute(record.NewStores(), now)

	// 6.5h fallback sleep scores 81.25; both other factors are neutral.
	assert.Equal(t, 62.5, scores.Readiness.Score)
	assert.Equal(t, Factors{Sleep: 81.3, RestingHR: 50, Activity: 50}, scores.Readiness.Factors)
	assert.Equal(t, RecommendModerate, scores.Readiness.Recommendation)
	assert.Equal(t, Recovery{Score: 56.3, Status: "moderate"}, scores.Recovery)
	assert.Nil(t, scores.TrainingLoad)
}

func TestReadinessBounds(t *testing.T) {
	tests := []struct {
		name  string
		hr    float64
		steps float64
		sleep float64
	}{
		{"extreme heart rate", 220, 0, 0.5},
		{"resting heart rate below baseline", 35, 30000, 14},
		{"idle", 90, 1, 3},
		{"huge step count", 60, 200000, 8},
		{"negative step count", 60, -70000, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := record.NewStores()
			addHR(t, s, at(1, 8), tt.hr)
			addSteps(t, s, at(1, 9), tt.steps)
			addSleep(t, s, at(1, 23), tt.sleep)

			r := ComputeReadiness(s, now)
			assert.GreaterOrEqual(t, r.Score, 0.0)
			assert.LessOrEqual(t, r.Score, 100.0)
			for _, f := range []float64{r.Factors.Sleep, r.Factors.RestingHR, r.Factors.Activity} {
				assert.GreaterOrEqual(t, f, 0.0)
				assert.LessOrEqual(t, f, 100.0)
			}
		})
	}
}

func TestActivityScoreNeverNegative(t *testing.T) {
	assert.Equal(t, 0.0, activityScore(-70000))
	assert.Equal(t, 0.0, activityScore(0))
}

func TestSleepFactorAveragesNights(t *testing.T) {
	s := record.NewStores()
	addSleep(t, s, at(1, 1), 3)
	addSleep(t, s, at(1, 22), 3)
	addSleep(t, s, at(0, 1), 4)
	addSleep(t, s, at(3, 23), 8) // too old

	// Yesterday totals 6h and today 4h.
	assert.InDelta(t, 62.5, SleepFactor(s.Sleep, now), 1e-9)
}

func TestHRFactor(t *testing.T) {
	s := record.NewStores()
	addHR(t, s, at(30, 8), 40) // outside the week
	addHR(t, s, at(2, 8), 70)
	addHR(t, s, at(1, 8), 80)

	assert.Equal(t, 85.0, HRFactor(s.HeartRate, now))
	assert.Equal(t, NeutralFactor, HRFactor(nil, now))
}

func TestActivityScore(t *testing.T) {
	tests := []struct {
		mean float64
		want float64
	}{
		{0, 0},
		{3500, 50},
		{7000, 100},
		{12000, 100},
		{13000, 90},
		{20000, 50},
		{40000, 50},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, activityScore(tt.mean), 1e-9, "mean %v", tt.mean)
	}
}

func TestRecommendation(t *testing.T) {
	assert.Equal(t, RecommendOptimal, Recommendation(80))
	assert.Equal(t, RecommendGood, Recommendation(79.99))
	assert.Equal(t, RecommendGood, Recommendation(65))
	assert.Equal(t, RecommendModerate, Recommendation(64.96))
	assert.Equal(t, RecommendModerate, Recommendation(50))
	assert.Equal(t, RecommendLow, Recommendation(49.9))
}

func TestComputeRecoveryStatus(t *testing.T) {
	assert.Equal(t, "good", ComputeRecovery(Readiness{Raw: 70.04}).Status)
	assert.Equal(t, "moderate", ComputeRecovery(Readiness{Raw: 70}).Status)
	assert.Equal(t, "low", ComputeRecovery(Readiness{Raw: 50}).Status)
	assert.Equal(t, 45.0, ComputeRecovery(Readiness{Raw: 50}).Score)
}

func TestTrainingLoad(t *testing.T) {
	day := func(d int, v float64) stats.DayTotal {
		return stats.DayTotal{Day: record.Day(at(d, 0)), Total: v}
	}

	assert.Nil(t, ComputeTrainingLoad(nil))

	short := ComputeTrainingLoad([]stats.DayTotal{day(3, 9000), day(2, 9000), day(1, 20000)})
	require.NotNil(t, short)
	assert.Equal(t, TrendStable, short.Trend)
	assert.Equal(t, 38.0, short.Current)

	rising := ComputeTrainingLoad([]stats.DayTotal{day(4, 5000), day(3, 6000), day(2, 7000), day(1, 6100)})
	require.NotNil(t, rising)
	assert.Equal(t, TrendIncreasing, rising.Trend)
	assert.Equal(t, 24.1, rising.Current)

	flat := ComputeTrainingLoad([]stats.DayTotal{day(4, 5000), day(3, 6000), day(2, 7000), day(1, 6000)})
	assert.Equal(t, TrendStable, flat.Trend)
}

func TestTrainingLoadOmittedWithoutRecentSteps(t *testing.T) {
	s := record.NewStores()
	addSteps(t, s, at(10, 9), 12000)
	addHR(t, s, at(1, 9), 60)

	assert.Nil(t, Compute(s, now).TrainingLoad)
}
