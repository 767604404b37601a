package record

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		typeID string
		want   Category
		shape  Shape
	}{
		{TypeHeartRate, HeartRate, ShapeQuantity},
		{TypeStepCount, StepCount, ShapeQuantity},
		{TypeActiveEnergy, ActiveEnergy, ShapeQuantity},
		{TypeWalkingDistance, WalkingDistance, ShapeQuantity},
		{TypeCyclingDistance, CyclingDistance, ShapeQuantity},
		{TypeSleepAnalysis, SleepAnalysis, ShapeInterval},
		{"HKQuantityTypeIdentifierBodyMass", Unclassified, ShapeNone},
		{"", Unclassified, ShapeNone},
	}

	for _, tt := range tests {
		t.Run(tt.typeID, func(t *testing.T) {
			got := Classify(tt.typeID)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.shape, got.Shape())
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("2025-10-10 09:00:00 +0200")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 10, 9, 0, 0, 0, time.UTC), ts)

	_, err = ParseTimestamp("2025-10-10")
	assert.Error(t, err)
	_, err = ParseTimestamp("not a timestamp at all")
	assert.Error(t, err)
}

func TestNewSleepInterval(t *testing.T) {
	start := time.Date(2025, 10, 10, 23, 0, 0, 0, time.UTC)
	end := start.Add(7*time.Hour + 20*time.Minute)

	iv, err := NewSleepInterval(start, end, "HKCategoryValueSleepAnalysisAsleepCore", "Watch")
	require.NoError(t, err)
	assert.Equal(t, 7.33, iv.DurationHours)
	assert.Equal(t, "2025-10-10T23:00:00", iv.Start)
	assert.Equal(t, "2025-10-11T06:20:00", iv.End)

	_, err = NewSleepInterval(end, start, "x", "y")
	assert.Error(t, err)
}

func TestStores(t *testing.T) {
	s := NewStores()
	ts := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, s.AddMeasurement(HeartRate, NewMeasurement(ts, 61, "count/min", "band")))
	require.NoError(t, s.AddMeasurement(StepCount, NewMeasurement(ts, 100, "count", "band")))
	require.NoError(t, s.AddMeasurement(StepCount, NewMeasurement(ts, 200, "count", "band")))
	assert.Error(t, s.AddMeasurement(SleepAnalysis, NewMeasurement(ts, 1, "", "")))
	assert.Error(t, s.AddMeasurement(Unclassified, NewMeasurement(ts, 1, "", "")))

	iv, err := NewSleepInterval(ts, ts.Add(time.Hour), "asleep", "band")
	require.NoError(t, err)
	s.AddSleep(iv)

	assert.Equal(t, 4, s.Total())
	assert.Equal(t, 2, s.Count(StepCount))
	assert.Equal(t, 1, s.Count(SleepAnalysis))
	assert.Equal(t, map[string]int{
		"heart_rate":       1,
		"steps":            2,
		"active_energy":    0,
		"distance_walking": 0,
		"distance_cycling": 0,
		"sleep":            1,
	}, s.Counts())
}

func TestWorkoutSessionAddSet(t *testing.T) {
	w := WorkoutSession{}

	assert.True(t, w.AddSet("Bench Press", WorkoutSet{Weight: 50, Reps: 10, Set: "1"}))
	assert.False(t, w.AddSet("Bench Press", WorkoutSet{Weight: 0, Reps: 10, Set: "2"}))
	assert.False(t, w.AddSet("Bench Press", WorkoutSet{Weight: 50, Reps: 10, Set: RestTimerSet}))
	assert.False(t, w.AddSet("Plank", WorkoutSet{Weight: 0, Reps: 1, Set: "1"}))

	assert.Equal(t, 500.0, w.TotalVolume)
	assert.Equal(t, 1, w.TotalSets)
	assert.Len(t, w.Exercises["Bench Press"], 1)
	assert.Contains(t, w.Exercises, "Plank")
	assert.Empty(t, w.Exercises["Plank"])
}

func TestWorkoutSessionAddSetKeepsVolumeFinite(t *testing.T) {
	w := WorkoutSession{}

	assert.True(t, w.AddSet("Squat", WorkoutSet{Weight: 1e308, Reps: 1, Set: "1"}))
	assert.False(t, w.AddSet("Squat", WorkoutSet{Weight: 1e308, Reps: 10, Set: "2"}))
	assert.False(t, w.AddSet("Squat", WorkoutSet{Weight: 1e308, Reps: 1, Set: "3"}), "total would overflow")
	assert.False(t, w.AddSet("Squat", WorkoutSet{Weight: math.Inf(1), Reps: 1, Set: "4"}))

	assert.Equal(t, 1, w.TotalSets)
	assert.Equal(t, 1e308, w.TotalVolume)
}
