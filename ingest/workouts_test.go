package ingest

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workoutFixture = `Date,Workout Name,Duration,Exercise Name,Set Order,Weight,Reps,Distance,Seconds,Notes,Workout Notes,RPE
2025-10-08 18:00:00,Old,40m,Squat,1,100,5,0,0,,,
2025-10-10 07:30:00,Push,1h 2m,Bench Press,1,50,10,0,0,,,
2025-10-10 07:35:00,Push,1h 2m,Bench Press,2,0,10,0,0,,,
2025-10-10 07:40:00,Push,1h 2m,Bench Press,Rest Timer,0,0,0,90,,,
2025-10-10 07:45:00,Push,1h 2m,Plank,1,,60,0,0,,,
2025-10-10 07:50:00,Push,1h 2m,Dips,1,bodyweight,8,0,0,,,
2025-10-11 08:00:00,Pull,50m,Row,1,40,12,0,0,,,
10/12/2025 08:00,Legs,30m,Squat,1,80,5,0,0,,,
2025-10-12 08:00:00,Legs
`

var testCutoff = time.Date(2025, 10, 9, 0, 0, 0, 0, time.UTC)

func TestParseWorkoutLog(t *testing.T) {
	sessions, stats, err := ParseWorkoutLog(strings.NewReader(workoutFixture), WorkoutOptions{Cutoff: testCutoff})
	require.NoError(t, err)

	assert.Equal(t, 9, stats.Rows)
	assert.Equal(t, 1, stats.BeforeCutoff)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 2, stats.CountedSets)
	assert.Empty(t, stats.MissingFields)

	require.Len(t, sessions, 2)

	push := sessions[0]
	assert.Equal(t, "2025-10-10T07:30:00", push.Date)
	assert.Equal(t, "Push", push.Name)
	assert.Equal(t, "1h 2m", push.Duration)
	assert.Equal(t, 500.0, push.TotalVolume)
	assert.Equal(t, 1, push.TotalSets)
	assert.Len(t, push.Exercises["Bench Press"], 1)
	assert.Contains(t, push.Exercises, "Plank")
	assert.Contains(t, push.Exercises, "Dips")
	assert.Empty(t, push.Exercises["Dips"])

	pull := sessions[1]
	assert.Equal(t, "Pull", pull.Name)
	assert.Equal(t, 480.0, pull.TotalVolume)
}

func TestParseWorkoutLogNonFiniteValues(t *testing.T) {
	doc := `Date,Workout Name,Duration,Exercise Name,Set Order,Weight,Reps
2025-10-10 07:30:00,Push,1h,Bench Press,1,50,10
2025-10-10 07:35:00,Push,1h,Bench Press,2,inf,10
2025-10-10 07:40:00,Push,1h,Bench Press,3,50,NaN
2025-10-10 07:45:00,Push,1h,Bench Press,4,-Infinity,10
2025-10-10 07:50:00,Push,1h,Bench Press,5,1e308,10
`
	sessions, stats, err := ParseWorkoutLog(strings.NewReader(doc), WorkoutOptions{Cutoff: testCutoff})
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	push := sessions[0]
	assert.Equal(t, 500.0, push.TotalVolume)
	assert.Equal(t, 1, push.TotalSets)
	assert.Equal(t, 1, stats.CountedSets)
	assert.False(t, math.IsInf(push.TotalVolume, 0))
}

func TestParseWorkoutLogCutoff(t *testing.T) {
	tests := []struct {
		name   string
		cutoff time.Time
		want   []string
	}{
		{"no cutoff", time.Time{}, []string{"Old", "Push", "Pull"}},
		{"default cutoff", testCutoff, []string{"Push", "Pull"}},
		{"late cutoff", time.Date(2025, 10, 11, 0, 0, 0, 0, time.UTC), []string{"Pull"}},
		{"after everything", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions, _, err := ParseWorkoutLog(strings.NewReader(workoutFixture), WorkoutOptions{Cutoff: tt.cutoff})
			require.NoError(t, err)

			var names []string
			for _, s := range sessions {
				names = append(names, s.Name)
				ts, err := time.Parse("2006-01-02T15:04:05", s.Date)
				require.NoError(t, err)
				assert.False(t, ts.Before(tt.cutoff))
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestParseWorkoutLogMissingColumn(t *testing.T) {
	doc := "Date,Workout Name,Duration,Exercise Name,Set Order,Weight\n2025-10-10 07:30:00,Push,1h,Bench Press,1,50\n"

	sessions, stats, err := ParseWorkoutLog(strings.NewReader(doc), WorkoutOptions{})
	require.NoError(t, err)
	assert.Empty(t, sessions)
	assert.Equal(t, []string{ColReps}, stats.MissingFields)
	assert.Equal(t, 1, stats.Skipped)
}

func TestParseWorkoutLogEmpty(t *testing.T) {
	sessions, stats, err := ParseWorkoutLog(strings.NewReader(""), WorkoutOptions{})
	require.NoError(t, err)
	assert.Empty(t, sessions)
	assert.Zero(t, stats.Rows)
}

func TestParseWorkoutLogFileMissing(t *testing.T) {
	_, _, err := ParseWorkoutLogFile(filepath.Join(t.TempDir(), "strong.csv"), WorkoutOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
