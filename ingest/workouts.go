package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aimansalim/health-analyzer/record"
)

// Workout log column names.
const (
	ColDate         = "Date"
	ColWorkoutName  = "Workout Name"
	ColDuration     = "Duration"
	ColExerciseName = "Exercise Name"
	ColSetOrder     = "Set Order"
	ColWeight       = "Weight"
	ColReps         = "Reps"
)

var requiredWorkoutColumns = []string{ColDate, ColWorkoutName, ColDuration, ColExerciseName, ColSetOrder, ColWeight, ColReps}

// WorkoutOptions controls the workout log parse.
type WorkoutOptions struct {
	// Cutoff drops rows dated strictly before it. Zero keeps every row.
	Cutoff time.Time
}

// WorkoutStats are the counters accumulated while reading the workout log.
type WorkoutStats struct {
	Rows          int      `json:"rows"`
	Skipped       int      `json:"skipped"`
	BeforeCutoff  int      `json:"before_cutoff"`
	CountedSets   int      `json:"counted_sets"`
	MissingFields []string `json:"missing_columns,omitempty"`
}

// ParseWorkoutLogFile reads the workout log at path. A missing file yields an
// error wrapping os.ErrNotExist so callers can treat it as optional.
func ParseWorkoutLogFile(path string, opts WorkoutOptions) ([]record.WorkoutSession, *WorkoutStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open workout log: %w", err)
	}
	defer f.Close()

	return ParseWorkoutLog(f, opts)
}

// ParseWorkoutLog merges workout log rows into one session per calendar day,
// in order of first appearance. Bad rows are skipped, never fatal.
func ParseWorkoutLog(r io.Reader, opts WorkoutOptions) ([]record.WorkoutSession, *WorkoutStats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	stats := &WorkoutStats{}
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []record.WorkoutSession{}, stats, nil
	}
	if err != nil {
		return nil, stats, fmt.Errorf("read workout log header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range requiredWorkoutColumns {
		if _, ok := cols[name]; !ok {
			stats.MissingFields = append(stats.MissingFields, name)
		}
	}

	byDay := make(map[string]int)
	sessions := make([]record.WorkoutSession, 0, 64)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		stats.Rows++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				stats.Skipped++
				continue
			}
			return nil, stats, fmt.Errorf("read workout log: %w", err)
		}

		fields, ok := workoutFields(row, cols)
		if !ok {
			stats.Skipped++
			continue
		}
		ts, err := time.Parse(record.TimestampLayout, strings.TrimSpace(fields[ColDate]))
		if err != nil {
			stats.Skipped++
			continue
		}
		if !opts.Cutoff.IsZero() && ts.Before(opts.Cutoff) {
			stats.BeforeCutoff++
			continue
		}

		key := ts.Format(record.DayLayout)
		idx, ok := byDay[key]
		if !ok {
			sessions = append(sessions, record.WorkoutSession{
				Date:      ts.Format(record.ISOLayout),
				Name:      fields[ColWorkoutName],
				Duration:  fields[ColDuration],
				Exercises: make(map[string][]record.WorkoutSet),
			})
			idx = len(sessions) - 1
			byDay[key] = idx
		}
		session := &sessions[idx]

		exercise := fields[ColExerciseName]
		session.AddExercise(exercise)

		weight, werr := parseOptionalFloat(fields[ColWeight])
		reps, rerr := parseOptionalFloat(fields[ColReps])
		if werr != nil || rerr != nil {
			continue
		}
		if session.AddSet(exercise, record.WorkoutSet{Weight: weight, Reps: reps, Set: fields[ColSetOrder]}) {
			stats.CountedSets++
		}
	}
	return sessions, stats, nil
}

// workoutFields picks the required columns out of row. It fails when the
// header lacks a column or the row is too short to hold it.
func workoutFields(row []string, cols map[string]int) (map[string]string, bool) {
	out := make(map[string]string, len(requiredWorkoutColumns))
	for _, name := range requiredWorkoutColumns {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return nil, false
		}
		out[name] = row[i]
	}
	return out, true
}

func parseOptionalFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}
