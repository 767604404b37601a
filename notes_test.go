package healthanalyzer

import (
	"strings"
	"testing"

	"github.com/aimansalim/health-analyzer/record"
	"github.com/aimansalim/health-analyzer/score"
	"github.com/aimansalim/health-analyzer/stats"
	"github.com/aimansalim/health-analyzer/summary"

	"github.com/stretchr/testify/assert"
)

func TestBuildNotes(t *testing.T) {
	s := &summary.Summary{
		GeneratedAt: "2025-10-12T10:00:00",
		Stats: summary.Stats{
			HeartRate: stats.HeartRate{Avg: 64.2, Min: 48, Max: 151, Avg30d: 63.9, TotalRecords: 1200},
			Steps:     stats.Steps{AvgDaily: 8400, MaxDaily: 15000, Avg7d: 9100, Avg30d: 8700, TotalDays: 40},
			Sleep:     stats.Sleep{AvgHours: 7.2, Avg30d: 7.1, MaxHours: 8.5, MinHours: 5.5, TotalNights: 30},
			Readiness: score.Readiness{
				Score:          88.4,
				Factors:        score.Factors{Sleep: 90, RestingHR: 96, Activity: 100},
				Recommendation: score.RecommendOptimal,
			},
			Recovery:     score.Recovery{Score: 79.6, Status: "good"},
			TrainingLoad: &score.TrainingLoad{Current: 63.7, Trend: score.TrendStable},
		},
		Data: summary.Data{
			Workouts: []record.WorkoutSession{
				{Date: "2025-10-10T07:30:00", Name: "Push", TotalSets: 12, TotalVolume: 5400},
			},
		},
		Meta: summary.Meta{TotalRecords: 1271},
	}

	notes := BuildNotes(s)
	assert.Contains(t, notes, "Readiness 88.4 (optimal - high intensity training recommended)")
	assert.Contains(t, notes, "Training load 63.7 (stable)")
	assert.Contains(t, notes, "7h12m avg (5h30m-8h30m) over 30 nights")
	assert.Contains(t, notes, "- Last: Push on 2025-10-10 (12 sets, 5400 kg)")
	assert.Contains(t, notes, "a hard session is well supported today")
	assert.NotContains(t, notes, "Cycling")
	assert.False(t, strings.HasSuffix(notes, "\n"))
}

func TestBuildNotesWithoutData(t *testing.T) {
	s := &summary.Summary{
		Stats: summary.Stats{
			Sleep: stats.FallbackSleep(),
			Readiness: score.Readiness{
				Score:          62.5,
				Factors:        score.Factors{Sleep: 81.3, RestingHR: 50, Activity: 50},
				Recommendation: score.RecommendModerate,
			},
		},
	}

	notes := BuildNotes(s)
	assert.Contains(t, notes, "Training load unavailable")
	assert.Contains(t, notes, "(estimated)")
	assert.Contains(t, notes, "Heart rate is elevated")
	assert.NotContains(t, notes, "Strength")
	assert.Empty(t, BuildNotes(nil))
}

func TestFormatHours(t *testing.T) {
	assert.Equal(t, "6h30m", formatHours(6.5))
	assert.Equal(t, "0h00m", formatHours(0))
	assert.Equal(t, "8h00m", formatHours(7.999))
}
