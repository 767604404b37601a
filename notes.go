// Package healthanalyzer renders the console report of an analysis run.
package healthanalyzer

import (
	"fmt"
	"math"
	"strings"

	"github.com/aimansalim/health-analyzer/score"
	"github.com/aimansalim/health-analyzer/summary"
)

// BuildNotes turns a summary into a short human-readable daily report.
func BuildNotes(s *summary.Summary) string {
	if s == nil {
		return ""
	}
	st := s.Stats

	var b strings.Builder

	fmt.Fprintf(&b, "Generated: %s | Records: %d\n", s.GeneratedAt, s.Meta.TotalRecords)
	fmt.Fprintf(
		&b,
		"Readiness %.1f (%s)\n",
		st.Readiness.Score,
		st.Readiness.Recommendation,
	)
	fmt.Fprintf(
		&b,
		"Factors sleep %.1f | resting HR %.1f | activity %.1f\n",
		st.Readiness.Factors.Sleep,
		st.Readiness.Factors.RestingHR,
		st.Readiness.Factors.Activity,
	)
	fmt.Fprintf(&b, "Recovery %.1f (%s)\n", st.Recovery.Score, st.Recovery.Status)
	if st.TrainingLoad != nil {
		fmt.Fprintf(&b, "Training load %.1f (%s)\n", st.TrainingLoad.Current, st.TrainingLoad.Trend)
	} else {
		b.WriteString("Training load unavailable (no step data in the last 7 days)\n")
	}

	b.WriteString("\nHeart Rate\n")
	if st.HeartRate.TotalRecords > 0 {
		fmt.Fprintf(
			&b,
			"- %.1f avg / %.0f min / %.0f max bpm over %d samples | 30d avg %.1f\n",
			st.HeartRate.Avg,
			st.HeartRate.Min,
			st.HeartRate.Max,
			st.HeartRate.TotalRecords,
			st.HeartRate.Avg30d,
		)
	} else {
		b.WriteString("- no data\n")
	}

	b.WriteString("\nSteps\n")
	if st.Steps.TotalDays > 0 {
		fmt.Fprintf(
			&b,
			"- %d avg / %d max per day over %d days | 7d avg %d | 30d avg %d\n",
			st.Steps.AvgDaily,
			st.Steps.MaxDaily,
			st.Steps.TotalDays,
			st.Steps.Avg7d,
			st.Steps.Avg30d,
		)
	} else {
		b.WriteString("- no data\n")
	}

	b.WriteString("\nSleep\n")
	fmt.Fprintf(
		&b,
		"- %s avg (%s-%s) over %d nights | 30d avg %s",
		formatHours(st.Sleep.AvgHours),
		formatHours(st.Sleep.MinHours),
		formatHours(st.Sleep.MaxHours),
		st.Sleep.TotalNights,
		formatHours(st.Sleep.Avg30d),
	)
	if st.Sleep.Estimated() {
		b.WriteString(" (estimated)")
	}
	b.WriteByte('\n')

	b.WriteString("\nActivity\n")
	fmt.Fprintf(
		&b,
		"- Active energy %d kcal total | 30d avg %d kcal/day | max %d kcal\n",
		st.ActiveEnergy.Total,
		st.ActiveEnergy.Avg30d,
		st.ActiveEnergy.Max,
	)
	fmt.Fprintf(
		&b,
		"- Walking %.1f km total | %.1f km last 30d (%.1f km/day)\n",
		st.WalkingDistance.TotalKm,
		st.WalkingDistance.Total30d,
		st.WalkingDistance.Avg30d,
	)
	if st.CyclingDistance.TotalKm > 0 {
		fmt.Fprintf(
			&b,
			"- Cycling %.1f km total | %.1f km last 30d (%.1f km/day)\n",
			st.CyclingDistance.TotalKm,
			st.CyclingDistance.Total30d,
			st.CyclingDistance.Avg30d,
		)
	}

	if n := len(s.Data.Workouts); n > 0 {
		sets, volume := 0, 0.0
		for _, w := range s.Data.Workouts {
			sets += w.TotalSets
			volume += w.TotalVolume
		}
		b.WriteString("\nStrength\n")
		fmt.Fprintf(&b, "- %d sessions | %d working sets | %.0f kg volume\n", n, sets, volume)
		last := s.Data.Workouts[n-1]
		fmt.Fprintf(&b, "- Last: %s on %s (%d sets, %.0f kg)\n", last.Name, dayOf(last.Date), last.TotalSets, last.TotalVolume)
	}

	b.WriteString("\nCoaching Notes\n- ")
	b.WriteString(coachingAssessment(st))
	b.WriteByte('\n')

	return strings.TrimSpace(b.String())
}

func coachingAssessment(st summary.Stats) string {
	r := st.Readiness
	switch {
	case r.Factors.Sleep < 75 && r.Score < 65:
		return "Sleep is the limiting factor; keep intensity low and prioritize an early night."
	case r.Factors.RestingHR < 70:
		return "Heart rate is elevated over the last week; watch for accumulated fatigue or illness."
	case st.TrainingLoad != nil && st.TrainingLoad.Trend == score.TrendIncreasing && r.Score < 80:
		return "Load is trending up while readiness is not optimal; hold volume steady for a few days."
	case r.Score >= 80:
		return "All signals look good; a hard session is well supported today."
	default:
		return "Balanced day; train as planned and keep daily movement in the 7k-12k step range."
	}
}

func formatHours(h float64) string {
	if h <= 0 {
		return "0h00m"
	}
	total := int(math.Round(h * 60))
	return fmt.Sprintf("%dh%02dm", total/60, total%60)
}

func dayOf(iso string) string {
	if i := strings.IndexByte(iso, 'T'); i > 0 {
		return iso[:i]
	}
	return iso
}
