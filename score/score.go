// Package score derives the composite readiness, recovery and training-load
// scores for the day containing "now".
package score

import (
	"math"
	"time"

	"github.com/aimansalim/health-analyzer/record"
	"github.com/aimansalim/health-analyzer/stats"
)

// Readiness weights and defaults.
const (
	SleepWeight    = 0.4
	HRWeight       = 0.3
	ActivityWeight = 0.3

	TargetSleepHours = 8.0
	BaselineHR       = 60.0
	NeutralFactor    = 50.0

	StepsLow  = 7000.0
	StepsHigh = 12000.0

	RecoveryRatio = 0.9
)

// Recommendations by readiness threshold.
const (
	RecommendOptimal  = "optimal - high intensity training recommended"
	RecommendGood     = "good - moderate to high intensity ok"
	RecommendModerate = "moderate - light to moderate training"
	RecommendLow      = "low - active recovery or rest recommended"
)

// Training load trends.
const (
	TrendIncreasing = "increasing"
	TrendStable     = "stable"
)

// Factors are the readiness sub-scores, each in [0,100].
type Factors struct {
	Sleep     float64 `json:"sleep" yaml:"sleep"`
	RestingHR float64 `json:"resting_hr" yaml:"resting_hr"`
	Activity  float64 `json:"activity" yaml:"activity"`
}

// Readiness is the weighted composite of the three factors. Raw is the
// unrounded score that thresholds are applied to.
type Readiness struct {
	Score          float64 `json:"score" yaml:"score"`
	Factors        Factors `json:"factors" yaml:"factors"`
	Recommendation string  `json:"recommendation" yaml:"recommendation"`
	Raw            float64 `json:"-" yaml:"-"`
}

// Recovery is a fixed fraction of readiness.
type Recovery struct {
	Score  float64 `json:"score" yaml:"score"`
	Status string  `json:"status" yaml:"status"`
}

// TrainingLoad summarizes the trailing week of step totals.
type TrainingLoad struct {
	Current float64 `json:"current" yaml:"current"`
	Trend   string  `json:"trend" yaml:"trend"`
}

// Scores groups every composite score. TrainingLoad is nil when the trailing
// week has no step data.
type Scores struct {
	Readiness    Readiness
	Recovery     Recovery
	TrainingLoad *TrainingLoad
}

// Compute derives all scores from stores as of now.
func Compute(stores *record.Stores, now time.Time) Scores {
	now = record.WallClock(now)
	week := stats.DaysSince(stats.DailyTotals(stores.Steps), stats.WindowStart(now, stats.ShortWindowDays))

	r := ComputeReadiness(stores, now)
	return Scores{
		Readiness:    r,
		Recovery:     ComputeRecovery(r),
		TrainingLoad: ComputeTrainingLoad(week),
	}
}

// ComputeReadiness scores sleep, resting heart rate and activity for the day
// containing now.
func ComputeReadiness(stores *record.Stores, now time.Time) Readiness {
	sleep := SleepFactor(stores.Sleep, now)
	hr := HRFactor(stores.HeartRate, now)
	activity := ActivityFactor(stores.Steps, now)

	raw := SleepWeight*sleep + HRWeight*hr + ActivityWeight*activity
	return Readiness{
		Score: stats.Round(raw, 1),
		Factors: Factors{
			Sleep:     stats.Round(sleep, 1),
			RestingHR: stats.Round(hr, 1),
			Activity:  stats.Round(activity, 1),
		},
		Recommendation: Recommendation(raw),
		Raw:            raw,
	}
}

// SleepFactor averages the nightly totals of intervals starting today or
// yesterday and scales them against an 8 hour target. No such night scores
// the fallback average.
func SleepFactor(ivs []record.SleepInterval, now time.Time) float64 {
	today := record.Day(now)
	yesterday := today.AddDate(0, 0, -1)

	var hours []float64
	for _, n := range stats.DailySleep(ivs) {
		if n.Day.Equal(today) || n.Day.Equal(yesterday) {
			hours = append(hours, n.Total)
		}
	}
	avg := stats.FallbackSleepHours
	if len(hours) > 0 {
		avg = stats.Mean(hours)
	}
	return math.Min(100, avg/TargetSleepHours*100)
}

// HRFactor scores the trailing week mean heart rate, 60 bpm and below
// scoring 100 and each bpm above it costing one point.
func HRFactor(ms []record.Measurement, now time.Time) float64 {
	recent := stats.ValuesSince(ms, stats.WindowStart(now, stats.ShortWindowDays))
	if len(recent) == 0 {
		return NeutralFactor
	}
	return math.Min(100, math.Max(0, 100-(stats.Mean(recent)-BaselineHR)))
}

// ActivityFactor scores the trailing week mean daily steps.
func ActivityFactor(ms []record.Measurement, now time.Time) float64 {
	week := stats.DaysSince(stats.DailyTotals(ms), stats.WindowStart(now, stats.ShortWindowDays))
	if len(week) == 0 {
		return NeutralFactor
	}
	return activityScore(stats.Mean(stats.Totals(week)))
}

func activityScore(mean float64) float64 {
	switch {
	case mean >= StepsLow && mean <= StepsHigh:
		return 100
	case mean < StepsLow:
		return math.Max(0, mean/StepsLow*100)
	default:
		return math.Max(50, 100-(mean-StepsHigh)/100)
	}
}

// Recommendation maps an unrounded readiness score to its training advice.
func Recommendation(score float64) string {
	switch {
	case score >= 80:
		return RecommendOptimal
	case score >= 65:
		return RecommendGood
	case score >= 50:
		return RecommendModerate
	default:
		return RecommendLow
	}
}

// ComputeRecovery derives recovery from the unrounded readiness score.
func ComputeRecovery(r Readiness) Recovery {
	status := "low"
	switch {
	case r.Raw > 70:
		status = "good"
	case r.Raw > 50:
		status = "moderate"
	}
	return Recovery{
		Score:  stats.Round(r.Raw*RecoveryRatio, 1),
		Status: status,
	}
}

// ComputeTrainingLoad sums the trailing week of daily step totals, in
// thousands. It returns nil when week is empty.
func ComputeTrainingLoad(week []stats.DayTotal) *TrainingLoad {
	if len(week) == 0 {
		return nil
	}
	totals := stats.Totals(week)
	trend := TrendStable
	if len(totals) >= 4 && totals[len(totals)-1] > stats.Mean(totals[:3]) {
		trend = TrendIncreasing
	}
	return &TrainingLoad{
		Current: stats.Round(stats.Sum(totals)/1000, 1),
		Trend:   trend,
	}
}
