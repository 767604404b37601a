// Package stats folds category stores into per-category descriptive
// statistics over the full history and trailing 7 and 30 day windows.
//
// Every function takes "now" explicitly. Record-level windows keep records
// with a timestamp at or after now minus N days; day-level windows keep days
// whose midnight is at or after that instant.
package stats

import (
	"math"
	"time"

	"github.com/aimansalim/health-analyzer/record"
)

// Sleep fallback used when the export carries no sleep intervals at all.
const (
	FallbackSleepHours    = 6.5
	FallbackSleepMaxHours = 8.0
	FallbackSleepMinHours = 5.0
	EstimatedSource       = "estimated"
)

// Window lengths in days.
const (
	ShortWindowDays = 7
	LongWindowDays  = 30
)

// HeartRate summarizes heart-rate samples.
type HeartRate struct {
	Avg          float64 `json:"avg" yaml:"avg"`
	Min          float64 `json:"min" yaml:"min"`
	Max          float64 `json:"max" yaml:"max"`
	Avg30d       float64 `json:"avg_30d" yaml:"avg_30d"`
	TotalRecords int     `json:"total_records" yaml:"total_records"`
}

// Steps summarizes daily step totals.
type Steps struct {
	AvgDaily  int `json:"avg_daily" yaml:"avg_daily"`
	MaxDaily  int `json:"max_daily" yaml:"max_daily"`
	Avg7d     int `json:"avg_7d" yaml:"avg_7d"`
	Avg30d    int `json:"avg_30d" yaml:"avg_30d"`
	TotalDays int `json:"total_days" yaml:"total_days"`
}

// Sleep summarizes nightly sleep totals.
type Sleep struct {
	AvgHours    float64 `json:"avg_hours" yaml:"avg_hours"`
	Avg30d      float64 `json:"avg_30d" yaml:"avg_30d"`
	MaxHours    float64 `json:"max_hours" yaml:"max_hours"`
	MinHours    float64 `json:"min_hours" yaml:"min_hours"`
	TotalNights int     `json:"total_nights" yaml:"total_nights"`
	Source      string  `json:"source,omitempty" yaml:"source,omitempty"`
}

// Estimated reports whether the snapshot is the no-data fallback.
func (s Sleep) Estimated() bool {
	return s.Source == EstimatedSource
}

// Energy summarizes active energy samples. The 30 day average always
// divides by 30, whatever the number of days with data.
type Energy struct {
	Total  int `json:"total" yaml:"total"`
	Avg30d int `json:"avg_30d" yaml:"avg_30d"`
	Max    int `json:"max" yaml:"max"`
}

// Distance summarizes distance samples in km. The 30 day average always
// divides by 30.
type Distance struct {
	TotalKm  float64 `json:"total_km" yaml:"total_km"`
	Total30d float64 `json:"total_30d" yaml:"total_30d"`
	Avg30d   float64 `json:"avg_30d" yaml:"avg_30d"`
}

// Snapshot holds the statistics of every category.
type Snapshot struct {
	HeartRate       HeartRate `json:"heart_rate" yaml:"heart_rate"`
	Steps           Steps     `json:"steps" yaml:"steps"`
	Sleep           Sleep     `json:"sleep" yaml:"sleep"`
	ActiveEnergy    Energy    `json:"active_energy" yaml:"active_energy"`
	WalkingDistance Distance  `json:"distance_walking" yaml:"distance_walking"`
	CyclingDistance Distance  `json:"distance_cycling" yaml:"distance_cycling"`
}

// Compute builds the statistics of every category as of now.
func Compute(stores *record.Stores, now time.Time) Snapshot {
	now = record.WallClock(now)
	return Snapshot{
		HeartRate:       HeartRateStats(stores.HeartRate, now),
		Steps:           StepStats(stores.Steps, now),
		Sleep:           SleepStats(stores.Sleep, now),
		ActiveEnergy:    EnergyStats(stores.ActiveEnergy, now),
		WalkingDistance: DistanceStats(stores.WalkingDistance, now),
		CyclingDistance: DistanceStats(stores.CyclingDistance, now),
	}
}

// HeartRateStats summarizes heart-rate samples. No samples yields zeros.
func HeartRateStats(ms []record.Measurement, now time.Time) HeartRate {
	if len(ms) == 0 {
		return HeartRate{}
	}
	values := make([]float64, len(ms))
	for i, m := range ms {
		values[i] = m.Value
	}
	lo, hi := minMax(values)
	return HeartRate{
		Avg:          Round(Mean(values), 1),
		Min:          lo,
		Max:          hi,
		Avg30d:       Round(Mean(ValuesSince(ms, WindowStart(now, LongWindowDays))), 1),
		TotalRecords: len(ms),
	}
}

// StepStats summarizes daily step totals. No samples yields zeros.
func StepStats(ms []record.Measurement, now time.Time) Steps {
	days := DailyTotals(ms)
	if len(days) == 0 {
		return Steps{}
	}
	all := Totals(days)
	_, hi := minMax(all)
	return Steps{
		AvgDaily:  roundInt(Mean(all)),
		MaxDaily:  roundInt(hi),
		Avg7d:     roundInt(Mean(Totals(DaysSince(days, WindowStart(now, ShortWindowDays))))),
		Avg30d:    roundInt(Mean(Totals(DaysSince(days, WindowStart(now, LongWindowDays))))),
		TotalDays: len(days),
	}
}

// SleepStats summarizes nightly sleep totals keyed on the interval start day.
// No intervals yields the estimated fallback.
func SleepStats(ivs []record.SleepInterval, now time.Time) Sleep {
	nights := DailySleep(ivs)
	if len(nights) == 0 {
		return FallbackSleep()
	}
	all := Totals(nights)
	lo, hi := minMax(all)
	avg30 := FallbackSleepHours
	if recent := DaysSince(nights, WindowStart(now, LongWindowDays)); len(recent) > 0 {
		avg30 = Round(Mean(Totals(recent)), 1)
	}
	return Sleep{
		AvgHours:    Round(Mean(all), 1),
		Avg30d:      avg30,
		MaxHours:    Round(hi, 1),
		MinHours:    Round(lo, 1),
		TotalNights: len(nights),
	}
}

// FallbackSleep is the snapshot reported when no sleep data exists.
func FallbackSleep() Sleep {
	return Sleep{
		AvgHours:    FallbackSleepHours,
		Avg30d:      FallbackSleepHours,
		MaxHours:    FallbackSleepMaxHours,
		MinHours:    FallbackSleepMinHours,
		TotalNights: 0,
		Source:      EstimatedSource,
	}
}

// EnergyStats summarizes active energy samples. No samples yields zeros.
func EnergyStats(ms []record.Measurement, now time.Time) Energy {
	if len(ms) == 0 {
		return Energy{}
	}
	values := make([]float64, len(ms))
	for i, m := range ms {
		values[i] = m.Value
	}
	_, hi := minMax(values)
	recent := ValuesSince(ms, WindowStart(now, LongWindowDays))
	return Energy{
		Total:  roundInt(Sum(values)),
		Avg30d: roundInt(Sum(recent) / LongWindowDays),
		Max:    roundInt(hi),
	}
}

// DistanceStats summarizes distance samples. No samples yields zeros.
func DistanceStats(ms []record.Measurement, now time.Time) Distance {
	if len(ms) == 0 {
		return Distance{}
	}
	total := 0.0
	for _, m := range ms {
		total += m.Value
	}
	recent := Sum(ValuesSince(ms, WindowStart(now, LongWindowDays)))
	return Distance{
		TotalKm:  Round(total, 1),
		Total30d: Round(recent, 1),
		Avg30d:   Round(recent/LongWindowDays, 1),
	}
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
