package stats

import (
	"math"
	"sort"
	"time"

	"github.com/aimansalim/health-analyzer/record"
)

const day = 24 * time.Hour

// DayTotal is the sum of one category's values over a calendar day.
type DayTotal struct {
	Day   time.Time
	Total float64
}

// DailyTotals sums measurement values per calendar day, oldest day first.
func DailyTotals(ms []record.Measurement) []DayTotal {
	sums := make(map[time.Time]float64)
	for _, m := range ms {
		sums[record.Day(m.Time)] += m.Value
	}
	return sortedDays(sums)
}

// DailySleep sums interval durations per calendar day of the interval start,
// oldest day first.
func DailySleep(ivs []record.SleepInterval) []DayTotal {
	sums := make(map[time.Time]float64)
	for _, iv := range ivs {
		sums[record.Day(iv.StartTime)] += iv.DurationHours
	}
	return sortedDays(sums)
}

func sortedDays(sums map[time.Time]float64) []DayTotal {
	out := make([]DayTotal, 0, len(sums))
	for d, v := range sums {
		out = append(out, DayTotal{Day: d, Total: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// WindowStart returns now minus the given number of days.
func WindowStart(now time.Time, days int) time.Time {
	return now.Add(-time.Duration(days) * day)
}

// DaysSince keeps the days whose midnight is not before cutoff.
func DaysSince(days []DayTotal, cutoff time.Time) []DayTotal {
	var out []DayTotal
	for _, d := range days {
		if !d.Day.Before(cutoff) {
			out = append(out, d)
		}
	}
	return out
}

// ValuesSince returns the values of measurements taken at or after cutoff.
func ValuesSince(ms []record.Measurement, cutoff time.Time) []float64 {
	var out []float64
	for _, m := range ms {
		if !m.Time.Before(cutoff) {
			out = append(out, m.Value)
		}
	}
	return out
}

// Totals returns the day totals as plain values.
func Totals(days []DayTotal) []float64 {
	out := make([]float64, len(days))
	for i, d := range days {
		out[i] = d.Total
	}
	return out
}

// Sum adds up values.
func Sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

// Mean returns the arithmetic mean, or 0 for no values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Sum(values) / float64(len(values))
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// Round rounds v to the given number of decimal places, halves away from zero.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
