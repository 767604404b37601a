// Package record defines the measurement categories understood by the analyzer
// and the typed records and stores that hold one export pass worth of data.
package record

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	// TimestampLayout is the textual layout of export timestamps. Only the first
	// len(TimestampLayout) characters are parsed; a trailing zone offset is ignored.
	TimestampLayout = "2006-01-02 15:04:05"

	// ISOLayout is how timestamps are rendered in the summary artifact.
	ISOLayout = "2006-01-02T15:04:05"

	// DayLayout is the calendar-day key layout.
	DayLayout = "2006-01-02"
)

// Category is one of the closed set of semantic measurement categories.
type Category int

const (
	Unclassified Category = iota
	HeartRate
	StepCount
	ActiveEnergy
	WalkingDistance
	CyclingDistance
	SleepAnalysis
)

// Shape distinguishes single-valued samples from labelled intervals.
type Shape int

const (
	ShapeNone     Shape = iota
	ShapeQuantity       // {startDate, value, unit}
	ShapeInterval       // {startDate, endDate, value label}
)

// Export type identifiers for the supported categories.
const (
	TypeHeartRate       = "HKQuantityTypeIdentifierHeartRate"
	TypeStepCount       = "HKQuantityTypeIdentifierStepCount"
	TypeActiveEnergy    = "HKQuantityTypeIdentifierActiveEnergyBurned"
	TypeWalkingDistance = "HKQuantityTypeIdentifierDistanceWalkingRunning"
	TypeCyclingDistance = "HKQuantityTypeIdentifierDistanceCycling"
	TypeSleepAnalysis   = "HKCategoryTypeIdentifierSleepAnalysis"
)

// Categories lists every supported category in export order.
var Categories = []Category{HeartRate, StepCount, ActiveEnergy, WalkingDistance, CyclingDistance, SleepAnalysis}

// Classify maps an export type identifier to its category. Unknown types map to
// Unclassified; the export defines many more types than the analyzer needs.
func Classify(typeID string) Category {
	switch strings.TrimSpace(typeID) {
	case TypeHeartRate:
		return HeartRate
	case TypeStepCount:
		return StepCount
	case TypeActiveEnergy:
		return ActiveEnergy
	case TypeWalkingDistance:
		return WalkingDistance
	case TypeCyclingDistance:
		return CyclingDistance
	case TypeSleepAnalysis:
		return SleepAnalysis
	default:
		return Unclassified
	}
}

// Shape reports the element shape records of this category carry.
func (c Category) Shape() Shape {
	switch c {
	case HeartRate, StepCount, ActiveEnergy, WalkingDistance, CyclingDistance:
		return ShapeQuantity
	case SleepAnalysis:
		return ShapeInterval
	default:
		return ShapeNone
	}
}

// DefaultUnit is used when an element carries no unit attribute.
func (c Category) DefaultUnit() string {
	switch c {
	case HeartRate:
		return "count/min"
	case StepCount:
		return "count"
	case ActiveEnergy:
		return "kcal"
	case WalkingDistance, CyclingDistance:
		return "km"
	default:
		return ""
	}
}

// String returns the snake_case key used in the summary artifact.
func (c Category) String() string {
	switch c {
	case HeartRate:
		return "heart_rate"
	case StepCount:
		return "steps"
	case ActiveEnergy:
		return "active_energy"
	case WalkingDistance:
		return "distance_walking"
	case CyclingDistance:
		return "distance_cycling"
	case SleepAnalysis:
		return "sleep"
	default:
		return "unclassified"
	}
}

// Measurement is one single-valued sample.
type Measurement struct {
	Date   string    `json:"date" yaml:"date"`
	Time   time.Time `json:"-" yaml:"-"`
	Value  float64   `json:"value" yaml:"value"`
	Unit   string    `json:"unit" yaml:"unit"`
	Source string    `json:"source" yaml:"source"`
}

// SleepInterval is one labelled sleep interval.
type SleepInterval struct {
	Start         string    `json:"start" yaml:"start"`
	End           string    `json:"end" yaml:"end"`
	StartTime     time.Time `json:"-" yaml:"-"`
	EndTime       time.Time `json:"-" yaml:"-"`
	DurationHours float64   `json:"duration_hours" yaml:"duration_hours"`
	Value         string    `json:"value" yaml:"value"`
	Source        string    `json:"source" yaml:"source"`
}

// ParseTimestamp parses an export timestamp, ignoring anything after the
// seconds field (typically a " +0200" offset). The result carries the wall
// clock in UTC so calendar days match the export's local days.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) < len(TimestampLayout) {
		return time.Time{}, fmt.Errorf("timestamp too short: %q", s)
	}
	return time.Parse(TimestampLayout, s[:len(TimestampLayout)])
}

// NewMeasurement builds a measurement from an already parsed timestamp.
func NewMeasurement(ts time.Time, value float64, unit, source string) Measurement {
	return Measurement{
		Date:   ts.Format(ISOLayout),
		Time:   ts,
		Value:  value,
		Unit:   unit,
		Source: source,
	}
}

// NewSleepInterval builds a sleep interval. It fails when end precedes start.
func NewSleepInterval(start, end time.Time, label, source string) (SleepInterval, error) {
	if end.Before(start) {
		return SleepInterval{}, fmt.Errorf("sleep interval ends before it starts: %s < %s", end.Format(ISOLayout), start.Format(ISOLayout))
	}
	hours := end.Sub(start).Hours()
	return SleepInterval{
		Start:         start.Format(ISOLayout),
		End:           end.Format(ISOLayout),
		StartTime:     start,
		EndTime:       end,
		DurationHours: math.Round(hours*100) / 100,
		Value:         label,
		Source:        source,
	}, nil
}

// Day truncates t to its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WallClock re-expresses t's wall clock in UTC, the frame every parsed
// export timestamp lives in.
func WallClock(t time.Time) time.Time {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	return time.Date(y, mo, d, h, mi, s, t.Nanosecond(), time.UTC)
}
