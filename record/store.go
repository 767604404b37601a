package record

import "fmt"

// Stores holds one category store per supported category. Insertion order is
// encounter order; nothing is sorted.
type Stores struct {
	HeartRate       []Measurement
	Steps           []Measurement
	ActiveEnergy    []Measurement
	WalkingDistance []Measurement
	CyclingDistance []Measurement
	Sleep           []SleepInterval
}

// NewStores returns empty stores.
func NewStores() *Stores {
	return &Stores{}
}

// AddMeasurement appends m to the store for c.
func (s *Stores) AddMeasurement(c Category, m Measurement) error {
	switch c {
	case HeartRate:
		s.HeartRate = append(s.HeartRate, m)
	case StepCount:
		s.Steps = append(s.Steps, m)
	case ActiveEnergy:
		s.ActiveEnergy = append(s.ActiveEnergy, m)
	case WalkingDistance:
		s.WalkingDistance = append(s.WalkingDistance, m)
	case CyclingDistance:
		s.CyclingDistance = append(s.CyclingDistance, m)
	default:
		return fmt.Errorf("category %s does not hold measurements", c)
	}
	return nil
}

// AddSleep appends a sleep interval.
func (s *Stores) AddSleep(iv SleepInterval) {
	s.Sleep = append(s.Sleep, iv)
}

// Measurements returns the store for a quantity category, or nil.
func (s *Stores) Measurements(c Category) []Measurement {
	switch c {
	case HeartRate:
		return s.HeartRate
	case StepCount:
		return s.Steps
	case ActiveEnergy:
		return s.ActiveEnergy
	case WalkingDistance:
		return s.WalkingDistance
	case CyclingDistance:
		return s.CyclingDistance
	default:
		return nil
	}
}

// Count returns the number of records held for c.
func (s *Stores) Count(c Category) int {
	if c == SleepAnalysis {
		return len(s.Sleep)
	}
	return len(s.Measurements(c))
}

// Total returns the number of records across every store.
func (s *Stores) Total() int {
	n := 0
	for _, c := range Categories {
		n += s.Count(c)
	}
	return n
}

// Counts returns per-category record counts keyed by category name.
func (s *Stores) Counts() map[string]int {
	out := make(map[string]int, len(Categories))
	for _, c := range Categories {
		out[c.String()] = s.Count(c)
	}
	return out
}
