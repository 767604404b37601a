package record

import "math"

// RestTimerSet is the Set Order value the workout log uses for rest timers.
const RestTimerSet = "Rest Timer"

// WorkoutSet is one counted working set.
type WorkoutSet struct {
	Weight float64 `json:"weight" yaml:"weight"`
	Reps   float64 `json:"reps" yaml:"reps"`
	Set    string  `json:"set" yaml:"set"`
}

// Counts reports whether the set contributes to volume and set totals.
func (s WorkoutSet) Counts() bool {
	if math.IsInf(s.Volume(), 0) || math.IsNaN(s.Volume()) {
		return false
	}
	return s.Weight > 0 && s.Reps > 0 && s.Set != RestTimerSet
}

// Volume is weight times reps.
func (s WorkoutSet) Volume() float64 {
	return s.Weight * s.Reps
}

// WorkoutSession merges every log row of one calendar day.
type WorkoutSession struct {
	Date        string                  `json:"date" yaml:"date"`
	Name        string                  `json:"name" yaml:"name"`
	Duration    string                  `json:"duration" yaml:"duration"`
	Exercises   map[string][]WorkoutSet `json:"exercises" yaml:"exercises"`
	TotalSets   int                     `json:"total_sets" yaml:"total_sets"`
	TotalVolume float64                 `json:"total_volume" yaml:"total_volume"`
}

// AddExercise registers an exercise name without adding a set.
func (w *WorkoutSession) AddExercise(name string) {
	if name == "" {
		return
	}
	if w.Exercises == nil {
		w.Exercises = make(map[string][]WorkoutSet)
	}
	if _, ok := w.Exercises[name]; !ok {
		w.Exercises[name] = []WorkoutSet{}
	}
}

// AddSet records a set under exercise if it counts. It reports whether it did.
func (w *WorkoutSession) AddSet(exercise string, set WorkoutSet) bool {
	w.AddExercise(exercise)
	if !set.Counts() || math.IsInf(w.TotalVolume+set.Volume(), 0) {
		return false
	}
	w.TotalVolume += set.Volume()
	w.TotalSets++
	if exercise != "" {
		w.Exercises[exercise] = append(w.Exercises[exercise], set)
	}
	return true
}
