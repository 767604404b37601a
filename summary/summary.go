// Package summary flattens one run's stores, statistics and scores into the
// summary artifact consumed by dashboards.
package summary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aimansalim/health-analyzer/record"
	"github.com/aimansalim/health-analyzer/score"
	"github.com/aimansalim/health-analyzer/stats"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Format selects the artifact encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml", case-insensitively. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", s)
	}
}

// FileName is the artifact file name for the format.
func (f Format) FileName() string {
	if f == FormatYAML {
		return "health_data.yaml"
	}
	return "health_data.json"
}

// Summary is the complete artifact of one run.
type Summary struct {
	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
	Stats       Stats  `json:"stats" yaml:"stats"`
	Data        Data   `json:"data" yaml:"data"`
	Meta        Meta   `json:"meta" yaml:"meta"`
}

// Stats holds every statistics snapshot and composite score.
type Stats struct {
	HeartRate       stats.HeartRate     `json:"heart_rate" yaml:"heart_rate"`
	Steps           stats.Steps         `json:"steps" yaml:"steps"`
	Sleep           stats.Sleep         `json:"sleep" yaml:"sleep"`
	ActiveEnergy    stats.Energy        `json:"active_energy" yaml:"active_energy"`
	WalkingDistance stats.Distance      `json:"distance_walking" yaml:"distance_walking"`
	CyclingDistance stats.Distance      `json:"distance_cycling" yaml:"distance_cycling"`
	Readiness       score.Readiness     `json:"readiness" yaml:"readiness"`
	Recovery        score.Recovery      `json:"recovery" yaml:"recovery"`
	TrainingLoad    *score.TrainingLoad `json:"training_load,omitempty" yaml:"training_load,omitempty"`
}

// Data holds the raw series in encounter order.
type Data struct {
	HeartRate       []record.Measurement    `json:"heart_rate" yaml:"heart_rate"`
	Steps           []record.Measurement    `json:"steps" yaml:"steps"`
	Sleep           []record.SleepInterval  `json:"sleep" yaml:"sleep"`
	ActiveEnergy    []record.Measurement    `json:"active_energy" yaml:"active_energy"`
	WalkingDistance []record.Measurement    `json:"distance_walking" yaml:"distance_walking"`
	CyclingDistance []record.Measurement    `json:"distance_cycling" yaml:"distance_cycling"`
	Workouts        []record.WorkoutSession `json:"workouts" yaml:"workouts"`
}

// Len counts every entry of every list, workouts included.
func (d Data) Len() int {
	return len(d.HeartRate) + len(d.Steps) + len(d.Sleep) + len(d.ActiveEnergy) +
		len(d.WalkingDistance) + len(d.CyclingDistance) + len(d.Workouts)
}

// Meta describes where the data came from.
type Meta struct {
	SourceFile   string `json:"source_file" yaml:"source_file"`
	TotalRecords int    `json:"total_records" yaml:"total_records"`
}

// Input is everything Build needs from one run.
type Input struct {
	Stores      *record.Stores
	Workouts    []record.WorkoutSession
	Snapshot    stats.Snapshot
	Scores      score.Scores
	SourceFile  string
	GeneratedAt time.Time
}

// Build assembles the artifact. Nil lists are rendered as empty lists.
func Build(in Input) *Summary {
	stores := in.Stores
	if stores == nil {
		stores = record.NewStores()
	}
	data := Data{
		HeartRate:       nonNil(stores.HeartRate),
		Steps:           nonNil(stores.Steps),
		Sleep:           nonNil(stores.Sleep),
		ActiveEnergy:    nonNil(stores.ActiveEnergy),
		WalkingDistance: nonNil(stores.WalkingDistance),
		CyclingDistance: nonNil(stores.CyclingDistance),
		Workouts:        nonNil(in.Workouts),
	}
	return &Summary{
		GeneratedAt: in.GeneratedAt.Format(record.ISOLayout),
		Stats: Stats{
			HeartRate:       in.Snapshot.HeartRate,
			Steps:           in.Snapshot.Steps,
			Sleep:           in.Snapshot.Sleep,
			ActiveEnergy:    in.Snapshot.ActiveEnergy,
			WalkingDistance: in.Snapshot.WalkingDistance,
			CyclingDistance: in.Snapshot.CyclingDistance,
			Readiness:       in.Scores.Readiness,
			Recovery:        in.Scores.Recovery,
			TrainingLoad:    in.Scores.TrainingLoad,
		},
		Data: data,
		Meta: Meta{
			SourceFile:   in.SourceFile,
			TotalRecords: data.Len(),
		},
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Marshal renders the artifact. JSON is indented by two spaces with a
// trailing newline; map keys are sorted by both encoders.
func Marshal(s *Summary, format Format) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		out, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal summary json: %w", err)
		}
		return append(out, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return nil, fmt.Errorf("marshal summary yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("marshal summary yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// Write renders s and replaces path with it atomically.
func Write(path string, s *Summary, format Format) error {
	data, err := Marshal(s, format)
	if err != nil {
		return err
	}
	if err := WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames it
// into place, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return multierr.Append(fmt.Errorf("write temp file: %w", err), tmp.Close())
	}
	if err = tmp.Sync(); err != nil {
		return multierr.Append(fmt.Errorf("sync temp file: %w", err), tmp.Close())
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
