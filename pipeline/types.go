package pipeline

import (
	"time"

	"github.com/aimansalim/health-analyzer/ingest"
	"github.com/aimansalim/health-analyzer/summary"

	log "github.com/sirupsen/logrus"
)

// Options configures one analysis run.
type Options struct {
	ExportPath     string
	WorkoutLogPath string // optional; a missing file is a warning
	FITDir         string // optional
	OutDir         string
	Format         string // json|yaml
	SourceFilter   string
	WorkoutCutoff  time.Time

	// Now anchors every window. Zero means the wall clock at run start.
	Now time.Time
	// Location is the timezone Now and FIT timestamps are read in. Nil means time.Local.
	Location *time.Location

	SeriesParquet   bool
	MetricsTextfile string

	Logger log.FieldLogger
}

// Result describes the artifacts and counters of a finished run.
type Result struct {
	RunID        string               `json:"run_id"`
	SummaryPath  string               `json:"summary_path"`
	SeriesPath   string               `json:"series_path,omitempty"`
	MetricsPath  string               `json:"metrics_path,omitempty"`
	ParseStats   *ingest.ParseStats   `json:"parse_stats"`
	WorkoutStats *ingest.WorkoutStats `json:"workout_stats,omitempty"`
	FITStats     *ingest.FITStats     `json:"fit_stats,omitempty"`
	Warnings     []string             `json:"warnings,omitempty"`
	Duration     time.Duration        `json:"duration_ns"`
	Summary      *summary.Summary     `json:"-"`
}
