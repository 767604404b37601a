package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aimansalim/health-analyzer/ingest"
	"github.com/aimansalim/health-analyzer/metrics"
	"github.com/aimansalim/health-analyzer/record"
	"github.com/aimansalim/health-analyzer/score"
	"github.com/aimansalim/health-analyzer/stats"
	"github.com/aimansalim/health-analyzer/summary"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// Run executes one full analysis pass and writes the summary artifact.
// Only a missing export, a broken export document or a failed write is an
// error; everything else degrades into warnings on the Result.
func Run(opts Options) (res *Result, err error) {
	if strings.TrimSpace(opts.ExportPath) == "" {
		return nil, fmt.Errorf("export path is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format, err := summary.ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now.IsZero() {
		now = started
	}
	now = record.WallClock(now.In(loc))

	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	res = &Result{RunID: uuid.NewString()}
	entry := logger.WithField("run_id", res.RunID)

	var mm *metrics.Manager
	var reg *prometheus.Registry
	if opts.MetricsTextfile != "" {
		reg = prometheus.NewRegistry()
		mm = metrics.NewManager(metrics.Namespace, metrics.Subsystem, reg)
		defer func() {
			mm.ObserveRun(err, time.Since(started), time.Now())
			if werr := metrics.WriteTextfile(opts.MetricsTextfile, reg); werr != nil {
				entry.Errorf("write metrics: %s", werr)
				return
			}
			if res != nil {
				res.MetricsPath = opts.MetricsTextfile
			}
		}()
	}

	entry.WithFields(log.Fields{
		"export": opts.ExportPath,
		"now":    now.Format(record.ISOLayout),
	}).Info("analysis run started")

	stores := record.NewStores()
	parseStats, err := ingest.ParseExportFile(opts.ExportPath, stores, ingest.ExportOptions{
		SourceFilter: opts.SourceFilter,
		Logger:       entry,
		Progress: func(s ingest.ParseStats) {
			entry.Infof("processed %d records (%d kept)", s.Elements, s.Records)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("parse export: %w", err)
	}
	res.ParseStats = parseStats
	entry.WithFields(log.Fields{
		"records":      parseStats.Records,
		"skipped":      parseStats.Skipped,
		"filtered":     parseStats.Filtered,
		"unclassified": parseStats.Unclassified,
	}).Info("export parsed")
	if parseStats.Skipped > 0 {
		res.warn(entry, "%d malformed export records skipped", parseStats.Skipped)
	}

	workouts := loadWorkouts(opts, res, entry)
	importFIT(opts, loc, stores, res, entry)

	snapshot := stats.Compute(stores, now)
	scores := score.Compute(stores, now)
	if snapshot.Sleep.Estimated() {
		res.warn(entry, "no sleep data; sleep statistics are estimated")
	}

	res.Summary = summary.Build(summary.Input{
		Stores:      stores,
		Workouts:    workouts,
		Snapshot:    snapshot,
		Scores:      scores,
		SourceFile:  opts.ExportPath,
		GeneratedAt: record.WallClock(time.Now().In(loc)),
	})

	res.SummaryPath = filepath.Join(opts.OutDir, format.FileName())
	if err = summary.Write(res.SummaryPath, res.Summary, format); err != nil {
		return nil, err
	}

	if opts.SeriesParquet {
		res.SeriesPath = filepath.Join(opts.OutDir, summary.SeriesFileName)
		if err = summary.WriteSeriesParquet(res.SeriesPath, stores); err != nil {
			return nil, err
		}
	}

	if mm != nil {
		mm.ObserveRecords(stores.Counts(), parseStats.Skipped)
		mm.GaugeWorkouts.Set(float64(len(workouts)))
		var load *float64
		if scores.TrainingLoad != nil {
			load = &scores.TrainingLoad.Current
		}
		mm.ObserveScores(scores.Readiness.Score, scores.Recovery.Score, load)
	}

	res.Duration = time.Since(started)
	entry.WithFields(log.Fields{
		"summary":   res.SummaryPath,
		"records":   res.Summary.Meta.TotalRecords,
		"readiness": scores.Readiness.Score,
		"duration":  res.Duration.Round(time.Millisecond).String(),
	}).Info("analysis run finished")
	return res, nil
}

func loadWorkouts(opts Options, res *Result, entry log.FieldLogger) []record.WorkoutSession {
	if strings.TrimSpace(opts.WorkoutLogPath) == "" {
		return nil
	}
	sessions, wstats, err := ingest.ParseWorkoutLogFile(opts.WorkoutLogPath, ingest.WorkoutOptions{Cutoff: opts.WorkoutCutoff})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			res.warn(entry, "workout log not found: %s", opts.WorkoutLogPath)
		} else {
			res.warn(entry, "workout log unreadable: %s", err)
		}
		return nil
	}
	res.WorkoutStats = wstats
	if len(wstats.MissingFields) > 0 {
		res.warn(entry, "workout log is missing columns: %s", strings.Join(wstats.MissingFields, ", "))
	}
	entry.WithFields(log.Fields{
		"sessions":      len(sessions),
		"before_cutoff": wstats.BeforeCutoff,
		"skipped":       wstats.Skipped,
	}).Info("workout log parsed")
	return sessions
}

func importFIT(opts Options, loc *time.Location, stores *record.Stores, res *Result, entry log.FieldLogger) {
	if strings.TrimSpace(opts.FITDir) == "" {
		return
	}
	fitStats, err := ingest.ImportFITDir(opts.FITDir, stores, loc, entry)
	if err != nil {
		res.warn(entry, "FIT import skipped: %s", err)
		return
	}
	res.FITStats = fitStats
	for _, name := range fitStats.FailedFiles {
		res.warn(entry, "FIT file not imported: %s", name)
	}
	entry.WithFields(log.Fields{
		"files":   fitStats.Files,
		"records": fitStats.Records,
	}).Info("FIT files imported")
}

func (r *Result) warn(entry log.FieldLogger, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	entry.Warn(msg)
}
