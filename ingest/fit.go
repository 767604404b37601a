package ingest

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aimansalim/health-analyzer/record"

	log "github.com/sirupsen/logrus"
	"github.com/tormoder/fit"
)

// FITSourcePrefix prefixes the source name of every record imported from a FIT file.
const FITSourcePrefix = "FIT:"

// FITStats are the counters of one FIT directory import.
type FITStats struct {
	Files       int            `json:"files"`
	FailedFiles []string       `json:"failed_files,omitempty"`
	Records     int            `json:"records"`
	ByCategory  map[string]int `json:"by_category"`
}

// ImportFITDir imports every .fit file in dir into stores. Files that fail to
// decode are logged and listed in the stats; only an unreadable directory is an
// error. Timestamps are expressed as wall clock in loc (UTC when nil). A nil
// logger means the standard logger.
func ImportFITDir(dir string, stores *record.Stores, loc *time.Location, logger log.FieldLogger) (*FITStats, error) {
	if logger == nil {
		logger = log.StandardLogger()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read FIT dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".fit") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	stats := &FITStats{ByCategory: make(map[string]int)}
	for _, name := range names {
		path := filepath.Join(dir, name)
		n, err := ImportFITFile(path, stores, loc, stats.ByCategory)
		if err != nil {
			logger.WithField("file", path).Warnf("skip FIT file: %s", err)
			stats.FailedFiles = append(stats.FailedFiles, name)
			continue
		}
		stats.Files++
		stats.Records += n
	}
	return stats, nil
}

// ImportFITFile decodes one activity file and appends its heart-rate samples
// and session totals to stores. It returns the number of records added; counts
// per category are accumulated into byCategory when it is non-nil.
func ImportFITFile(path string, stores *record.Stores, loc *time.Location, byCategory map[string]int) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open FIT file: %w", err)
	}
	defer f.Close()

	decoded, err := fit.Decode(f)
	if err != nil {
		return 0, fmt.Errorf("decode FIT file: %w", err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return 0, fmt.Errorf("activity FIT expected: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}

	source := FITSourcePrefix + filepath.Base(path)
	added := 0
	add := func(c record.Category, ts time.Time, value float64) error {
		m := record.NewMeasurement(record.WallClock(ts.In(loc)), value, c.DefaultUnit(), source)
		if err := stores.AddMeasurement(c, m); err != nil {
			return err
		}
		added++
		if byCategory != nil {
			byCategory[c.String()]++
		}
		return nil
	}

	for _, rec := range activity.Records {
		ts := validTimeOrZero(rec.Timestamp)
		if ts.IsZero() {
			continue
		}
		hr, ok := extractHeartRate(rec)
		if !ok || hr == 0 {
			continue
		}
		if err := add(record.HeartRate, ts, hr); err != nil {
			return added, err
		}
	}

	for _, session := range activity.Sessions {
		ts := validTimeOrZero(session.StartTime)
		if ts.IsZero() {
			ts = validTimeOrZero(session.Timestamp)
		}
		if ts.IsZero() {
			continue
		}

		if km := safePositive(session.GetTotalDistanceScaled()) / 1000; km > 0 {
			if c, ok := distanceCategory(session.Sport); ok {
				if err := add(c, ts, math.Round(km*1000)/1000); err != nil {
					return added, err
				}
			}
		}
		if kcal := validUint16(session.TotalCalories); kcal > 0 {
			if err := add(record.ActiveEnergy, ts, float64(kcal)); err != nil {
				return added, err
			}
		}
	}
	return added, nil
}

// distanceCategory maps a FIT sport onto the distance category it counts toward.
func distanceCategory(sport fit.Sport) (record.Category, bool) {
	switch sport {
	case fit.SportCycling:
		return record.CyclingDistance, true
	case fit.SportRunning, fit.SportWalking, fit.SportHiking:
		return record.WalkingDistance, true
	default:
		return record.Unclassified, false
	}
}

func extractHeartRate(rec *fit.RecordMsg) (float64, bool) {
	if rec.HeartRate == math.MaxUint8 {
		return 0, false
	}
	return float64(rec.HeartRate), true
}

func validTimeOrZero(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}

func validUint16(v uint16) uint16 {
	if v == math.MaxUint16 {
		return 0
	}
	return v
}

func safePositive(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return v
}
