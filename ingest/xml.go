// Package ingest reads the raw inputs of a run: the health export XML, the
// strength-training CSV log and optional FIT activity files.
package ingest

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/aimansalim/health-analyzer/record"

	log "github.com/sirupsen/logrus"
)

// DefaultProgressEvery is how many Record elements pass between progress reports.
const DefaultProgressEvery = 10000

// ErrExportNotFound is returned when the export file does not exist.
var ErrExportNotFound = errors.New("health export not found")

// ExportOptions controls the streaming export parse.
type ExportOptions struct {
	// SourceFilter keeps only records whose sourceName contains it. Empty keeps all.
	SourceFilter string

	// ProgressEvery overrides DefaultProgressEvery.
	ProgressEvery int

	// Progress is called every ProgressEvery Record elements with the running counters.
	Progress func(ParseStats)

	// Logger receives per-element skip diagnostics at trace level.
	Logger log.FieldLogger
}

// ParseStats are the counters accumulated by one export pass.
type ParseStats struct {
	Elements     int            `json:"elements"`
	Records      int            `json:"records"`
	Unclassified int            `json:"unclassified"`
	Skipped      int            `json:"skipped"`
	Filtered     int            `json:"filtered"`
	ByCategory   map[string]int `json:"by_category"`
	Sources      map[string]int `json:"sources"`
}

func newParseStats() ParseStats {
	return ParseStats{
		ByCategory: make(map[string]int),
		Sources:    make(map[string]int),
	}
}

// element is the attribute set of one Record element. It lives only until
// the element has been dispatched.
type element struct {
	typeID    string
	source    string
	unit      string
	value     string
	startDate string
	endDate   string
}

// ParseExportFile streams the export at path into stores.
func ParseExportFile(path string, stores *record.Stores, opts ExportOptions) (*ParseStats, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrExportNotFound, path)
		}
		return nil, fmt.Errorf("open health export: %w", err)
	}
	defer f.Close()

	return ParseExport(f, stores, opts)
}

// ParseExport streams an export document from r into stores. Malformed Record
// elements are counted and skipped; only a broken document is an error.
func ParseExport(r io.Reader, stores *record.Stores, opts ExportOptions) (*ParseStats, error) {
	if stores == nil {
		return nil, fmt.Errorf("stores are required")
	}
	every := opts.ProgressEvery
	if every <= 0 {
		every = DefaultProgressEvery
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}

	stats := newParseStats()
	dec := xml.NewDecoder(bufio.NewReaderSize(r, 1<<20))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return &stats, fmt.Errorf("decode export xml: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Record" {
			continue
		}
		el := readElement(start)
		// Drop metadata children right away so nothing accumulates.
		if err := dec.Skip(); err != nil {
			return &stats, fmt.Errorf("skip record element: %w", err)
		}

		stats.Elements++
		dispatchElement(el, stores, opts.SourceFilter, &stats, logger)

		if opts.Progress != nil && stats.Elements%every == 0 {
			opts.Progress(stats)
		}
	}
	return &stats, nil
}

func readElement(start xml.StartElement) element {
	var el element
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "type":
			el.typeID = a.Value
		case "sourceName":
			el.source = a.Value
		case "unit":
			el.unit = a.Value
		case "value":
			el.value = a.Value
		case "startDate":
			el.startDate = a.Value
		case "endDate":
			el.endDate = a.Value
		}
	}
	return el
}

func dispatchElement(el element, stores *record.Stores, filter string, stats *ParseStats, logger log.FieldLogger) {
	cat := record.Classify(el.typeID)
	if cat == record.Unclassified {
		stats.Unclassified++
		return
	}
	if filter != "" && !strings.Contains(el.source, filter) {
		stats.Filtered++
		return
	}

	var err error
	switch cat.Shape() {
	case record.ShapeQuantity:
		err = addQuantity(cat, el, stores)
	case record.ShapeInterval:
		err = addInterval(el, stores)
	default:
		err = fmt.Errorf("category %s has no element shape", cat)
	}
	if err != nil {
		stats.Skipped++
		logger.WithField("type", el.typeID).Tracef("skip record: %s", err)
		return
	}

	stats.Records++
	stats.ByCategory[cat.String()]++
	stats.Sources[el.source]++
}

func addQuantity(cat record.Category, el element, stores *record.Stores) error {
	ts, err := record.ParseTimestamp(el.startDate)
	if err != nil {
		return fmt.Errorf("parse startDate: %w", err)
	}
	raw := strings.TrimSpace(el.value)
	if raw == "" {
		return fmt.Errorf("missing value")
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("invalid value %q", el.value)
	}
	if value < 0 {
		return fmt.Errorf("negative value %q", el.value)
	}
	if cat == record.StepCount {
		value = math.Trunc(value)
	}
	unit := el.unit
	if unit == "" {
		unit = cat.DefaultUnit()
	}
	return stores.AddMeasurement(cat, record.NewMeasurement(ts, value, unit, el.source))
}

func addInterval(el element, stores *record.Stores) error {
	start, err := record.ParseTimestamp(el.startDate)
	if err != nil {
		return fmt.Errorf("parse startDate: %w", err)
	}
	end, err := record.ParseTimestamp(el.endDate)
	if err != nil {
		return fmt.Errorf("parse endDate: %w", err)
	}
	label := el.value
	if label == "" {
		label = "Unknown"
	}
	iv, err := record.NewSleepInterval(start, end, label, el.source)
	if err != nil {
		return err
	}
	stores.AddSleep(iv)
	return nil
}
