package cli

import (
	"fmt"
	"io"

	healthanalyzer "github.com/aimansalim/health-analyzer"
	"github.com/aimansalim/health-analyzer/config"
	"github.com/aimansalim/health-analyzer/pipeline"

	"github.com/spf13/cobra"
)

var analyzeFlags struct {
	export          string
	workouts        string
	fitDir          string
	out             string
	format          string
	source          string
	cutoff          string
	timezone        string
	parquet         bool
	metricsTextfile string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run one analysis and write the summary",
	Long: `Parse the export, the workout log and any FIT files, compute statistics
and scores, write the summary document and print a short report.

Flags override the values from the config file.`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.export, "export", "", "path to export.xml")
	f.StringVar(&analyzeFlags.workouts, "workouts", "", "path to the strength workout CSV")
	f.StringVar(&analyzeFlags.fitDir, "fit-dir", "", "directory of .fit activity files")
	f.StringVarP(&analyzeFlags.out, "out", "o", "", "output directory")
	f.StringVarP(&analyzeFlags.format, "format", "f", "", "summary format (json|yaml)")
	f.StringVar(&analyzeFlags.source, "source", "", "only keep records whose source contains this text")
	f.StringVar(&analyzeFlags.cutoff, "cutoff", "", "ignore workouts before this day (YYYY-MM-DD)")
	f.StringVar(&analyzeFlags.timezone, "timezone", "", "IANA timezone for \"now\" and FIT timestamps")
	f.BoolVar(&analyzeFlags.parquet, "parquet", false, "also write series.parquet")
	f.StringVar(&analyzeFlags.metricsTextfile, "metrics-textfile", "", "write run metrics to this Prometheus textfile")
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyAnalyzeFlags(cmd, cfg)

	opts, err := pipelineOptions(cfg)
	if err != nil {
		return err
	}
	res, err := pipeline.Run(opts)
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), res)
	return nil
}

func applyAnalyzeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	set("export", &cfg.ExportPath, analyzeFlags.export)
	set("workouts", &cfg.WorkoutLogPath, analyzeFlags.workouts)
	set("fit-dir", &cfg.FITDir, analyzeFlags.fitDir)
	set("out", &cfg.OutputDir, analyzeFlags.out)
	set("format", &cfg.OutputFormat, analyzeFlags.format)
	set("source", &cfg.SourceFilter, analyzeFlags.source)
	set("cutoff", &cfg.WorkoutCutoff, analyzeFlags.cutoff)
	set("timezone", &cfg.Timezone, analyzeFlags.timezone)
	set("metrics-textfile", &cfg.MetricsTextfile, analyzeFlags.metricsTextfile)
	if flags.Changed("parquet") {
		cfg.SeriesParquet = analyzeFlags.parquet
	}
}

// pipelineOptions validates cfg and converts it into run options.
func pipelineOptions(cfg *config.Config) (pipeline.Options, error) {
	if err := cfg.Validate(); err != nil {
		return pipeline.Options{}, err
	}
	cutoff, err := cfg.Cutoff()
	if err != nil {
		return pipeline.Options{}, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		ExportPath:      cfg.ExportPath,
		WorkoutLogPath:  cfg.WorkoutLogPath,
		FITDir:          cfg.FITDir,
		OutDir:          cfg.OutputDir,
		Format:          string(cfg.Format()),
		SourceFilter:    cfg.SourceFilter,
		WorkoutCutoff:   cutoff,
		Location:        loc,
		SeriesParquet:   cfg.SeriesParquet,
		MetricsTextfile: cfg.MetricsTextfile,
	}, nil
}

func printResult(w io.Writer, res *pipeline.Result) {
	fmt.Fprintln(w, healthanalyzer.BuildNotes(res.Summary))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Summary: %s\n", res.SummaryPath)
	if res.SeriesPath != "" {
		fmt.Fprintf(w, "Series:  %s\n", res.SeriesPath)
	}
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warning)
	}
}
