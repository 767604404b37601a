package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"

	"github.com/aimansalim/health-analyzer/record"
	"github.com/aimansalim/health-analyzer/summary"
)

// DefaultWorkoutCutoff is the first day of the tracked training program.
const DefaultWorkoutCutoff = "2025-10-09"

type Config struct {
	// inputs
	ExportPath     string `toml:"export_path"`
	WorkoutLogPath string `toml:"workout_log_path"`
	FITDir         string `toml:"fit_dir"`
	SourceFilter   string `toml:"source_filter"`
	WorkoutCutoff  string `toml:"workout_cutoff"`
	Timezone       string `toml:"timezone"`
	// outputs
	OutputDir       string `toml:"output_dir"`
	OutputFormat    string `toml:"output_format"`
	SeriesParquet   bool   `toml:"series_parquet"`
	MetricsTextfile string `toml:"metrics_textfile"`
	// watcher
	HealthDir string `toml:"health_dir"`
	// logging
	LogLevel    string `toml:"log_level"`
	LogFile     string `toml:"log_file"`
	LogToStdout bool   `toml:"log_to_stdout"`
	LogJSON     bool   `toml:"log_json"`
}

// Default returns the configuration used when no file is present. Paths are
// relative to the health directory in the user's home.
func Default() *Config {
	healthDir := "health"
	if home, err := os.UserHomeDir(); err == nil {
		healthDir = filepath.Join(home, "health")
	}
	exportDir := filepath.Join(healthDir, "apple_health_export")
	return &Config{
		ExportPath:     filepath.Join(exportDir, "export.xml"),
		WorkoutLogPath: filepath.Join(healthDir, "strong_workouts.csv"),
		WorkoutCutoff:  DefaultWorkoutCutoff,
		Timezone:       "Local",
		OutputDir:      filepath.Join(healthDir, "dashboard", "public"),
		OutputFormat:   string(summary.FormatJSON),
		HealthDir:      healthDir,
		LogLevel:       "info",
		LogToStdout:    true,
	}
}

// Load reads the TOML file at path over the defaults. An empty path or a
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values that would otherwise fail mid-run.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ExportPath) == "" {
		return fmt.Errorf("export_path is required")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("output_dir is required")
	}
	if _, err := summary.ParseFormat(c.OutputFormat); err != nil {
		return err
	}
	if _, err := c.Cutoff(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Cutoff parses workout_cutoff. Empty means no cutoff.
func (c *Config) Cutoff() (time.Time, error) {
	if strings.TrimSpace(c.WorkoutCutoff) == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(record.DayLayout, strings.TrimSpace(c.WorkoutCutoff))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid workout_cutoff %q: %w", c.WorkoutCutoff, err)
	}
	return t, nil
}

// Location resolves the timezone used for FIT timestamps and "now".
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Format returns the parsed output format.
func (c *Config) Format() summary.Format {
	f, err := summary.ParseFormat(c.OutputFormat)
	if err != nil {
		return summary.FormatJSON
	}
	return f
}
