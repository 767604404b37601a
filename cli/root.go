// Package cli implements the health-analyzer commands.
package cli

import (
	"github.com/aimansalim/health-analyzer/config"
	"github.com/aimansalim/health-analyzer/logging"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "health-analyzer",
	Short: "Turn a health export into daily statistics and readiness scores",
	Long: `health-analyzer parses a health export (plus an optional strength
workout log and FIT activity files), computes rolling statistics and
readiness, recovery and training-load scores, and writes a single
summary document for the dashboard.`,
	SilenceUsage: true,
}

var (
	configPath string
	logLevel   string
	logFile    string
	logJSON    bool
)

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "path to the TOML config file")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug|info|warn|error)")
	pf.StringVar(&logFile, "log-file", "", "rotate logs into this file")
	pf.BoolVar(&logJSON, "log-json", false, "log in JSON format")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(watchCmd)
}

// loadConfig reads the config file, applies the persistent flag overrides and
// sets up logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if flags.Changed("log-json") {
		cfg.LogJSON = logJSON
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.LogFile,
		LogToStdout:   cfg.LogToStdout,
		LogLevel:      cfg.LogLevel,
		LogFormatJSON: cfg.LogJSON,
	})
	return cfg, nil
}
