package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/aimansalim/health-analyzer/pipeline"
	"github.com/aimansalim/health-analyzer/watch"

	"github.com/spf13/cobra"
)

var (
	watchHealthDir string
	watchFollow    bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Extract the newest export archive and re-run the analysis",
	Long: `Look for the newest export*.zip in the health folder. When it is newer
than the extracted export, unpack it and run the analysis.

With --follow the folder is watched until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchHealthDir, "health-dir", "", "folder the export archives are saved to")
	watchCmd.Flags().BoolVar(&watchFollow, "follow", false, "keep watching for new archives")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("health-dir") {
		cfg.HealthDir = watchHealthDir
	}

	u := watch.NewUpdater(cfg.HealthDir)
	cfg.ExportPath = u.ExportPath()
	opts, err := pipelineOptions(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	run := func() error {
		res, err := pipeline.Run(opts)
		if err != nil {
			return err
		}
		printResult(out, res)
		return nil
	}

	if !watchFollow {
		_, err := u.CheckAndUpdate(run)
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return u.Follow(ctx, run)
}
