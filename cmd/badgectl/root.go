package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/medallion/internal/config"
	"github.com/okian/medallion/pkg/logger"
)

// rootFlags are shared by every subcommand. cfg is loaded before any
// subcommand runs, with explicitly set flags applied on top.
type rootFlags struct {
	dataset  string
	logLevel string
	workers  int
	cfg      *config.Config
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "badgectl",
		Short: "badgectl - offline tooling for the medallion badge engine",
		Long: `badgectl works directly on a dataset archive:
  generate     writes a synthetic archive for demos and load tests
  badges       grades one user on every badge
  leaderboard  prints the top users of a badge
  thresholds   prints the tier thresholds of every badge

Engine settings come from the same MEDALLION_* environment and
MEDALLION_CONFIG file as the service, so reports match what it serves.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.SetLevelString(f.logLevel); err != nil {
				return err
			}
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("dataset") {
				cfg.DatasetPath = f.dataset
			}
			if flags.Changed("workers") {
				cfg.WorkerCount = f.workers
			}
			f.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&f.dataset, "dataset", "d", "", "Dataset archive or directory (default: dataset_path from config)")
	cmd.PersistentFlags().StringVar(&f.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().IntVarP(&f.workers, "workers", "w", 0, "Number of badge build workers (default: worker_count from config)")

	cmd.AddCommand(
		newGenerateCmd(),
		newBadgesCmd(f),
		newLeaderboardCmd(f),
		newThresholdsCmd(f),
	)
	return cmd
}
