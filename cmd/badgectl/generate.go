package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/medallion/internal/datagen"
)

func newGenerateCmd() *cobra.Command {
	cfg := datagen.DefaultConfig()
	var output string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic dataset archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := datagen.Generate(cfg)
			if err != nil {
				return err
			}
			if err := d.WriteFile(output); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d users, %d comparisons\n", output, len(d.Users), len(d.Comparisons))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "dataset.zip", "Output archive path")
	cmd.Flags().IntVar(&cfg.Users, "users", cfg.Users, "Number of users")
	cmd.Flags().IntVar(&cfg.Videos, "videos", cfg.Videos, "Number of videos")
	cmd.Flags().IntVar(&cfg.Weeks, "weeks", cfg.Weeks, "Number of weekly buckets")
	cmd.Flags().IntVar(&cfg.ComparisonsPerUser, "comparisons", cfg.ComparisonsPerUser, "Mean comparisons per user")
	cmd.Flags().Float64Var(&cfg.SecondaryRatio, "secondary-ratio", cfg.SecondaryRatio, "Chance a comparison also rates each secondary criterion")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed")
	return cmd
}
