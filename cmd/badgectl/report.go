package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/spf13/cobra"

	app "github.com/okian/medallion/internal/app"
	"github.com/okian/medallion/internal/domain/types"
	"github.com/okian/medallion/pkg/logger"
)

const defaultTop = 10

// startService builds every badge with the loaded engine settings.
func startService(ctx context.Context, f *rootFlags) (*app.Service, error) {
	svc := app.New(
		app.WithLogger(logger.Named("badgectl")),
		app.WithConfig(f.cfg),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

func newBadgesCmd(f *rootFlags) *cobra.Command {
	var (
		locked  bool
		asJSON  bool
		credits bool
	)
	cmd := &cobra.Command{
		Use:   "badges <user>",
		Short: "Grade a user on every badge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := startService(ctx, f)
			if err != nil {
				return err
			}
			defer svc.Stop()

			badges, err := svc.UserBadges(ctx, args[0], locked)
			if err != nil {
				return err
			}
			if asJSON {
				out := map[string]any{"user": args[0], "badges": badges}
				if credits {
					c, err := svc.Contributions(ctx, args[0])
					if err != nil {
						return err
					}
					out["contributions"] = c
				}
				return writeJSON(cmd.OutOrStdout(), out)
			}
			writeBadges(cmd.OutOrStdout(), badges)
			if credits {
				c, err := svc.Contributions(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\nfirst %d, early %d, follow-up %d, podium weeks %d\n",
					len(c.First), len(c.Early), len(c.Follow), c.PodiumWeeks)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&locked, "locked", false, "Include locked badges")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	cmd.Flags().BoolVar(&credits, "credits", false, "Also print temporal contribution credits")
	return cmd
}

func newLeaderboardCmd(f *rootFlags) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "leaderboard <badge>",
		Short: "Print the top users of a badge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := startService(ctx, f)
			if err != nil {
				return err
			}
			defer svc.Stop()

			entries, err := svc.TopN(ctx, args[0], top)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "RANK\tUSER\tSCORE")
			for _, e := range entries {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", e.Rank, e.User, formatScore(e.Score))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&top, "top", "n", defaultTop, "Number of entries")
	return cmd
}

func newThresholdsCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "thresholds",
		Short: "Print the tier thresholds of every badge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, err := startService(ctx, f)
			if err != nil {
				return err
			}
			defer svc.Stop()

			badges, err := svc.Badges(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "BADGE\tUSERS\tDEFAULT\tBRONZE\tSILVER\tGOLD\tPLATINUM")
			for _, b := range badges {
				fmt.Fprintf(tw, "%s\t%d", b.ID, b.Population)
				for _, g := range b.Grades[1:] {
					fmt.Fprintf(tw, "\t%s", formatMin(g.MinScore))
				}
				fmt.Fprintln(tw)
			}
			return tw.Flush()
		},
	}
}

func writeBadges(w io.Writer, badges []types.UserBadge) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BADGE\tTIER\tPROGRESS\tGRADE\tNEXT")
	for _, b := range badges {
		next := "-"
		if b.NextTier != "" {
			next = b.NextTier + " at " + formatMin(b.NextMinScore)
		}
		fmt.Fprintf(tw, "%s %s\t%s\t%s\t%.0f%%\t%s\n",
			b.Label, b.Title, b.Tier, formatScore(b.Progress), 100*b.GradeProgress, next)
	}
	_ = tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatScore(x float64) string {
	if x == math.Trunc(x) {
		return fmt.Sprintf("%.0f", x)
	}
	return fmt.Sprintf("%.2f", x)
}

func formatMin(x *float64) string {
	if x == nil {
		return "-"
	}
	return formatScore(*x)
}
