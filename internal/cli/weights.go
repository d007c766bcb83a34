package cli

import (
	"context"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/leetcurve/backend/internal/app"
	"github.com/leetcurve/backend/internal/domain"
)

func newWeightsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Manage per-tag priority weights",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show configured tag weights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				settings, err := a.Reviews.GetSettings(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(settings.TagWeights) == 0 {
					fprintf(out, "No tag weights set; every tag counts as %g.\n", domain.DefaultTagWeight)
					return nil
				}
				tags := make([]string, 0, len(settings.TagWeights))
				for tag := range settings.TagWeights {
					tags = append(tags, tag)
				}
				sort.Strings(tags)

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fprintf(w, "Tag\tWeight\n")
				for _, tag := range tags {
					fprintf(w, "%s\t%g\n", tag, settings.TagWeights[tag])
				}
				return w.Flush()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set [tag] [weight]",
		Short: "Set the weight of a tag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			weight, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return domain.InvalidInput("weight must be a number, got %q", args[1])
			}
			return updateWeights(cmd, opts, func(weights map[string]float64) {
				weights[args[0]] = weight
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm [tag]",
		Short: "Remove the weight of a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateWeights(cmd, opts, func(weights map[string]float64) {
				delete(weights, args[0])
			})
		},
	})

	return cmd
}

func updateWeights(cmd *cobra.Command, opts *rootOptions, edit func(map[string]float64)) error {
	return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
		settings, err := a.Reviews.GetSettings(ctx)
		if err != nil {
			return err
		}
		if settings.TagWeights == nil {
			settings.TagWeights = map[string]float64{}
		}
		edit(settings.TagWeights)

		summary, err := a.Reviews.SaveSettings(ctx, settings)
		if err != nil {
			return err
		}
		fprintf(cmd.OutOrStdout(), "Saved. %d of %d problems due.\n", summary.Due, summary.Total)
		return nil
	})
}
