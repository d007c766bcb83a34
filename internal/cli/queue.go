package cli

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/leetcurve/backend/internal/app"
	"github.com/leetcurve/backend/internal/domain"
)

func newDueCmd(opts *rootOptions) *cobra.Command {
	var limit int
	var all bool

	cmd := &cobra.Command{
		Use:   "due",
		Short: "Show problems due for review, most urgent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				queue, err := a.Reviews.GetReviewQueue(ctx)
				if err != nil {
					return err
				}

				due := make([]domain.Problem, 0, len(queue))
				for _, p := range queue {
					if all || p.PriorityScore > 0 {
						due = append(due, p)
					}
				}
				if limit > 0 && len(due) > limit {
					due = due[:limit]
				}

				out := cmd.OutOrStdout()
				if len(due) == 0 {
					fprintf(out, "Nothing due. Next reviews are still ahead of you.\n")
					return nil
				}
				if !all {
					fprintf(out, "%d problems due:\n\n", len(due))
				}
				printProblems(cmd, due)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most n problems")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include problems that are not yet due")
	return cmd
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tracked problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				all, err := a.Reviews.GetAllProblems(ctx)
				if err != nil {
					return err
				}
				problems := make([]domain.Problem, 0, len(all))
				for _, p := range all {
					problems = append(problems, p)
				}
				domain.SortByEnumeration(problems)
				printProblems(cmd, problems)
				return nil
			})
		},
	}
}

func newMasteredCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mastered",
		Short: "List mastered problems, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				problems, err := a.Reviews.GetMasteredProblems(ctx)
				if err != nil {
					return err
				}
				printProblems(cmd, problems)
				return nil
			})
		},
	}
}

func newRecentCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "List problems touched in the last 7 days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				problems, err := a.Reviews.GetRecentActivity(ctx)
				if err != nil {
					return err
				}
				printProblems(cmd, problems)
				return nil
			})
		},
	}
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show schedule statistics and streaks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				stats, err := a.Reviews.GetStats(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fprintf(out, "Total:          %d\n", stats.Total)
				fprintf(out, "Due:            %d\n", stats.Due)
				fprintf(out, "Mastered:       %d\n", stats.Mastered)
				fprintf(out, "Current streak: %d days\n", stats.CurrentStreak)
				fprintf(out, "Longest streak: %d days\n", stats.LongestStreak)

				fprintf(out, "\nBy difficulty:\n")
				for _, d := range []domain.Difficulty{domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard} {
					fprintf(out, "  %-8s %d\n", d, stats.ByDifficulty[d])
				}

				fprintf(out, "\nBy stage:\n")
				stages := make([]int, 0, len(stats.ByStage))
				for s := range stats.ByStage {
					stages = append(stages, s)
				}
				sort.Ints(stages)
				for _, s := range stages {
					fprintf(out, "  %-10s %d\n", domain.StageAt(s).Label, stats.ByStage[s])
				}
				return nil
			})
		},
	}
}

func newStagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stages",
		Short: "Show the review schedule",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fprintf(w, "#\tStage\tWait\n")
			for _, s := range domain.StagesInfo() {
				wait := "-"
				if !s.Mastered {
					wait = fmt.Sprintf("%gh", s.IntervalHours)
				}
				fprintf(w, "%d\t%s\t%s\n", s.Index, s.Label, wait)
			}
			_ = w.Flush()
		},
	}
}

func printProblems(cmd *cobra.Command, problems []domain.Problem) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fprintf(w, "Slug\tTitle\tDiff\tStage\tScore\tNext Review\tTags\n")
	fprintf(w, "----\t-----\t----\t-----\t-----\t-----------\t----\n")
	for i := range problems {
		p := &problems[i]
		fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.Slug, p.Title, p.Difficulty, stageLabel(p), formatScore(p.PriorityScore), nextReview(p), tagList(p))
	}
	_ = w.Flush()
}
