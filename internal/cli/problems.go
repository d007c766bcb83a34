package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leetcurve/backend/internal/app"
	"github.com/leetcurve/backend/internal/data"
	"github.com/leetcurve/backend/internal/domain"
)

func newIngestCmd(opts *rootOptions) *cobra.Command {
	var (
		title      string
		difficulty string
		tags       string
		url        string
		cn         bool
		at         string
		codeFile   string
		lang       string
	)

	cmd := &cobra.Command{
		Use:   "ingest [slug]",
		Short: "Record an accepted submission",
		Long: `Record an accepted submission for a problem. The first submission adds
the problem to the schedule; later ones advance it one stage once the
cooldown has passed. Metadata of well known problems is filled in from
the built-in catalog.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDifficulty(difficulty)
			if err != nil {
				return err
			}

			event := &domain.SubmissionEvent{
				Slug:          strings.ToLower(strings.TrimSpace(args[0])),
				Title:         title,
				Difficulty:    d,
				Tags:          splitTags(tags),
				URL:           url,
				SubmittedLang: lang,
			}
			if cn {
				event.Origin = domain.OriginCN
			} else if url != "" {
				event.Origin = domain.OriginFromURL(url)
			}
			if at != "" {
				ts, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return domain.InvalidInput("--at must be RFC3339, e.g. 2026-01-02T15:04:05Z")
				}
				event.Timestamp = ts.UnixMilli()
			}
			if codeFile != "" {
				code, err := os.ReadFile(codeFile)
				if err != nil {
					return err
				}
				event.SubmittedCode = string(code)
			}

			catalog, err := data.LoadCatalog()
			if err != nil {
				return err
			}
			catalog.Enrich(event)

			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Reviews.IngestAcceptedSubmission(ctx, event)
				if err != nil {
					return err
				}
				fprintf(cmd.OutOrStdout(), "%s: %s\n", event.Slug, res.Message)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Problem title")
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "Easy, Medium or Hard")
	cmd.Flags().StringVarP(&tags, "tags", "t", "", "Comma separated tags")
	cmd.Flags().StringVar(&url, "url", "", "Problem URL")
	cmd.Flags().BoolVar(&cn, "cn", false, "Solved on leetcode.cn")
	cmd.Flags().StringVar(&at, "at", "", "Submission time (RFC3339), defaults to now")
	cmd.Flags().StringVar(&codeFile, "code-file", "", "File holding the accepted code")
	cmd.Flags().StringVar(&lang, "lang", "", "Language of the accepted code")
	return cmd
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var req domain.AddProblemRequest
	var difficulty, tags string

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Track a problem by hand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDifficulty(difficulty)
			if err != nil {
				return err
			}
			req.Title = args[0]
			req.Difficulty = d
			req.Tags = splitTags(tags)

			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				problem, err := a.Reviews.AddProblem(ctx, &req)
				if err != nil {
					return err
				}
				fprintf(cmd.OutOrStdout(), "Added %s (%s), first review %s\n", problem.Slug, problem.Difficulty, nextReview(problem))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "Easy, Medium or Hard (default Medium)")
	cmd.Flags().StringVarP(&tags, "tags", "t", "", "Comma separated tags")
	cmd.Flags().StringVar(&req.URL, "url", "", "Problem URL")
	cmd.Flags().StringVar(&req.QuestionID, "id", "", "Question number")
	cmd.Flags().StringVar(&req.Note, "note", "", "Initial note")
	return cmd
}

func newResetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset [slug]",
		Short: "Send a problem back to the first stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				problem, err := a.Reviews.ResetProblem(ctx, args[0])
				if err != nil {
					return err
				}
				fprintf(cmd.OutOrStdout(), "Reset %s, next review %s\n", problem.Slug, nextReview(problem))
				return nil
			})
		},
	}
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete [slug]",
		Short: "Stop tracking a problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug := args[0]
			if !force && !confirm(cmd, fmt.Sprintf("Delete %s and its history?", slug)) {
				fprintf(cmd.OutOrStdout(), "Cancelled.\n")
				return nil
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Reviews.DeleteProblem(ctx, slug); err != nil {
					return err
				}
				fprintf(cmd.OutOrStdout(), "Deleted %s\n", slug)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")
	return cmd
}

func newNoteCmd(opts *rootOptions) *cobra.Command {
	var note, codeFile string

	cmd := &cobra.Command{
		Use:   "note [slug]",
		Short: "Show or edit the note and code of a problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &domain.UpdateNoteRequest{Slug: args[0]}
			if cmd.Flags().Changed("note") {
				req.Note = &note
			}
			if codeFile != "" {
				code, err := os.ReadFile(codeFile)
				if err != nil {
					return err
				}
				s := string(code)
				req.Code = &s
			}

			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				out := cmd.OutOrStdout()
				if req.Note == nil && req.Code == nil {
					problem, err := a.Reviews.GetProblem(ctx, req.Slug)
					if err != nil {
						return err
					}
					fprintf(out, "%s\n", problem.Title)
					if problem.Note != "" {
						fprintf(out, "\n%s\n", problem.Note)
					}
					if problem.Code != "" {
						fprintf(out, "\n%s\n", problem.Code)
					}
					return nil
				}
				if err := a.Reviews.UpdateNote(ctx, req); err != nil {
					return err
				}
				fprintf(out, "Saved %s\n", req.Slug)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "Replace the note")
	cmd.Flags().StringVar(&codeFile, "code-file", "", "Replace the code with the contents of a file")
	return cmd
}

func confirm(cmd *cobra.Command, question string) bool {
	fprintf(cmd.OutOrStdout(), "%s (y/N): ", question)
	input, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}
