// Package cli is the leetcurve command line tool. Every command runs
// against the same store and services as the API server.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leetcurve/backend/internal/app"
	"github.com/leetcurve/backend/internal/domain"
	"github.com/leetcurve/backend/internal/infrastructure"
)

type rootOptions struct {
	verbose bool
	driver  string
	now     func() time.Time
}

// NewRootCommand builds the leetcurve command tree
func NewRootCommand() *cobra.Command {
	return newRootCommand(time.Now)
}

func newRootCommand(now func() time.Time) *cobra.Command {
	opts := &rootOptions{now: now}

	root := &cobra.Command{
		Use:   "leetcurve",
		Short: "Forgetting-curve review scheduler for LeetCode practice",
		Long: `leetcurve tracks the problems you have solved and tells you which
ones to review next. Each accepted review pushes a problem one step
further along the schedule until it is mastered.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log at info level to stderr")
	root.PersistentFlags().StringVar(&opts.driver, "driver", "", "Override DB_DRIVER (sqlite, postgres, memory)")

	root.AddCommand(
		newDueCmd(opts),
		newListCmd(opts),
		newIngestCmd(opts),
		newAddCmd(opts),
		newResetCmd(opts),
		newDeleteCmd(opts),
		newNoteCmd(opts),
		newMasteredCmd(opts),
		newRecentCmd(opts),
		newStatsCmd(opts),
		newStagesCmd(),
		newExportCmd(opts),
		newImportCmd(opts),
		newClearCmd(opts),
		newWeightsCmd(opts),
		newTokenCmd(opts),
		newCatalogCmd(),
	)
	return root
}

// Execute runs the command tree and exits non-zero on failure
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// withApp builds the application for one command and tears it down after,
// flushing any pending backup write
func (o *rootOptions) withApp(cmd *cobra.Command, run func(ctx context.Context, a *app.App) error) error {
	config := infrastructure.LoadConfig()
	if o.driver != "" {
		config.Database.Driver = o.driver
	}
	// exporters belong to the long-running server
	config.Telemetry.Enabled = false

	logger, err := infrastructure.NewCLILogger(o.verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.SyncLogger(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.New(ctx, config, logger)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	a.Reviews.WithClock(o.now)
	if err := run(ctx, a); err != nil {
		logger.Debug("Command failed", zap.String("command", cmd.Name()), zap.Error(err))
		return err
	}
	return nil
}

func splitTags(raw string) []string {
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

func parseDifficulty(raw string) (domain.Difficulty, error) {
	if raw == "" {
		return "", nil
	}
	d, ok := domain.ParseDifficulty(raw)
	if !ok {
		return "", domain.InvalidInput("difficulty must be Easy, Medium or Hard, got %q", raw)
	}
	return d, nil
}

func stageLabel(p *domain.Problem) string {
	return domain.StageAt(p.Stage).Label
}

func nextReview(p *domain.Problem) string {
	at, ok := domain.NextReviewAt(p)
	if !ok {
		return "-"
	}
	return at.Local().Format("2006-01-02 15:04")
}

func formatScore(s domain.Score) string {
	if s.IsMastered() {
		return "mastered"
	}
	return fmt.Sprintf("%.2f", float64(s))
}

func tagList(p *domain.Problem) string {
	return strings.Join(p.Tags, ", ")
}

func fprintf(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, format, args...)
}
