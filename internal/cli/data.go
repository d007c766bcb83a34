package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leetcurve/backend/internal/app"
	"github.com/leetcurve/backend/internal/backup"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write every problem, setting and activity entry as JSON",
		Long:  "Write the whole schedule as a snapshot document to file, or to stdout when no file is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				snapshot, err := a.Reviews.ExportData(ctx)
				if err != nil {
					return err
				}
				data, err := json.MarshalIndent(snapshot, "", "  ")
				if err != nil {
					return err
				}
				data = append(data, '\n')

				if len(args) == 0 {
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.WriteFile(args[0], data, 0o600); err != nil {
					return err
				}
				fprintf(cmd.ErrOrStderr(), "Exported %d problems to %s\n", len(snapshot.Problems), args[0])
				return nil
			})
		},
	}
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Replace the schedule with a snapshot document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := backup.Load(args[0])
			if err != nil {
				return err
			}
			if snapshot == nil {
				return fmt.Errorf("%s does not exist", args[0])
			}

			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				n, err := a.Reviews.ImportData(ctx, snapshot)
				if err != nil {
					return err
				}
				fprintf(cmd.OutOrStdout(), "Imported %d problems\n", n)
				return nil
			})
		},
	}
}

func newClearCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget every problem, setting and activity entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force && !confirm(cmd, "Clear ALL review data?") {
				fprintf(cmd.OutOrStdout(), "Cancelled.\n")
				return nil
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Reviews.ClearAllData(ctx); err != nil {
					return err
				}
				fprintf(cmd.OutOrStdout(), "All data cleared.\n")
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")
	return cmd
}
