package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/leetcurve/backend/internal/app"
)

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var client string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token for the browser extension",
		Long: `Issue a bearer token signed with AUTH_SECRET. Paste it into the
extension settings so it can reach the local API.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if !a.Tokens.Enabled() {
					return errors.New("AUTH_SECRET is not set; the API is open and needs no token")
				}
				issued, err := a.Tokens.Issue(client)
				if err != nil {
					return err
				}
				fprintf(cmd.OutOrStdout(), "%s\n", issued.AccessToken)
				fprintf(cmd.ErrOrStderr(), "Expires %s\n", issued.ExpiresAt.Local().Format(time.RFC1123))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&client, "client", "extension", "Name recorded in the token subject")
	return cmd
}
