package cli

import (
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/leetcurve/backend/internal/data"
)

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog [query]",
		Short: "Search the built-in problem catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := data.LoadCatalog()
			if err != nil {
				return err
			}
			query := ""
			if len(args) == 1 {
				query = args[0]
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fprintf(w, "#\tSlug\tTitle\tDiff\tTopics\n")
			for _, e := range catalog.Search(query) {
				fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.QuestionID, e.Slug, e.Title, e.Difficulty, strings.Join(e.Topics, ", "))
			}
			return w.Flush()
		},
	}
}
