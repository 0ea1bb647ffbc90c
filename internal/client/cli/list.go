package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (a *App) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := a.docs.List(cmd.Context())
			if err != nil {
				return err
			}

			if len(docs) == 0 {
				cmd.Println("no documents")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTYPE\tCREATED")
			for _, d := range docs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					d.ID, d.FileName, d.MimeType, d.CreatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}
