package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/docvault/internal/filex"
)

func (a *App) viewCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "view <document-id>",
		Short: "Download and decrypt one of your documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opened, err := a.docs.ViewOwner(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				dir, err := filex.EnsureSubDir("downloads")
				if err != nil {
					return err
				}
				path = filepath.Join(dir, opened.FileName)
			}
			if err := writeOutput(cmd.OutOrStdout(), path, opened.Data); err != nil {
				return err
			}
			if path != "-" {
				cmd.Printf("saved %s (%d bytes)\n", path, len(opened.Data))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `output file ("-" for stdout, default: original name)`)
	return cmd
}
