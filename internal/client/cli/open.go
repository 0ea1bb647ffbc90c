package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/docvault/internal/filex"
)

func (a *App) openCmd() *cobra.Command {
	var output string
	var pin string

	cmd := &cobra.Command{
		Use:   "open <token>",
		Short: "Open a document shared with you",
		Long: "Opens a shared document by its token. " +
			"Prompts for the PIN unless --pin is given. No account is needed.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pin == "" {
				p, err := readPIN(cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				pin = p
			}

			opened, err := a.docs.ViewShared(cmd.Context(), args[0], pin)
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
	cmd.Flags().StringVar(&pin, "pin", "", "share PIN (prompted when omitted)")
	return cmd
}
