package cli

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func (a *App) exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all your documents as a zip archive",
		Long: "Downloads and decrypts every document into a zip archive. " +
			"Documents that fail to decrypt are skipped and reported; the rest are still exported.",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			defer f.Close()

			var bar *progressbar.ProgressBar
			report, err := a.docs.ExportAll(cmd.Context(), f, func(done, total int) {
				if bar == nil {
					bar = progressbar.NewOptions(total,
						progressbar.OptionSetDescription("exporting"),
						progressbar.OptionSetWriter(os.Stderr),
						progressbar.OptionThrottle(100),
					)
				}
				_ = bar.Set(done)
			})
			if bar != nil {
				_ = bar.Finish()
				fmt.Fprintln(cmd.ErrOrStderr())
			}
			if err != nil {
				return err
			}

			cmd.Printf("exported %d document(s) to %s\n", report.Exported, output)
			for _, failure := range report.Failures {
				cmd.Printf("failed: %s (%s)\n", failure.FileName, failure.DocumentID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "documents.zip", "output archive path")
	return cmd
}
