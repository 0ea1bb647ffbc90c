package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/docvault/internal/client/services"
	"github.com/dmitrijs2005/docvault/internal/normalize"
)

func (a *App) uploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Normalize, encrypt and upload one document",
		Long: "Uploads one document built from the given files. " +
			"Multiple PDFs are merged; for mixed inputs only the first file is used and the rest are reported.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]normalize.Input, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				files = append(files, normalize.Input{
					Name: filepath.Base(path),
					MIME: mime.TypeByExtension(filepath.Ext(path)),
					Data: data,
				})
			}

			bar := newStageBar("uploading")
			outcome, err := a.uploads.ProcessAndUpload(cmd.Context(), files, func(p services.Progress) {
				desc := string(p.Phase)
				if p.Stage != "" {
					desc = string(p.Stage)
				}
				bar.Describe(desc)
				_ = bar.Add(1)
			})
			_ = bar.Finish()
			fmt.Fprintln(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			cmd.Printf("uploaded %s (id %s)\n", outcome.FileName, outcome.DocumentID)
			if !outcome.ThumbnailUploaded {
				cmd.Println("note: no thumbnail was stored")
			}
			for _, name := range outcome.Ignored {
				cmd.Printf("ignored: %s\n", name)
			}
			return nil
		},
	}
	return cmd
}

// newStageBar builds an indeterminate spinner-style bar for staged workflows.
func newStageBar(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(100),
	)
}
