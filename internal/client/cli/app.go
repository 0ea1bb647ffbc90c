// Package cli implements the docvault command-line client: upload, list,
// view, share, open (shared link) and export commands built on cobra.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/docvault/internal/client/api"
	"github.com/dmitrijs2005/docvault/internal/client/config"
	"github.com/dmitrijs2005/docvault/internal/client/services"
	"github.com/dmitrijs2005/docvault/internal/flagx"
	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/dmitrijs2005/docvault/internal/normalize"
)

// App bundles the CLI's collaborators so commands stay thin.
type App struct {
	config  *config.Config
	logger  logging.Logger
	client  api.Client
	uploads *services.UploadService
	docs    *services.DocService
}

func NewApp(cfg *config.Config) *App {
	// CLI output goes to the terminal; diagnostics go to stderr as JSON so
	// they can be redirected away.
	sl := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	logger := logging.NewSlogLogger(sl)

	client := api.NewHTTPClient(cfg)
	pipeline := normalize.New(logger, normalize.DefaultOptions())

	return &App{
		config:  cfg,
		logger:  logger,
		client:  client,
		uploads: services.NewUploadService(client, pipeline, logger, cfg.UserID),
		docs:    services.NewDocService(client, logger, cfg.UserID),
	}
}

func (a *App) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "docvault",
		Short:         "Client-side encrypted document vault",
		Long:          "docvault normalizes, encrypts and stores documents; the server only ever sees ciphertext.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		a.uploadCmd(),
		a.listCmd(),
		a.viewCmd(),
		a.shareCmd(),
		a.openCmd(),
		a.exportCmd(),
		a.pingCmd(),
	)

	return root
}

// configFlags are the flags owned by the config package; they are stripped
// from the command line before cobra parses it.
var configFlags = []string{"-a", "-t", "-u", "-c", "-config"}

// Execute runs the CLI with the given context.
func (a *App) Execute(ctx context.Context) error {
	root := a.rootCmd()
	root.SetArgs(flagx.StripArgs(os.Args[1:], configFlags))
	return root.ExecuteContext(ctx)
}

func (a *App) pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check server reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Ping(cmd.Context()); err != nil {
				return err
			}
			cmd.Println("server is reachable")
			return nil
		},
	}
}

// writeOutput saves data to path, or to the writer when path is "-".
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "-" {
		_, err := w.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
