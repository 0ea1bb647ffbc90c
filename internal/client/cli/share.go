package cli

import (
	"github.com/spf13/cobra"
)

func (a *App) shareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "share <document-id>",
		Short: "Create an anonymous share link with a PIN",
		Long: "Creates a share link for one of your documents. " +
			"The PIN is printed once and never stored; send it over a different channel than the link.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			grant, err := a.docs.Share(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			cmd.Printf("link:    %s\n", grant.URL)
			cmd.Printf("token:   %s\n", grant.Token)
			cmd.Printf("pin:     %s\n", grant.PIN)
			cmd.Printf("expires: %s\n", grant.ExpiresAt.Format("2006-01-02 15:04 MST"))
			return nil
		},
	}
}
