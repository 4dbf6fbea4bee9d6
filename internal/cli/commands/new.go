package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newNewCmd(a *app) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Generate a new disposable mailbox",
		Long: `Generate a new disposable mailbox and save it to the session file.

Examples:
  # Generate a mailbox
  tempmail new

  # Print only the address, for scripts
  ADDR=$(tempmail new -q)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient()
			if err != nil {
				return err
			}

			address, err := client.GenerateEmail(cmd.Context())
			if err != nil {
				return err
			}

			if err := client.ExportToFile(a.cfg.SessionFile); err != nil {
				return fmt.Errorf("save session: %w", err)
			}

			if quiet {
				a.printer.Line("%s", address)
				return nil
			}
			a.printer.Success("Mailbox ready: %s", address)
			a.printer.Line("   Session saved to %s", a.cfg.SessionFile)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the address")
	return cmd
}
