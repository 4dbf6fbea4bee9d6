package commands

import (
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List messages of the current mailbox",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.loadSession(a.cfg.SessionFile)
			if err != nil {
				return err
			}

			messages, err := client.GetMessages(cmd.Context())
			if err != nil {
				return err
			}

			a.printer.PrintMessageList(client.EmailAddress(), messages)
			return nil
		},
	}
}
