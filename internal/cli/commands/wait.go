package commands

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	tempmail "github.com/tempmail-go/client-go"
)

func newWaitCmd(a *app) *cobra.Command {
	var (
		sessions []string
		timeout  time.Duration
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Wait for a new message",
		Long: `Wait until a new message arrives in one or more mailboxes.

Only messages arriving after the wait starts are reported. With several
sessions, every mailbox is watched concurrently and each one reports its
own result. Exits with status 2 when nothing arrives in time.

Examples:
  # Wait on the current mailbox for up to two minutes
  tempmail wait --timeout 2m

  # Wait on two saved sessions at once
  tempmail wait --session alice.json --session bob.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("timeout") {
				a.cfg.Timeout = timeout
			}
			if cmd.Flags().Changed("interval") {
				a.cfg.CheckInterval = interval
			}
			if len(sessions) == 0 {
				sessions = []string{a.cfg.SessionFile}
			}

			clients := make([]*tempmail.Client, 0, len(sessions))
			for _, path := range sessions {
				client, err := a.loadSession(path)
				if err != nil {
					return err
				}
				clients = append(clients, client)
			}

			for _, client := range clients {
				a.printer.Waiting("Waiting up to %v for mail to %s", a.cfg.Timeout, client.EmailAddress())
			}

			results, err := tempmail.NewMonitor(clients...).WaitAll(cmd.Context(),
				tempmail.WithCheckInterval(a.cfg.CheckInterval),
			)
			for _, r := range results {
				a.report(r)
			}
			if err == nil {
				return nil
			}
			// A failure outranks a timeout when choosing the exit code.
			for _, r := range results {
				if r.Err != nil && !errors.Is(r.Err, tempmail.ErrWaitTimeout) {
					return &errReported{err: r.Err}
				}
			}
			return &errReported{err: err}
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&sessions, "session", nil, "session file to wait on (repeatable)")
	flags.DurationVarP(&timeout, "timeout", "t", 0, "how long to wait (default from config, 60s)")
	flags.DurationVarP(&interval, "interval", "i", 0, "time between polls (default from config, 1s)")
	return cmd
}

func (a *app) report(r tempmail.MonitorResult) {
	address := r.Client.EmailAddress()
	var timeoutErr *tempmail.WaitTimeoutError
	switch {
	case r.Err == nil:
		a.printer.PrintMessage(address, r.Message)
	case errors.As(r.Err, &timeoutErr):
		a.printer.Timeout("No new messages for %s within %v", address, timeoutErr.Timeout)
	default:
		a.printer.Error("%s: %v", address, r.Err)
	}
}

