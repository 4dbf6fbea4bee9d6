package commands

import (
	"runtime"

	"github.com/spf13/cobra"
)

// Version information, set at build time with -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.printer.Line("tempmail version %s", Version)
			a.printer.Line("  Git commit: %s", GitCommit)
			a.printer.Line("  Build date: %s", BuildDate)
			a.printer.Line("  Go version: %s", runtime.Version())
			a.printer.Line("  OS/Arch:    %s/%s", runtime.GOOS, runtime.GOARCH)
		},
	}
}
