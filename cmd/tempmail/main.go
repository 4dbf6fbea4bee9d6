// Command tempmail provisions disposable mailboxes and waits for mail.
package main

import (
	"os"

	"github.com/tempmail-go/client-go/internal/cli/commands"
)

func main() {
	os.Exit(commands.Execute())
}
