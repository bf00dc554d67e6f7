// fsub starts the bot in a background tmux session, or reports the running one.
package main

import (
	"os"

	"github.com/fsubbot/fsub/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
