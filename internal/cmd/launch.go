package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/fsubbot/fsub/internal/launcher"
	"github.com/fsubbot/fsub/internal/style"
)

func runLaunch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	l := launcher.New(cfg, newRegistry(flagSocket))
	l.Logger = slog.Default().With("session", cfg.Session)

	res, err := l.EnsureRunning(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if res.Started {
		fmt.Fprintf(out, "%s Started session %s\n", style.SuccessPrefix, style.Bold.Render(fmt.Sprintf("%q", res.Session)))
	} else {
		fmt.Fprintf(out, "%s Session %s is already running\n", style.InfoPrefix, style.Bold.Render(fmt.Sprintf("%q", res.Session)))
	}
	printInstructions(out, res.Session, res.LogFile)
	return nil
}

// printInstructions tells the operator how to reach and stop the session.
func printInstructions(w io.Writer, session, logFile string) {
	fmt.Fprintf(w, "  Attach: %s\n", style.Command.Render(tmuxHint("attach -t "+session)))
	fmt.Fprintf(w, "  Detach: %s\n", style.Dim.Render("Ctrl-b d"))
	fmt.Fprintf(w, "  Stop:   %s\n", style.Command.Render(tmuxHint("kill-session -t "+session)))
	fmt.Fprintf(w, "  Logs:   %s\n", style.Command.Render("tail -f "+logFile))
}

func tmuxHint(sub string) string {
	if flagSocket != "" {
		return "tmux -L " + flagSocket + " " + sub
	}
	return "tmux " + sub
}
