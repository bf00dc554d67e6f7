package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fsubbot/fsub/internal/style"
	"github.com/fsubbot/fsub/internal/tmux"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the bot session is running",
	Long: `Show whether the bot session is running, without starting it.

Exit status is 0 when the session exists and 1 when it does not,
so scripts can use 'fsub status >/dev/null'.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	info, err := newRegistry(flagSocket).GetSessionInfo(cfg.Session)
	if errors.Is(err, tmux.ErrSessionNotFound) {
		fmt.Fprintf(out, "%s Session %s is not running\n", style.WarningPrefix, style.Bold.Render(fmt.Sprintf("%q", cfg.Session)))
		fmt.Fprintf(out, "  Start:  %s\n", style.Command.Render("fsub"))
		return NewSilentExit(1)
	}
	if err != nil {
		return fmt.Errorf("checking session %q: %w", cfg.Session, err)
	}

	attached := "no"
	if info.Attached {
		attached = "yes"
	}
	fmt.Fprintf(out, "%s Session %s is running\n", style.SuccessPrefix, style.Bold.Render(fmt.Sprintf("%q", info.Name)))
	fmt.Fprintf(out, "  Created:  %s\n", info.Created)
	if info.Activity != "" {
		fmt.Fprintf(out, "  Activity: %s\n", info.Activity)
	}
	fmt.Fprintf(out, "  Windows:  %d\n", info.Windows)
	fmt.Fprintf(out, "  Attached: %s\n", attached)
	fmt.Fprintf(out, "  Dir:      %s\n", cfg.WorkDir)
	logFile := cfg.LogPath()
	if _, err := os.Stat(logFile); err != nil {
		logFile += style.Dim.Render(" (not created yet)")
	}
	fmt.Fprintf(out, "  Log:      %s\n", logFile)
	fmt.Fprintln(out)
	printInstructions(out, info.Name, cfg.LogPath())
	return nil
}
