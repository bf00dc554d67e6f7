// Package cmd provides CLI commands for the fsub tool.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fsubbot/fsub/internal/style"
)

var (
	flagDir      string
	flagConfig   string
	flagSocket   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:     "fsub",
	Short:   "Start the fsub bot in a background tmux session",
	Version: Version,
	Long: `fsub keeps the bot running in a detached tmux session named "fsub".

Run without arguments to start the session, or to see how to reach it
if it is already running. An existing session is never restarted.

The session runs from the directory holding the fsub binary (override
with --dir or $FSUB_DIR): it activates venv/, sets PYTHONUNBUFFERED=1,
runs main.py and appends all output to bot.log.`,
	Args:              unknownSubcommand,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
	RunE:              runLaunch,
}

// Execute runs the root command and returns an exit code.
// The caller (main) should call os.Exit with this code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		// Check for silent exit (scripting commands that signal status via exit code)
		if code, ok := IsSilentExit(err); ok {
			return code
		}
		style.FprintError(rootCmd.ErrOrStderr(), err)
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "Work directory holding venv/, main.py and bot.log (default: binary's directory, or $FSUB_DIR)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: fsub.toml in the work directory, if present)")
	rootCmd.PersistentFlags().StringVarP(&flagSocket, "socket", "L", "", "tmux socket name (default: the user's tmux server)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Diagnostic log level: debug, info, warn, error")
}

// buildCommandPath walks the command hierarchy to build the full command path.
// For example: "fsub logs".
func buildCommandPath(cmd *cobra.Command) string {
	var parts []string
	for c := cmd; c != nil; c = c.Parent() {
		parts = append([]string{c.Name()}, parts...)
	}
	return strings.Join(parts, " ")
}

// unknownSubcommand rejects stray arguments with a pointer to help instead
// of cobra's bare "unknown command".
func unknownSubcommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	return fmt.Errorf("unknown command %q for %q\n\nRun '%s --help' for available commands",
		args[0], buildCommandPath(cmd), buildCommandPath(cmd))
}
