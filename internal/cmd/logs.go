package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fsubbot/fsub/internal/logtail"
	"github.com/fsubbot/fsub/internal/style"
)

var (
	logsLines  int
	logsFollow bool
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the bot's log output",
	Long: `Show the last lines of the log file the session appends to (bot.log
by default). With --follow, keep printing new output until interrupted.

Examples:
  fsub logs            # last 50 lines
  fsub logs -n 200     # last 200 lines
  fsub logs -f         # follow, like tail -f`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 50, "Number of lines to show")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow appended output")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := cfg.LogPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		style.FprintWarning(cmd.ErrOrStderr(), "%s does not exist yet (start the session with 'fsub')", path)
	}

	lines, size, err := logtail.Tail(path, logsLines)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}

	if !logsFollow {
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return logtail.Follow(ctx, path, size, out)
}
