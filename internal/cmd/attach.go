package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
)

var attachCmd = &cobra.Command{
	Use:     "attach",
	Aliases: []string{"at"},
	Short:   "Attach this terminal to the running bot session",
	Long: `Attach this terminal to the running bot session.

Replaces the fsub process with 'tmux attach-session'. Detach again with
Ctrl-b d; the bot keeps running. Fails if the session does not exist.`,
	Args: cobra.NoArgs,
	RunE: runAttach,
}

func init() {
	rootCmd.AddCommand(attachCmd)
}

func runAttach(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reg := newRegistry(flagSocket)
	exists, err := reg.HasSession(cfg.Session)
	if err != nil {
		return fmt.Errorf("checking session %q: %w", cfg.Session, err)
	}
	if !exists {
		return fmt.Errorf("session %q is not running (start it with 'fsub')", cfg.Session)
	}

	slog.Debug("attaching", "argv", strings.Join(reg.AttachCommand(cfg.Session), " "))
	return reg.AttachSession(cfg.Session)
}
