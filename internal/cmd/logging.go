package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/fsubbot/fsub/internal/ui"
)

// setupLogging installs the default slog logger before any command runs.
// Diagnostics go to stderr so stdout stays the status lines only.
func setupLogging(cmd *cobra.Command, args []string) error {
	level, err := parseLevel(flagLogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(newLogger(os.Stderr, level))
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid --log-level %q (want debug, info, warn or error)", s)
}

// newLogger returns a tint-formatted logger writing to w. Color follows the
// same NO_COLOR/CLICOLOR policy as the status lines, judged for w itself.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	isTTY := false
	if f, ok := w.(*os.File); ok {
		isTTY = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		w = colorable.NewColorable(f)
	}
	noColor := !ui.ColorAllowed(isTTY)
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    noColor,
	}))
}
