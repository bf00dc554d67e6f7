// Package ui decides how fsub decorates its output. One policy covers the
// status lines on stdout and the diagnostic log on stderr.
package ui

import (
	"os"

	"golang.org/x/term"
)

// NoEmojiEnv disables emoji status prefixes when set to any value.
const NoEmojiEnv = "FSUB_NO_EMOJI"

// IsTerminal returns true if stdout is connected to a terminal (TTY).
func IsTerminal() bool {
	return IsTerminalFile(os.Stdout)
}

// IsTerminalFile reports whether f is a terminal.
func IsTerminalFile(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// ColorAllowed applies NO_COLOR (https://no-color.org/), CLICOLOR and
// CLICOLOR_FORCE to a stream whose terminal status is isTTY.
func ColorAllowed(isTTY bool) bool {
	// NO_COLOR takes precedence - any value disables color
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	if _, exists := os.LookupEnv("CLICOLOR_FORCE"); exists {
		return true
	}
	return isTTY
}

// ShouldUseColor reports whether status lines on stdout get ANSI color.
func ShouldUseColor() bool {
	return ColorAllowed(IsTerminal())
}

// ShouldUseEmoji determines if emoji decorations should be used.
// Disabled in non-TTY mode so "fsub status" output stays greppable.
func ShouldUseEmoji() bool {
	if _, exists := os.LookupEnv(NoEmojiEnv); exists {
		return false
	}
	return IsTerminal()
}
