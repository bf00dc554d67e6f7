// Package style provides consistent terminal styling using Lipgloss.
package style

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/fsubbot/fsub/internal/ui"
)

var (
	// Success style for positive outcomes
	Success = lipgloss.NewStyle().Foreground(lipgloss.Color("76")).Bold(true)

	// Warning style for cautionary messages
	Warning = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)

	// Error style for failures
	Error = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	// Info style for informational messages
	Info = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	// Dim style for secondary information
	Dim = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))

	// Bold style for emphasis
	Bold = lipgloss.NewStyle().Bold(true)

	// Command style for copy-pasteable shell commands
	Command = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// Status prefixes, rendered once the color profile is fixed.
// Emoji are dropped when stdout is not a terminal.
var (
	SuccessPrefix string
	WarningPrefix string
	ErrorPrefix   string
	InfoPrefix    string
)

func init() {
	if !ui.ShouldUseColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	SuccessPrefix = prefix(Success, "✓", "ok")
	WarningPrefix = prefix(Warning, "⚠", "!")
	ErrorPrefix = prefix(Error, "✗", "x")
	InfoPrefix = prefix(Info, "●", "*")
}

func prefix(s lipgloss.Style, symbol, plain string) string {
	if ui.ShouldUseEmoji() {
		return s.Render(symbol)
	}
	return s.Render(plain)
}

// FprintWarning prints a warning line to w.
func FprintWarning(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", WarningPrefix, fmt.Sprintf(format, args...))
}

// FprintError prints an error line to w.
func FprintError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %s\n", ErrorPrefix, Error.Render("Error:")+" "+err.Error())
}
