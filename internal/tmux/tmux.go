// Package tmux provides a wrapper for tmux session operations via subprocess.
package tmux

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// Common errors
var (
	ErrNoServer           = errors.New("no tmux server running")
	ErrSessionExists      = errors.New("session already exists")
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidSessionName = errors.New("invalid session name")
)

// validSessionNameRe validates session names to prevent shell injection
var validSessionNameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateSessionName checks that a session name contains only safe characters.
// Dots and colons are rejected because tmux treats them as target separators.
func ValidateSessionName(name string) error {
	if name == "" || !validSessionNameRe.MatchString(name) {
		return fmt.Errorf("%w %q: must match %s", ErrInvalidSessionName, name, validSessionNameRe.String())
	}
	return nil
}

// Runner executes a tmux invocation and returns its stdout and stderr.
// The default runner shells out to the tmux binary; tests substitute a fake.
type Runner func(args ...string) (stdout, stderr string, err error)

// Tmux wraps tmux operations.
type Tmux struct {
	socketName string // tmux socket name (-L flag), empty = default socket
	runner     Runner
}

// NewTmux creates a Tmux wrapper on the user's default tmux server.
func NewTmux() *Tmux {
	return &Tmux{runner: execRunner}
}

// NewTmuxWithSocket creates a Tmux wrapper that targets a named socket.
// Tests use this to get an isolated server.
func NewTmuxWithSocket(socket string) *Tmux {
	return &Tmux{socketName: socket, runner: execRunner}
}

// WithRunner returns a copy of t that executes commands through r.
func (t *Tmux) WithRunner(r Runner) *Tmux {
	c := *t
	c.runner = r
	return &c
}

func execRunner(args ...string) (string, string, error) {
	cmd := exec.Command("tmux", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// globalArgs returns the flags that must precede every subcommand:
// -u for UTF-8 regardless of locale, and -L when a socket is set.
func (t *Tmux) globalArgs() []string {
	args := []string{"-u"}
	if t.socketName != "" {
		args = append(args, "-L", t.socketName)
	}
	return args
}

// run executes a tmux command and returns trimmed stdout.
func (t *Tmux) run(args ...string) (string, error) {
	allArgs := append(t.globalArgs(), args...)
	stdout, stderr, err := t.runner(allArgs...)
	if err != nil {
		return "", t.wrapError(err, stderr, args)
	}
	return strings.TrimSpace(stdout), nil
}

// wrapError wraps tmux errors with context.
func (t *Tmux) wrapError(err error, stderr string, args []string) error {
	stderr = strings.TrimSpace(stderr)

	// Detect specific error types
	if strings.Contains(stderr, "no server running") ||
		strings.Contains(stderr, "error connecting to") ||
		strings.Contains(stderr, "server exited unexpectedly") {
		return ErrNoServer
	}
	if strings.Contains(stderr, "duplicate session") {
		return ErrSessionExists
	}
	if strings.Contains(stderr, "session not found") ||
		strings.Contains(stderr, "can't find session") {
		return ErrSessionNotFound
	}

	if stderr != "" {
		return fmt.Errorf("tmux %s: %s", args[0], stderr)
	}
	return fmt.Errorf("tmux %s: %w", args[0], err)
}

// HasSession checks if a session exists (exact match).
// The "=" prefix prevents tmux from prefix-matching "fsub" against "fsub-old".
func (t *Tmux) HasSession(name string) (bool, error) {
	_, err := t.run("has-session", "-t", "="+name)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrNoServer) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// NewSessionWithCommand creates a new detached session whose initial process
// is command, started in workDir. Environment entries are passed with -e so
// they reach the pane without leaking into the tmux server.
func (t *Tmux) NewSessionWithCommand(name, workDir, command string, env ...string) error {
	if err := ValidateSessionName(name); err != nil {
		return err
	}
	if workDir != "" {
		info, err := os.Stat(workDir)
		if err != nil {
			return fmt.Errorf("invalid work directory %q: %w", workDir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("work directory %q is not a directory", workDir)
		}
	}

	args := []string{"new-session", "-d", "-s", name}
	if workDir != "" {
		args = append(args, "-c", workDir)
	}
	for _, kv := range env {
		args = append(args, "-e", kv)
	}
	if command != "" {
		args = append(args, command)
	}
	_, err := t.run(args...)
	return err
}

// SessionInfo contains information about a session.
type SessionInfo struct {
	Name     string
	Windows  int
	Created  string
	Attached bool
	Activity string
}

// GetSessionInfo returns detailed information about a session.
func (t *Tmux) GetSessionInfo(name string) (*SessionInfo, error) {
	format := "#{session_name}|#{session_windows}|#{session_created}|#{session_attached}|#{session_activity}"
	out, err := t.run("list-sessions", "-F", format, "-f", fmt.Sprintf("#{==:#{session_name},%s}", name))
	if err != nil {
		if errors.Is(err, ErrNoServer) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if out == "" {
		return nil, ErrSessionNotFound
	}
	return parseSessionInfo(out)
}

func parseSessionInfo(line string) (*SessionInfo, error) {
	parts := strings.Split(line, "|")
	if len(parts) < 4 {
		return nil, fmt.Errorf("unexpected session info format: %s", line)
	}

	windows := 0
	_, _ = fmt.Sscanf(parts[1], "%d", &windows) // non-fatal: defaults to 0 on parse error

	info := &SessionInfo{
		Name:     parts[0],
		Windows:  windows,
		Created:  formatUnix(parts[2]),
		Attached: parts[3] != "" && parts[3] != "0",
	}
	if len(parts) > 4 {
		info.Activity = formatUnix(parts[4])
	}
	return info, nil
}

// formatUnix converts a tmux unix timestamp into local time; other values pass through.
func formatUnix(s string) string {
	var ts int64
	if _, err := fmt.Sscanf(s, "%d", &ts); err == nil && ts > 0 {
		return time.Unix(ts, 0).Format("2006-01-02 15:04:05")
	}
	return s
}

// AttachCommand returns the argv that attaches a terminal to the session.
func (t *Tmux) AttachCommand(name string) []string {
	return append(append([]string{"tmux"}, t.globalArgs()...), "attach-session", "-t", "="+name)
}

// AttachSession attaches to an existing session.
// Note: This replaces the current process with tmux attach.
func (t *Tmux) AttachSession(name string) error {
	if err := ValidateSessionName(name); err != nil {
		return err
	}
	bin, err := exec.LookPath("tmux")
	if err != nil {
		return fmt.Errorf("tmux not found: %w", err)
	}
	return unix.Exec(bin, t.AttachCommand(name), os.Environ())
}
