// Package launcher starts the bot's tmux session unless it is already running.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/fsubbot/fsub/internal/config"
	"github.com/fsubbot/fsub/internal/tmux"
)

// DefaultLockTimeout bounds how long a launch waits for a concurrent launch
// in the same work directory to finish.
const DefaultLockTimeout = 10 * time.Second

const lockRetryDelay = 100 * time.Millisecond

// Registry is the session manager the launcher queries and creates sessions in.
// *tmux.Tmux satisfies it.
type Registry interface {
	HasSession(name string) (bool, error)
	NewSessionWithCommand(name, workDir, command string, env ...string) error
}

var _ Registry = (*tmux.Tmux)(nil)

// Result describes what EnsureRunning found or did.
type Result struct {
	Session  string
	Started  bool // false: the session was already present
	WorkDir  string
	LogFile  string
	Command  string // empty when Started is false
	LaunchID string // empty when Started is false
}

// Launcher ensures the configured session exists.
type Launcher struct {
	cfg      *config.Config
	registry Registry

	// LockTimeout overrides DefaultLockTimeout when non-zero.
	LockTimeout time.Duration
	// Logger receives debug diagnostics; nil means slog.Default().
	Logger *slog.Logger
}

// New creates a Launcher for cfg backed by registry.
func New(cfg *config.Config, registry Registry) *Launcher {
	return &Launcher{cfg: cfg, registry: registry}
}

func (l *Launcher) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

// EnsureRunning creates the session if it does not exist. An existing session
// is never touched and needs no lock. Creation re-checks under an exclusive
// file lock so concurrent launches in the same directory create one session.
func (l *Launcher) EnsureRunning(ctx context.Context) (*Result, error) {
	name := l.cfg.Session
	res := &Result{
		Session: name,
		WorkDir: l.cfg.WorkDir,
		LogFile: l.cfg.LogPath(),
	}

	exists, err := l.checkSession(name)
	if err != nil {
		return nil, err
	}
	if exists {
		l.logger().Debug("session already present", "session", name)
		return res, nil
	}

	unlock, err := l.acquireLock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Another launch may have created it while we waited for the lock.
	exists, err = l.checkSession(name)
	if err != nil {
		return nil, err
	}
	if exists {
		l.logger().Debug("session created by concurrent launch", "session", name)
		return res, nil
	}

	command := BuildStartupCommand(l.cfg)
	launchID := uuid.NewString()
	l.logger().Debug("creating session", "session", name, "dir", l.cfg.WorkDir, "command", command, "launch_id", launchID)

	err = l.registry.NewSessionWithCommand(name, l.cfg.WorkDir, command, config.LaunchIDEnv+"="+launchID)
	if errors.Is(err, tmux.ErrSessionExists) {
		// Created by someone outside our lock between the check and now.
		l.logger().Debug("session appeared during launch", "session", name)
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("creating session %q: %w", name, err)
	}

	res.Started = true
	res.Command = command
	res.LaunchID = launchID
	return res, nil
}

func (l *Launcher) checkSession(name string) (bool, error) {
	exists, err := l.registry.HasSession(name)
	if err != nil {
		return false, fmt.Errorf("checking session %q: %w", name, err)
	}
	return exists, nil
}

func (l *Launcher) acquireLock(ctx context.Context) (func(), error) {
	timeout := l.LockTimeout
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	lockPath := l.cfg.LockPath()
	lock := flock.New(lockPath)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquiring launch lock %s: %w", lockPath, err)
	}
	if !locked {
		return nil, fmt.Errorf("another launch is in progress (lock held: %s)", lockPath)
	}
	return func() { _ = lock.Unlock() }, nil
}

// BuildStartupCommand returns the shell body run inside the session:
// activate the virtualenv, export the session environment, run the entry
// point and append its combined output to the log file.
//
//	. venv/bin/activate && export PYTHONUNBUFFERED=1 && python main.py 2>&1 | tee -a bot.log
//
// Paths stay relative to the work directory, which is the session's start directory.
func BuildStartupCommand(cfg *config.Config) string {
	var b strings.Builder

	activate := filepath.Join(cfg.Venv, "bin", "activate")
	b.WriteString(". ")
	b.WriteString(config.ShellQuote(activate))
	b.WriteString(" && ")

	b.WriteString(config.ExportPrefix(config.SessionEnv(cfg)))

	b.WriteString(config.ShellQuote(cfg.Python))
	b.WriteString(" ")
	b.WriteString(config.ShellQuote(cfg.Entry))
	for _, arg := range cfg.Args {
		b.WriteString(" ")
		b.WriteString(config.ShellQuote(arg))
	}

	b.WriteString(" 2>&1 | tee -a ")
	b.WriteString(config.ShellQuote(cfg.LogFile))
	return b.String()
}
