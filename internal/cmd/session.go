package cmd

import (
	"github.com/fsubbot/fsub/internal/config"
	"github.com/fsubbot/fsub/internal/tmux"
)

// sessionRegistry is the subset of tmux the commands use. Tests replace
// newRegistry to avoid a real tmux server.
type sessionRegistry interface {
	HasSession(name string) (bool, error)
	NewSessionWithCommand(name, workDir, command string, env ...string) error
	GetSessionInfo(name string) (*tmux.SessionInfo, error)
	AttachSession(name string) error
	AttachCommand(name string) []string
}

var newRegistry = func(socket string) sessionRegistry {
	if socket != "" {
		return tmux.NewTmuxWithSocket(socket)
	}
	return tmux.NewTmux()
}

// loadConfig resolves the work directory and reads its configuration.
func loadConfig() (*config.Config, error) {
	dir, err := config.ResolveWorkDir(flagDir)
	if err != nil {
		return nil, err
	}
	return config.Load(dir, flagConfig)
}
