// Package config provides configuration loading and environment variable management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/fsubbot/fsub/internal/tmux"
)

// FileName is the optional config file looked up in the work directory.
const FileName = "fsub.toml"

// DirEnv overrides the work directory when --dir is not given.
const DirEnv = "FSUB_DIR"

// Defaults for the single managed session.
const (
	DefaultSession = "fsub"
	DefaultVenv    = "venv"
	DefaultPython  = "python"
	DefaultEntry   = "main.py"
	DefaultLogFile = "bot.log"
)

// Config describes the session fsub manages and the command it runs.
// Relative paths are relative to WorkDir.
type Config struct {
	// WorkDir is the resolved launch directory. Not read from the file.
	WorkDir string `toml:"-"`

	Session string            `toml:"session"`
	Venv    string            `toml:"venv"`
	Python  string            `toml:"python"`
	Entry   string            `toml:"entry"`
	Args    []string          `toml:"args"`
	LogFile string            `toml:"log_file"`
	Env     map[string]string `toml:"env"`
}

// Default returns the built-in configuration rooted at workDir.
func Default(workDir string) *Config {
	return &Config{
		WorkDir: workDir,
		Session: DefaultSession,
		Venv:    DefaultVenv,
		Python:  DefaultPython,
		Entry:   DefaultEntry,
		LogFile: DefaultLogFile,
	}
}

// Load returns the configuration for workDir. If path is empty, fsub.toml in
// workDir is used when present; an explicitly named file must exist.
func Load(workDir, path string) (*Config, error) {
	cfg := Default(workDir)

	explicit := path != ""
	if !explicit {
		path = filepath.Join(workDir, FileName)
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is operator-supplied
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.WorkDir = workDir
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// applyDefaults fills fields an explicit file left blank.
func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Session) == "" {
		c.Session = DefaultSession
	}
	if c.Venv == "" {
		c.Venv = DefaultVenv
	}
	if c.Python == "" {
		c.Python = DefaultPython
	}
	if c.Entry == "" {
		c.Entry = DefaultEntry
	}
	if c.LogFile == "" {
		c.LogFile = DefaultLogFile
	}
}

// Validate rejects configurations tmux or the shell cannot carry.
func (c *Config) Validate() error {
	if err := tmux.ValidateSessionName(c.Session); err != nil {
		return err
	}
	for k := range c.Env {
		if !validEnvKey(k) {
			return fmt.Errorf("invalid environment variable name %q", k)
		}
	}
	return nil
}

// LogPath returns the absolute path of the session's log file.
func (c *Config) LogPath() string {
	return c.resolve(c.LogFile)
}

// LockPath returns the path of the launch lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.WorkDir, ".fsub.lock")
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.WorkDir, p)
}

// ResolveWorkDir picks the launch directory: the explicit flag value, then
// $FSUB_DIR, then the directory holding the running executable.
func ResolveWorkDir(flagDir string) (string, error) {
	dir := flagDir
	if dir == "" {
		dir = os.Getenv(DirEnv)
	}
	if dir == "" {
		exe, err := os.Executable()
		if err != nil {
			return "", fmt.Errorf("locating executable: %w", err)
		}
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		dir = filepath.Dir(exe)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving work directory: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("work directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("work directory %q is not a directory", abs)
	}
	return abs, nil
}
