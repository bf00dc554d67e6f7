package cmd

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsubbot/fsub/internal/tmux"
)

// fakeRegistry stands in for tmux in command tests.
type fakeRegistry struct {
	mu       sync.Mutex
	sessions map[string]string
	creates  int
	attached []string
	hasErr   error
}

func newFakeRegistry(existing ...string) *fakeRegistry {
	r := &fakeRegistry{sessions: make(map[string]string)}
	for _, s := range existing {
		r.sessions[s] = "bash"
	}
	return r
}

func (r *fakeRegistry) HasSession(name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hasErr != nil {
		return false, r.hasErr
	}
	_, ok := r.sessions[name]
	return ok, nil
}

func (r *fakeRegistry) NewSessionWithCommand(name, workDir, command string, env ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[name]; ok {
		return tmux.ErrSessionExists
	}
	r.sessions[name] = command
	r.creates++
	return nil
}

func (r *fakeRegistry) GetSessionInfo(name string) (*tmux.SessionInfo, error) {
	if r.hasErr != nil {
		return nil, r.hasErr
	}
	ok, _ := r.HasSession(name)
	if !ok {
		return nil, tmux.ErrSessionNotFound
	}
	return &tmux.SessionInfo{Name: name, Windows: 1, Created: "2026-01-02 03:04:05"}, nil
}

func (r *fakeRegistry) AttachSession(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attached = append(r.attached, name)
	return nil
}

func (r *fakeRegistry) AttachCommand(name string) []string {
	return []string{"tmux", "attach-session", "-t", "=" + name}
}

// runCLI executes the root command against reg in dir and returns stdout and the exit code.
func runCLI(t *testing.T, reg *fakeRegistry, dir string, args ...string) (string, int) {
	t.Helper()
	out, _, code := runCLIWithStderr(t, reg, dir, args...)
	return out, code
}

func runCLIWithStderr(t *testing.T, reg *fakeRegistry, dir string, args ...string) (string, string, int) {
	t.Helper()

	oldRegistry := newRegistry
	newRegistry = func(string) sessionRegistry { return reg }
	t.Cleanup(func() { newRegistry = oldRegistry })

	flagDir, flagConfig, flagSocket, flagLogLevel = "", "", "", "warn"
	logsLines, logsFollow = 50, false

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--dir", dir}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	code := Execute()
	return out.String(), errOut.String(), code
}

func TestLaunch_StartsAbsentSession(t *testing.T) {
	dir := t.TempDir()
	reg := newFakeRegistry()

	out, code := runCLI(t, reg, dir)

	assert.Equal(t, 0, code)
	assert.Equal(t, 1, reg.creates)
	assert.Contains(t, out, `Started session "fsub"`)
	assert.Contains(t, out, "tmux attach -t fsub")
	assert.Contains(t, out, "tmux kill-session -t fsub")
	assert.Contains(t, out, filepath.Join(dir, "bot.log"))

	cmd := reg.sessions["fsub"]
	assert.Contains(t, cmd, ". venv/bin/activate")
	assert.Contains(t, cmd, "PYTHONUNBUFFERED=1")
	assert.Contains(t, cmd, "python main.py 2>&1 | tee -a bot.log")
}

func TestLaunch_PresentSessionIsNoOp(t *testing.T) {
	dir := t.TempDir()
	reg := newFakeRegistry("fsub")

	out, code := runCLI(t, reg, dir)

	assert.Equal(t, 0, code)
	assert.Zero(t, reg.creates)
	assert.Equal(t, "bash", reg.sessions["fsub"])
	assert.Contains(t, out, `Session "fsub" is already running`)
	assert.Contains(t, out, "tmux attach -t fsub")
	assert.Contains(t, out, "tmux kill-session -t fsub")
}

func TestLaunch_TwiceCreatesOnce(t *testing.T) {
	dir := t.TempDir()
	reg := newFakeRegistry()

	_, code1 := runCLI(t, reg, dir)
	_, code2 := runCLI(t, reg, dir)

	assert.Equal(t, 0, code1)
	assert.Equal(t, 0, code2)
	assert.Equal(t, 1, reg.creates)
	assert.Len(t, reg.sessions, 1)
}

func TestLaunch_QueryFailureAborts(t *testing.T) {
	dir := t.TempDir()
	reg := newFakeRegistry()
	reg.hasErr = errors.New("tmux has-session: exec: \"tmux\": executable file not found in $PATH")

	out, errOut, code := runCLIWithStderr(t, reg, dir)

	assert.NotEqual(t, 0, code)
	assert.Empty(t, out, "no status lines on failure")
	assert.Contains(t, errOut, "Error:")
	assert.Contains(t, errOut, "executable file not found")
	assert.Zero(t, reg.creates)
}

func TestLaunch_RejectsArguments(t *testing.T) {
	reg := newFakeRegistry()

	_, code := runCLI(t, reg, t.TempDir(), "bogus")

	assert.NotEqual(t, 0, code)
	assert.Zero(t, reg.creates)
}

func TestLaunch_ConfigOverridesSession(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fsub.toml"), []byte(`session = "fsub-dev"`+"\n"), 0644))
	reg := newFakeRegistry("fsub")

	out, code := runCLI(t, reg, dir)

	assert.Equal(t, 0, code)
	assert.Equal(t, 1, reg.creates)
	assert.Contains(t, reg.sessions, "fsub-dev")
	assert.Contains(t, out, "tmux attach -t fsub-dev")
}

func TestStatus_Running(t *testing.T) {
	reg := newFakeRegistry("fsub")

	out, code := runCLI(t, reg, t.TempDir(), "status")

	assert.Equal(t, 0, code)
	assert.Contains(t, out, `Session "fsub" is running`)
	assert.Contains(t, out, "Windows:  1")
	assert.Contains(t, out, "not created yet")
	assert.Zero(t, reg.creates)
}

func TestStatus_NotRunning(t *testing.T) {
	reg := newFakeRegistry()

	out, errOut, code := runCLIWithStderr(t, reg, t.TempDir(), "status")

	assert.Equal(t, 1, code)
	assert.Empty(t, errOut, "status reports absence through the exit code only")
	assert.Contains(t, out, `Session "fsub" is not running`)
	assert.Zero(t, reg.creates, "status must not start the session")
}

func TestAttach(t *testing.T) {
	reg := newFakeRegistry("fsub")
	_, code := runCLI(t, reg, t.TempDir(), "attach")
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"fsub"}, reg.attached)

	reg = newFakeRegistry()
	_, code = runCLI(t, reg, t.TempDir(), "attach")
	assert.Equal(t, 1, code)
	assert.Empty(t, reg.attached)
}

func TestLogs_PrintsTail(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bot.log"), []byte("a\nb\nc\n"), 0644))

	out, code := runCLI(t, newFakeRegistry(), dir, "logs", "-n", "2")

	assert.Equal(t, 0, code)
	assert.Equal(t, "b\nc\n", out)
}

func TestLogs_MissingFileWarns(t *testing.T) {
	dir := t.TempDir()

	out, errOut, code := runCLIWithStderr(t, newFakeRegistry(), dir, "logs")

	assert.Equal(t, 0, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, filepath.Join(dir, "bot.log")+" does not exist yet")
}

func TestVersion(t *testing.T) {
	out, code := runCLI(t, newFakeRegistry(), t.TempDir(), "version")
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(out, "fsub "), out)
}

func TestSilentExit(t *testing.T) {
	code, ok := IsSilentExit(NewSilentExit(3))
	assert.True(t, ok)
	assert.Equal(t, 3, code)

	_, ok = IsSilentExit(errors.New("boom"))
	assert.False(t, ok)
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"debug", "info", "warn", "error", ""} {
		_, err := parseLevel(s)
		assert.NoError(t, err, s)
	}
	_, err := parseLevel("loud")
	assert.Error(t, err)
}

func TestNewLogger_SharesColorPolicy(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	os.Unsetenv("NO_COLOR")

	var plain bytes.Buffer
	newLogger(&plain, slog.LevelInfo).Info("hello")
	assert.NotContains(t, plain.String(), "\x1b[", "non-terminal writer gets no color")

	t.Setenv("CLICOLOR_FORCE", "1")
	var forced bytes.Buffer
	newLogger(&forced, slog.LevelInfo).Info("hello")
	assert.Contains(t, forced.String(), "\x1b[", "CLICOLOR_FORCE applies to the log too")
}
