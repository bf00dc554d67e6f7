package config

import (
	"fmt"
	"sort"
	"strings"
)

// UnbufferedEnv keeps Python from block-buffering stdout when it is a pipe,
// so bot.log fills in real time.
const UnbufferedEnv = "PYTHONUNBUFFERED"

// LaunchIDEnv carries the id of the fsub invocation that created the session.
const LaunchIDEnv = "FSUB_LAUNCH_ID"

// SessionEnv returns the environment exported inside the session: the
// configured entries plus PYTHONUNBUFFERED=1, which cannot be overridden.
func SessionEnv(cfg *Config) map[string]string {
	return MergeEnv(cfg.Env, map[string]string{UnbufferedEnv: "1"})
}

// ExportPrefix builds an export statement prefix for shell commands.
// Returns a string like "export A=1 PYTHONUNBUFFERED=1 && ".
// The keys are sorted for deterministic output.
func ExportPrefix(env map[string]string) string {
	if len(env) == 0 {
		return ""
	}

	var parts []string
	for _, k := range sortedKeys(env) {
		parts = append(parts, fmt.Sprintf("%s=%s", k, ShellQuote(env[k])))
	}

	return "export " + strings.Join(parts, " ") + " && "
}

// MergeEnv merges multiple environment maps, with later maps taking precedence.
func MergeEnv(maps ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			result[k] = v
		}
	}
	return result
}

// ShellQuote quotes s for a POSIX shell. Plain words pass through unchanged.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	needsQuoting := false
	for _, c := range s {
		if !isPlainShellRune(c) {
			needsQuoting = true
			break
		}
	}
	if !needsQuoting {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isPlainShellRune(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_' || c == '.' || c == '/' || c == '-' || c == '+' || c == ':' || c == '@':
		return true
	}
	return false
}

func validEnvKey(k string) bool {
	if k == "" {
		return false
	}
	for i, c := range k {
		switch {
		case c == '_', c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func sortedKeys(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
