package style

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestFprintWarning(t *testing.T) {
	var buf bytes.Buffer
	FprintWarning(&buf, "log %s missing", "bot.log")

	got := buf.String()
	if !strings.HasSuffix(got, " log bot.log missing\n") {
		t.Errorf("FprintWarning = %q", got)
	}
	if !strings.HasPrefix(got, WarningPrefix) {
		t.Errorf("FprintWarning missing prefix: %q", got)
	}
}

func TestPrefixesDistinct(t *testing.T) {
	prefixes := []string{SuccessPrefix, WarningPrefix, ErrorPrefix, InfoPrefix}
	seen := make(map[string]bool)
	for _, p := range prefixes {
		if p == "" {
			t.Error("empty prefix")
		}
		if seen[p] {
			t.Errorf("duplicate prefix %q", p)
		}
		seen[p] = true
	}
}

func TestFprintError(t *testing.T) {
	var buf bytes.Buffer
	FprintError(&buf, errors.New("checking session \"fsub\": boom"))

	got := buf.String()
	if !strings.HasPrefix(got, ErrorPrefix+" ") {
		t.Errorf("FprintError missing prefix: %q", got)
	}
	if !strings.Contains(got, "Error:") || !strings.HasSuffix(got, `checking session "fsub": boom`+"\n") {
		t.Errorf("FprintError = %q", got)
	}
}
