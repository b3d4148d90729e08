package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false)

	log.Infof("[PS: %s] updating general information", "Admin")
	log.Warnf("policy finding: %s", "redundant action")
	log.Errorf("create failed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}

	checks := []struct {
		level, frag string
	}{
		{"INFO", "[PS: Admin] updating general information"},
		{"WARNING", "redundant action"},
		{"ERROR", "create failed"},
	}
	for i, c := range checks {
		if !strings.Contains(lines[i], c.level) {
			t.Errorf("line %d missing level %s: %s", i, c.level, lines[i])
		}
		if !strings.Contains(lines[i], c.frag) {
			t.Errorf("line %d missing message %q: %s", i, c.frag, lines[i])
		}
		if !strings.Contains(lines[i], "logger_test.go:") {
			t.Errorf("line %d missing caller file:line: %s", i, lines[i])
		}
	}
}

func TestAPICallOnlyInDebug(t *testing.T) {
	var quiet bytes.Buffer
	New(&quiet, false).APICall("ssoadmin", "CreatePermissionSet", 120*time.Millisecond, nil)
	if quiet.Len() != 0 {
		t.Errorf("APICall wrote output with debug disabled: %q", quiet.String())
	}

	var verbose bytes.Buffer
	log := New(&verbose, true)
	log.APICall("ssoadmin", "CreatePermissionSet", 120*time.Millisecond, nil)
	log.APICall("organizations", "ListAccounts", 5*time.Millisecond, errors.New("throttled"))

	out := verbose.String()
	if !strings.Contains(out, "ssoadmin.CreatePermissionSet 120ms success") {
		t.Errorf("missing success entry: %q", out)
	}
	if !strings.Contains(out, "organizations.ListAccounts 5ms error") {
		t.Errorf("missing error entry: %q", out)
	}
}
