package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"DEBUG": DEBUG, "debug": DEBUG, "warn": WARN, "WARNING": WARN,
		"ERROR": ERROR, "INFO": INFO, "": INFO, "verbose": INFO,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(WARN, &buf)

	l.Info("hidden")
	l.Warn("shown", F("task", "t1"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("INFO record emitted at WARN level: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "task=t1") {
		t.Errorf("missing WARN record or field: %s", out)
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(DEBUG, &buf).WithFields(F("sweep", "reminders"))
	l.Debug("ran", F("fired", 2))

	out := buf.String()
	if !strings.Contains(out, "sweep=reminders") || !strings.Contains(out, "fired=2") {
		t.Errorf("output = %s", out)
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	l, err := New(Config{Level: INFO, FilePath: path, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("written to disk")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(data), "written to disk") {
		t.Errorf("log file = %s", data)
	}
}

func TestGlobalDefaultsToNop(t *testing.T) {
	Info("no panic before Init")
	var buf bytes.Buffer
	SetGlobal(NewWriter(INFO, &buf))
	defer SetGlobal(Nop())

	Info("global", F("k", "v"))
	if !strings.Contains(buf.String(), "k=v") {
		t.Errorf("global output = %s", buf.String())
	}
}
