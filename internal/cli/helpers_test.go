package cli

import (
	"strings"
	"testing"

	"github.com/nhle/taskboard/internal/model"
)

func TestTransferFormat(t *testing.T) {
	tests := []struct {
		explicit, path, want string
	}{
		{"", "backup.json", "json"},
		{"", "Tasks.CSV", "csv"},
		{"", "report.xlsx", "xlsx"},
		{"CSV", "backup.json", "csv"},
		{"", "-", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := transferFormat(tt.explicit, tt.path); got != tt.want {
			t.Errorf("transferFormat(%q, %q) = %q, want %q", tt.explicit, tt.path, got, tt.want)
		}
	}
}

func TestMatchPrefix(t *testing.T) {
	tasks := []model.Task{
		{ID: "abc-111", Name: "first"},
		{ID: "abd-222", Name: "second"},
	}

	got, err := matchPrefix(tasks, "abc")
	if err != nil || got.Name != "first" {
		t.Fatalf("matchPrefix(abc) = %v, %v", got, err)
	}

	if _, err := matchPrefix(tasks, "ab"); err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("expected ambiguous error, got %v", err)
	}
	if _, err := matchPrefix(tasks, "zzz"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789"); got != "01234567" {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID = %q", got)
	}
}

func TestConfirmWithYesSkipsPrompt(t *testing.T) {
	ok, err := confirm("Delete?", "", true)
	if err != nil || !ok {
		t.Fatalf("confirm(yes) = %v, %v", ok, err)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"serve", "add", "list", "show", "done", "undo", "status", "edit", "delete",
		"archive", "category", "contact", "note", "comment", "import", "export", "report",
		"sweep", "board", "calendar", "notifications", "inbox", "config"}
	have := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("command %q not registered", name)
		}
	}
}
