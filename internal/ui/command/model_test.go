package command

import (
	"reflect"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want Command
		ok   bool
	}{
		{"", Command{}, false},
		{"   ", Command{}, false},
		{"sweep", Command{Name: "sweep", Args: []string{}}, true},
		{"Filter status done", Command{Name: "filter", Args: []string{"status", "done"}}, true},
		{"s priority", Command{Name: "sort", Args: []string{"priority"}}, true},
		{"q", Command{Name: "quit", Args: []string{}}, true},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.line)
		if ok != tt.ok {
			t.Errorf("Parse(%q) ok = %v, want %v", tt.line, ok, tt.ok)
			continue
		}
		if ok && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.line, got, tt.want)
		}
	}
}

func TestCommandArgs(t *testing.T) {
	c := Command{Name: "note", Args: []string{"call", "the", "bank"}}
	if c.Arg(0) != "call" || c.Arg(5) != "" {
		t.Errorf("Arg misbehaves: %q %q", c.Arg(0), c.Arg(5))
	}
	if c.Rest(1) != "the bank" || c.Rest(3) != "" {
		t.Errorf("Rest misbehaves: %q %q", c.Rest(1), c.Rest(3))
	}
}

func TestEscCancels(t *testing.T) {
	m := New(80, 24)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc returned no command")
	}
	if _, ok := cmd().(CancelMsg); !ok {
		t.Errorf("esc produced %T, want CancelMsg", cmd())
	}
}

func TestEnterEmitsCommand(t *testing.T) {
	m := New(80, 24)
	for _, r := range "sort name" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg, ok := cmd().(CommandMsg)
	if !ok {
		t.Fatalf("enter produced %T, want CommandMsg", cmd())
	}
	if msg.Name != "sort" || Command(msg).Arg(0) != "name" {
		t.Errorf("got %+v", msg)
	}
}
