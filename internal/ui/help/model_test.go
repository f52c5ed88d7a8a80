package help

import (
	"strings"
	"testing"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/ui/command"
)

func TestContentListsCommandsAndLegend(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 120, 60)
	out := m.content()
	for _, s := range command.Specs {
		if !strings.Contains(out, s.Usage) {
			t.Errorf("help misses command %q", s.Usage)
		}
	}
	for _, want := range []string{"Keyboard shortcuts", "Legend", "Terminé", "Urgente"} {
		if !strings.Contains(out, want) {
			t.Errorf("help misses %q", want)
		}
	}
}

func TestSetSizeTinyTerminal(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 3, 2)
	_ = m.View()
}
