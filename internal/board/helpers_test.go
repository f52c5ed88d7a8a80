package board

import (
	"context"
	"fmt"
	"testing"
	"time"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// newTestState returns a state with a fixed clock and sequential ids.
func newTestState(t *testing.T) *State {
	t.Helper()
	n := 0
	return New(
		WithClock(func() time.Time { return testNow }),
		WithIDs(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
}

func mustCreate(t *testing.T, s *State, in TaskInput) string {
	t.Helper()
	if in.Date == "" {
		in.Date = "2025-03-10"
	}
	if in.CategoryID == "" {
		in.CategoryID = "cat"
	}
	task, err := s.CreateTask(in)
	if err != nil {
		t.Fatalf("creating task %q: %v", in.Name, err)
	}
	return task.ID
}

type memKV struct {
	data map[string][]byte
	puts int
}

func newMemKV() *memKV { return &memKV{data: make(map[string][]byte)} }

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	return m.data[key], nil
}

func (m *memKV) PutAll(_ context.Context, entries map[string][]byte) error {
	m.puts++
	for k, v := range entries {
		m.data[k] = v
	}
	return nil
}
