package sweep

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nhle/taskboard/internal/logger"
	"github.com/nhle/taskboard/internal/model"
)

type fakeRunner struct {
	mu       sync.Mutex
	calls    []Kind
	archive  error
	block    chan struct{}
	started  chan struct{}
}

func (f *fakeRunner) record(k Kind) {
	f.mu.Lock()
	f.calls = append(f.calls, k)
	f.mu.Unlock()
}

func (f *fakeRunner) CheckReminders(context.Context) ([]model.Notification, error) {
	f.record(KindReminders)
	if f.block != nil {
		close(f.started)
		<-f.block
	}
	return []model.Notification{{TaskID: "t"}}, nil
}

func (f *fakeRunner) GenerateRecurring(context.Context) ([]model.Task, error) {
	f.record(KindRecurrence)
	return nil, nil
}

func (f *fakeRunner) AutoArchive(context.Context) ([]string, error) {
	f.record(KindArchive)
	return nil, f.archive
}

func TestRunAllOrderAndStatus(t *testing.T) {
	r := &fakeRunner{archive: errors.New("disk full")}
	s := New(r, model.ScheduleConfig{}, logger.Nop())

	results := s.RunAll(context.Background())
	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	want := []Kind{KindRecurrence, KindReminders, KindArchive}
	for i, k := range want {
		if r.calls[i] != k {
			t.Errorf("call %d = %s, want %s", i, r.calls[i], k)
		}
	}
	if !results[1].Changed() || results[0].Changed() {
		t.Errorf("changed flags wrong: %+v", results)
	}

	statuses := s.Statuses()
	if statuses[2].State != StateError || statuses[2].Err == nil {
		t.Errorf("archive status = %+v", statuses[2])
	}
	if statuses[0].State != StateIdle || statuses[0].LastRun.IsZero() {
		t.Errorf("recurrence status = %+v", statuses[0])
	}

	got := <-s.Results()
	if got.Kind != KindRecurrence {
		t.Errorf("first published result = %s", got.Kind)
	}
}

func TestRunDoesNotOverlap(t *testing.T) {
	r := &fakeRunner{block: make(chan struct{}), started: make(chan struct{})}
	s := New(r, model.ScheduleConfig{}, logger.Nop())

	done := make(chan Result)
	go func() { done <- s.Run(context.Background(), KindReminders) }()
	<-r.started

	if res := s.Run(context.Background(), KindReminders); !res.Skipped {
		t.Errorf("overlapping run not skipped: %+v", res)
	}
	close(r.block)
	if res := <-done; res.Skipped || len(res.Reminders) != 1 {
		t.Errorf("first run = %+v", res)
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := New(&fakeRunner{}, model.ScheduleConfig{Reminders: "every now and then"}, logger.Nop())
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
	if n := len(s.cron.Entries()); n != 0 {
		t.Errorf("failed Start left %d cron entries", n)
	}
}

func TestRestartSchedulesEachSweepOnce(t *testing.T) {
	s := New(&fakeRunner{}, model.ScheduleConfig{Reminders: "@every 1h"}, logger.Nop())
	for i := 0; i < 2; i++ {
		if err := s.Start(context.Background()); err != nil {
			t.Fatalf("Start #%d: %v", i+1, err)
		}
		s.Stop()
	}
	if n := len(s.cron.Entries()); n != len(Kinds) {
		t.Errorf("cron entries = %d, want %d", n, len(Kinds))
	}
}

func TestStartRunsOnceAndStops(t *testing.T) {
	r := &fakeRunner{}
	s := New(r, model.ScheduleConfig{Reminders: "@every 1h"}, logger.Nop())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	stopped := make(chan struct{})
	go func() { s.Stop(); close(stopped) }()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) != 3 {
		t.Errorf("startup calls = %v", r.calls)
	}
}
