package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nhle/taskboard/internal/model"
)

var reminder = model.Notification{
	ID:            "n1",
	TaskID:        "t1",
	TaskName:      "Pay invoice",
	MinutesBefore: 15,
	Message:       "Pay invoice - due in 15 minutes",
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	if err := (Console{W: &buf}).Notify(context.Background(), reminder); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if !strings.Contains(buf.String(), reminder.Message) {
		t.Errorf("output = %q", buf.String())
	}
	if err := (Console{}).Notify(context.Background(), reminder); err != nil {
		t.Errorf("nil writer should be silent, got %v", err)
	}
}

type fakeRecorder struct {
	got []model.Notification
	err error
}

func (f *fakeRecorder) CreateNotification(_ context.Context, n model.Notification) error {
	f.got = append(f.got, n)
	return f.err
}

func TestLog(t *testing.T) {
	rec := &fakeRecorder{}
	if err := (Log{Store: rec}).Notify(context.Background(), reminder); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(rec.got) != 1 || rec.got[0].ID != "n1" {
		t.Errorf("recorded = %+v", rec.got)
	}
}

func TestSlackWebhook(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decoding webhook body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := Slack{WebhookURL: srv.URL, Channel: "#tasks", Client: srv.Client()}
	if err := s.Notify(context.Background(), reminder); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if payload["channel"] != "#tasks" {
		t.Errorf("channel = %v", payload["channel"])
	}
	if text, _ := payload["text"].(string); !strings.Contains(text, reminder.Message) {
		t.Errorf("text = %q", text)
	}
}

func TestSlackFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := Slack{WebhookURL: srv.URL, Client: srv.Client()}
	if err := s.Notify(context.Background(), reminder); err == nil {
		t.Fatal("expected error for rejected webhook")
	}
	if err := (Slack{}).Notify(context.Background(), reminder); err != nil {
		t.Errorf("unconfigured slack should be silent, got %v", err)
	}
}

func TestMultiTriesEveryNotifier(t *testing.T) {
	failing := &fakeRecorder{err: errors.New("disk full")}
	ok := &fakeRecorder{}
	m := Multi{Log{Store: failing}, nil, Log{Store: ok}}

	err := m.Notify(context.Background(), reminder)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("err = %v, want joined failure", err)
	}
	if len(ok.got) != 1 {
		t.Error("later notifier skipped after failure")
	}
}
