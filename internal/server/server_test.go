package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nhle/taskboard/internal/app"
	"github.com/nhle/taskboard/internal/logger"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/server"
	"github.com/nhle/taskboard/tests/testutil"
)

func newTestServer(t *testing.T) (*server.Server, *app.Service) {
	t.Helper()
	clock := testutil.NewClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	svc, err := app.New(context.Background(), testutil.NewTestStore(t), app.Options{
		Logger: logger.Nop(),
		Clock:  clock.Now,
		IDs:    testutil.SequentialIDs("id"),
	})
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	return server.New(svc, logger.Nop()), svc
}

func do(t *testing.T, srv *server.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("health = %d %s", rec.Code, rec.Body)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("missing request id header")
	}
}

func TestTaskLifecycle(t *testing.T) {
	srv, svc := newTestServer(t)
	cat := svc.Categories()[0].ID

	rec := do(t, srv, http.MethodPost, "/api/v1/tasks",
		`{"name":"Pay invoice","date":"2025-03-01","categoryId":"`+cat+`","priority":"high"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", rec.Code, rec.Body)
	}
	created := decode[model.Task](t, rec)

	rec = do(t, srv, http.MethodGet, "/api/v1/tasks?priority=high", "")
	if tasks := decode[[]model.Task](t, rec); len(tasks) != 1 || tasks[0].ID != created.ID {
		t.Errorf("list = %+v", tasks)
	}

	rec = do(t, srv, http.MethodPost, "/api/v1/tasks/"+created.ID+"/complete", `{"completed":true}`)
	if done := decode[model.Task](t, rec); rec.Code != http.StatusOK || !done.Completed {
		t.Errorf("complete = %d %+v", rec.Code, done)
	}

	rec = do(t, srv, http.MethodPost, "/api/v1/tasks/"+created.ID+"/archive", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("archive = %d %s", rec.Code, rec.Body)
	}
	rec = do(t, srv, http.MethodGet, "/api/v1/archive/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Errorf("get archived = %d", rec.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	srv, svc := newTestServer(t)
	cat := svc.Categories()[0].ID

	rec := do(t, srv, http.MethodPost, "/api/v1/tasks", `{"date":"2025-03-01","categoryId":"`+cat+`"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid create = %d", rec.Code)
	}

	rec = do(t, srv, http.MethodGet, "/api/v1/tasks/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing task = %d", rec.Code)
	}

	dep := decode[model.Task](t, do(t, srv, http.MethodPost, "/api/v1/tasks",
		`{"name":"Draft","date":"2025-03-01","categoryId":"`+cat+`"}`))
	blocked := decode[model.Task](t, do(t, srv, http.MethodPost, "/api/v1/tasks",
		`{"name":"Publish","date":"2025-03-02","categoryId":"`+cat+`","dependencies":["`+dep.ID+`"]}`))
	rec = do(t, srv, http.MethodPost, "/api/v1/tasks/"+blocked.ID+"/complete", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("blocked complete = %d %s", rec.Code, rec.Body)
	}

	rec = do(t, srv, http.MethodGet, "/api/v1/calendar?month=March", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad month = %d", rec.Code)
	}

	rec = do(t, srv, http.MethodPost, "/api/v1/import", "{broken")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed import = %d", rec.Code)
	}
}

func TestImportReplaceAndExportCSV(t *testing.T) {
	srv, svc := newTestServer(t)
	backup := `{"version":"2.0","categories":[{"id":"c1","name":"Work"}],
	  "tasks":[{"id":"t1","name":"Only","date":"2025-03-01","categoryId":"c1","status":"todo","priority":"low"}]}`

	rec := do(t, srv, http.MethodPost, "/api/v1/import?replace=true", backup)
	if rec.Code != http.StatusOK {
		t.Fatalf("import = %d %s", rec.Code, rec.Body)
	}
	if cats := svc.Categories(); len(cats) != 1 || cats[0].Name != "Work" {
		t.Errorf("categories = %+v", cats)
	}

	rec = do(t, srv, http.MethodGet, "/api/v1/export?format=csv", "")
	body := rec.Body.String()
	if rec.Code != http.StatusOK || !strings.HasPrefix(body, "Nom,Description,Date") || !strings.Contains(body, `"Only"`) {
		t.Errorf("csv export = %d %q", rec.Code, body)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), ".csv") {
		t.Errorf("content disposition = %q", rec.Header().Get("Content-Disposition"))
	}
}

func TestDashboardAndKanban(t *testing.T) {
	srv, svc := newTestServer(t)
	cat := svc.Categories()[0].ID
	do(t, srv, http.MethodPost, "/api/v1/tasks", `{"name":"A","date":"2025-03-01","categoryId":"`+cat+`","status":"review"}`)

	rec := do(t, srv, http.MethodGet, "/api/v1/dashboard", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"Total":1`) {
		t.Errorf("dashboard = %d %s", rec.Code, rec.Body)
	}
	rec = do(t, srv, http.MethodGet, "/api/v1/kanban", "")
	cols := decode[[]struct {
		Status string
		Tasks  []model.Task
	}](t, rec)
	if len(cols) != 4 || len(cols[2].Tasks) != 1 {
		t.Errorf("kanban = %+v", cols)
	}
}
