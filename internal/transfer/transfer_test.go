package transfer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/rules"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newState(t *testing.T) *board.State {
	t.Helper()
	n := 0
	var mu sync.Mutex
	s := board.New(
		board.WithClock(func() time.Time { return testNow }),
		board.WithIDs(func() string {
			mu.Lock()
			defer mu.Unlock()
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
	s.SeedDefaults()
	return s
}

type memBlobs struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemBlobs() *memBlobs { return &memBlobs{data: make(map[string][]byte)} }

func (m *memBlobs) PutBlob(_ context.Context, data []byte, _ string) (string, error) {
	sum := sha256.Sum256(data)
	ref := "sha256:" + hex.EncodeToString(sum[:])
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[ref] = append([]byte(nil), data...)
	return ref, nil
}

func (m *memBlobs) GetBlob(_ context.Context, ref string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[ref]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func always(ok bool) Confirm {
	return func(Summary) (bool, error) { return ok, nil }
}

func TestDataURL(t *testing.T) {
	url := EncodeDataURL("text/plain", []byte("hello"))
	if url != "data:text/plain;base64,aGVsbG8=" {
		t.Errorf("EncodeDataURL = %s", url)
	}
	mediaType, data, err := DecodeDataURL(url)
	if err != nil || mediaType != "text/plain" || string(data) != "hello" {
		t.Errorf("DecodeDataURL = %q, %q, %v", mediaType, data, err)
	}
	if _, _, err := DecodeDataURL("hello"); err == nil {
		t.Error("plain text should not decode")
	}
}

func TestExportImportBackupReplace(t *testing.T) {
	ctx := context.Background()
	blobs := newMemBlobs()
	src := newState(t)
	ref, _ := blobs.PutBlob(ctx, []byte("scan"), "image/png")
	if _, err := src.CreateTask(board.TaskInput{
		Name: "Pay invoice", Date: "2025-03-01", CategoryID: src.Categories[0].ID,
		Attachments: []model.Attachment{{Name: "invoice.png", Type: "image/png", Size: 4, Ref: ref}},
	}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	_ = src.SetNote("2025-03-01", "remember VAT")
	src.SetTheme("dark")

	var buf bytes.Buffer
	if err := ExportJSON(ctx, &buf, src, nil, blobs); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"version": "2.0"`) {
		t.Fatalf("backup lacks version marker:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "data:image/png;base64,") {
		t.Error("attachment payload not embedded")
	}

	dst := newState(t)
	if _, err := dst.CreateTask(board.TaskInput{Name: "old", Date: "2025-01-01", CategoryID: "x"}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	freshBlobs := newMemBlobs()
	var asked Summary
	res, err := ImportJSON(ctx, &buf, dst, freshBlobs, func(s Summary) (bool, error) {
		asked = s
		return true, nil
	})
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if res.Mode != ModeReplace || asked.Tasks != 1 {
		t.Errorf("result = %+v, summary = %+v", res, asked)
	}
	if len(dst.Tasks) != 1 || dst.Tasks[0].Name != "Pay invoice" {
		t.Fatalf("tasks = %+v", dst.Tasks)
	}
	att := dst.Tasks[0].Attachments[0]
	if att.Content != "" || att.Ref != ref {
		t.Errorf("attachment = %+v, want payload moved to blob store", att)
	}
	if got, _ := freshBlobs.GetBlob(ctx, ref); string(got) != "scan" {
		t.Errorf("blob = %q", got)
	}
	if dst.Theme != "dark" || dst.Note("2025-03-01") != "remember VAT" {
		t.Errorf("theme=%q note=%q", dst.Theme, dst.Note("2025-03-01"))
	}
}

func TestImportBackupReplacesExactly(t *testing.T) {
	payload := `{"version":"2.0","tasks":[
		{"id":"a","name":"one","date":"2025-03-01","categoryId":"c1","status":"todo","priority":"low"},
		{"id":"b","name":"two","date":"2025-03-02","categoryId":"c2","status":"done","priority":"high","completed":true},
		{"id":"c","name":"three","date":"2025-03-03","categoryId":"c1","status":"review","priority":"urgent"}],
		"categories":[{"id":"c1","name":"Work","color":"#111"},{"id":"c2","name":"Home","color":"#222"}]}`

	s := newState(t)
	for i := 0; i < 5; i++ {
		s.AppendTask(model.Task{Name: fmt.Sprintf("prior %d", i)})
	}
	res, err := ImportJSON(context.Background(), strings.NewReader(payload), s, nil, always(true))
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if res.Mode != ModeReplace {
		t.Errorf("mode = %s", res.Mode)
	}
	if len(s.Tasks) != 3 || len(s.Categories) != 2 {
		t.Errorf("tasks=%d categories=%d, want 3/2", len(s.Tasks), len(s.Categories))
	}
	for _, task := range s.Tasks {
		if strings.HasPrefix(task.Name, "prior") {
			t.Errorf("prior task %q survived replace", task.Name)
		}
	}
}

func TestImportBackupDeclinedMerges(t *testing.T) {
	payload := `{"version":"2.0","tasks":[{"id":"a","name":"imported","date":"2025-03-01","categoryId":"zzz"}]}`
	s := newState(t)
	s.AppendTask(model.Task{Name: "kept"})

	res, err := ImportJSON(context.Background(), strings.NewReader(payload), s, nil, always(false))
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if res.Mode != ModeMerge || len(s.Tasks) != 2 {
		t.Errorf("mode=%s tasks=%d, want merge/2", res.Mode, len(s.Tasks))
	}
}

func TestImportConfirmErrorAborts(t *testing.T) {
	payload := `{"version":"2.0","tasks":[]}`
	s := newState(t)
	s.AppendTask(model.Task{Name: "kept"})

	_, err := ImportJSON(context.Background(), strings.NewReader(payload), s, nil,
		func(Summary) (bool, error) { return false, errors.New("no tty") })
	if err == nil {
		t.Fatal("expected confirm error")
	}
	if len(s.Tasks) != 1 {
		t.Error("aborted import changed state")
	}
}

func TestImportMergeRemapsReferences(t *testing.T) {
	s := newState(t)
	alice, _ := s.CreateContact("Alice", "alice@example.com", "#111")
	travail, _ := s.CategoryByName("Travail")
	existing := s.AppendTask(model.Task{Name: "existing"})

	payload := fmt.Sprintf(`{
		"categories":[{"id":"old-work","name":"Travail"},{"id":"old-garden","name":"Jardin","color":"#0f0"}],
		"contacts":[{"id":"old-alice","name":"Alice B","email":"alice@example.com"},{"id":"old-bob","name":"Bob"}],
		"dailyNotes":{"2025-03-05":"merged note"},
		"tasks":[
			{"id":%q,"name":"collides","date":"2025-03-01","categoryId":"old-work","assignees":["old-alice","old-bob","ghost"]},
			{"name":"no id","date":"2025-03-02","categoryId":"old-garden","status":"weird","priority":"haute"},
			{"id":"t3","name":"by name","date":"2025-03-03","categoryId":"unknown","categoryName":"Personnel","dependencies":[%q]},
			{"id":"t4","name":"fallback","date":"2025-03-04","categoryId":"unknown"}
		],
		"archivedTasks":[{"id":"arch","name":"old archived","date":"2025-01-01"}]
	}`, existing.ID, existing.ID)

	res, err := ImportJSON(context.Background(), strings.NewReader(payload), s, nil, nil)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if res.Mode != ModeMerge || res.Tasks != 4 || res.Categories != 1 || res.Contacts != 1 || res.Archived != 1 {
		t.Errorf("result = %+v", res)
	}
	if len(s.Categories) != 4 || len(s.Contacts) != 2 {
		t.Errorf("categories=%d contacts=%d, want 4/2", len(s.Categories), len(s.Contacts))
	}

	byName := map[string]model.Task{}
	for _, task := range s.Tasks {
		byName[task.Name] = task
	}
	collides := byName["collides"]
	if collides.ID == existing.ID || collides.ID == "" {
		t.Errorf("colliding id kept: %s", collides.ID)
	}
	if collides.CategoryID != travail.ID {
		t.Errorf("category = %s, want existing Travail %s", collides.CategoryID, travail.ID)
	}
	bob, _ := s.ContactByRef("Bob")
	if len(collides.Assignees) != 2 || collides.Assignees[0] != alice.ID || collides.Assignees[1] != bob.ID {
		t.Errorf("assignees = %v, want [%s %s]", collides.Assignees, alice.ID, bob.ID)
	}

	noID := byName["no id"]
	jardin, _ := s.CategoryByName("Jardin")
	if noID.ID == "" || noID.CategoryID != jardin.ID {
		t.Errorf("no id task = %+v", noID)
	}
	if noID.Status != model.StatusTodo || noID.Priority != model.PriorityHigh {
		t.Errorf("status=%s priority=%s, want todo/high", noID.Status, noID.Priority)
	}

	personnel, _ := s.CategoryByName("Personnel")
	if got := byName["by name"]; got.CategoryID != personnel.ID {
		t.Errorf("categoryName lookup = %s, want %s", got.CategoryID, personnel.ID)
	}
	if got := byName["by name"]; len(got.Dependencies) != 1 || got.Dependencies[0] != collides.ID {
		t.Errorf("dependencies = %v, want remapped to %s", got.Dependencies, collides.ID)
	}
	if got := byName["fallback"]; got.CategoryID != s.Categories[0].ID {
		t.Errorf("fallback category = %s, want first category", got.CategoryID)
	}
	if s.Note("2025-03-05") != "merged note" {
		t.Error("notes not merged")
	}
	if _, ok := s.ArchivedTask("arch"); !ok {
		t.Error("archived task not merged")
	}
}

func TestImportMergeKeepsArchivedWithoutID(t *testing.T) {
	s := newState(t)
	kept := s.AppendTask(model.Task{Name: "active"})
	payload := fmt.Sprintf(`{"archivedTasks":[
		{"name":"no id","date":"2025-01-01","completed":true},
		{"id":%q,"name":"clashing id","date":"2025-01-02","completed":true}
	]}`, kept.ID)

	res, err := ImportJSON(context.Background(), strings.NewReader(payload), s, nil, nil)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if res.Archived != 2 || len(s.Archived) != 2 {
		t.Fatalf("archived = %d (result %d), want 2", len(s.Archived), res.Archived)
	}
	seen := map[string]bool{kept.ID: true}
	for _, a := range s.Archived {
		if a.ID == "" || seen[a.ID] {
			t.Errorf("archived %q got id %q", a.Name, a.ID)
		}
		seen[a.ID] = true
	}
}

func TestImportBareArray(t *testing.T) {
	s := newState(t)
	res, err := ImportJSON(context.Background(),
		strings.NewReader(`[{"name":"a","date":"2025-03-01"},{"name":"b","date":"2025-03-02"}]`), s, nil, always(true))
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if res.Mode != ModeMerge || len(s.Tasks) != 2 {
		t.Errorf("mode=%s tasks=%d", res.Mode, len(s.Tasks))
	}
}

func TestImportMalformed(t *testing.T) {
	inputs := map[string]string{
		"empty":      "   ",
		"not json":   "name,date",
		"truncated":  `{"tasks":[{"name":"a"`,
		"wrong type": `{"tasks":"nope"}`,
		"bad blob":   `{"tasks":[{"name":"a","attachments":[{"name":"x","content":"data:text/plain;base64,@@@"}]}]}`,
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			s := newState(t)
			before := len(s.Tasks)
			_, err := ImportJSON(context.Background(), strings.NewReader(in), s, newMemBlobs(), always(true))
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("err = %v, want ErrMalformed", err)
			}
			if len(s.Tasks) != before {
				t.Error("malformed import changed state")
			}
		})
	}
}

func TestCSVRoundTrip(t *testing.T) {
	src := newState(t)
	work, _ := src.CategoryByName("Travail")
	tasks := []model.Task{
		{ID: "1", Name: `Say "hi", then leave`, Description: "multi, comma", Date: "2025-03-01",
			CategoryID: work.ID, Status: model.StatusInProgress, Priority: model.PriorityUrgent, Completed: false},
		{ID: "2", Name: "Pay invoice", Date: "2025-03-02",
			CategoryID: work.ID, Status: model.StatusDone, Priority: model.PriorityLow, Completed: true},
	}

	var buf bytes.Buffer
	if err := ExportCSV(&buf, tasks, src.CategoryName); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "Nom,Description,Date,Catégorie,Statut,Priorité,Terminé" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[2] != `"Pay invoice","","2025-03-02","Travail","Terminé","Basse","Oui"` {
		t.Errorf("row = %q", lines[2])
	}

	dst := newState(t)
	n, err := ImportCSV(&buf, dst)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if n != 2 || len(dst.Tasks) != 2 {
		t.Fatalf("imported %d, tasks %d", n, len(dst.Tasks))
	}
	for i, got := range dst.Tasks {
		want := tasks[i]
		if got.Name != want.Name || got.Date != want.Date || got.Completed != want.Completed {
			t.Errorf("row %d = %q/%s/%v, want %q/%s/%v", i, got.Name, got.Date, got.Completed,
				want.Name, want.Date, want.Completed)
		}
		if got.Status != want.Status || got.Priority != want.Priority {
			t.Errorf("row %d labels = %s/%s, want %s/%s", i, got.Status, got.Priority, want.Status, want.Priority)
		}
		if dst.CategoryName(got.CategoryID) != "Travail" {
			t.Errorf("row %d category = %q", i, dst.CategoryName(got.CategoryID))
		}
	}
	if len(dst.Categories) != 3 {
		t.Errorf("categories = %d, existing category should be reused", len(dst.Categories))
	}
}

func TestImportCSVEnglishHeadersAndNewCategory(t *testing.T) {
	in := "name,category,status,priority,done,date\n" +
		"Water plants,Garden,in progress,high,yes,15/03/2025\n" +
		",,,,,\n" +
		",,whatever,,no,2025-03-16\n"
	s := newState(t)
	n, err := ImportCSV(strings.NewReader(in), s)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if n != 2 {
		t.Fatalf("imported %d, want 2", n)
	}
	first := s.Tasks[0]
	if first.Status != model.StatusInProgress || first.Priority != model.PriorityHigh || !first.Completed {
		t.Errorf("first = %+v", first)
	}
	if first.Date != "2025-03-15" {
		t.Errorf("date = %s, want normalised", first.Date)
	}
	garden, ok := s.CategoryByName("Garden")
	if !ok || garden.Color != ImportedCategoryColor || first.CategoryID != garden.ID {
		t.Errorf("garden = %+v, ok=%v", garden, ok)
	}
	second := s.Tasks[1]
	if second.Name != UntitledName || second.Status != model.StatusTodo || second.Priority != model.PriorityMedium {
		t.Errorf("second = %+v", second)
	}
	if second.CategoryID != s.Categories[0].ID {
		t.Error("blank category should fall back to the first category")
	}
}

func TestImportCSVMalformed(t *testing.T) {
	for name, in := range map[string]string{
		"empty":       "",
		"header only": "Nom,Date\n",
		"unknown":     "foo,bar\n1,2\n",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := ImportCSV(strings.NewReader(in), newState(t)); !errors.Is(err, ErrMalformed) {
				t.Errorf("err = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestExportXLSX(t *testing.T) {
	s := newState(t)
	alice, _ := s.CreateContact("Alice", "", "#111")
	tasks := []model.Task{{ID: "1", Name: "Pay invoice", Date: "2025-03-01",
		CategoryID: s.Categories[0].ID, Status: model.StatusTodo, Priority: model.PriorityHigh,
		Assignees: []string{alice.ID}}}

	var buf bytes.Buffer
	contactName := func(id string) string {
		c, _ := s.Contact(id)
		return c.Name
	}
	if err := ExportXLSX(&buf, tasks, s.CategoryName, contactName); err != nil {
		t.Fatalf("ExportXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(taskSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0][0] != "Nom" || rows[1][0] != "Pay invoice" || rows[1][3] != "Travail" || rows[1][7] != "Alice" {
		t.Errorf("rows = %v", rows)
	}
}

func completedWeekly(t *testing.T, s *board.State) model.Task {
	t.Helper()
	task, err := s.CreateTask(board.TaskInput{
		Name: "Water plants", Date: "2025-03-01", CategoryID: s.Categories[0].ID,
		Recurrence: model.RecurrenceWeekly,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, ok := s.SetCompleted(task.ID, true); !ok {
		t.Fatal("SetCompleted missed")
	}
	return task
}

func TestRestoringBackupDoesNotRespawnOccurrences(t *testing.T) {
	ctx := context.Background()
	s := newState(t)
	completedWeekly(t, s)
	if got := rules.Recurrence(s, testNow); len(got) != 1 {
		t.Fatalf("first sweep spawned %d, want 1", len(got))
	}

	var buf bytes.Buffer
	if err := ExportJSON(ctx, &buf, s, nil, nil); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	if _, err := ImportJSON(ctx, &buf, s, nil, always(true)); err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if got := rules.Recurrence(s, testNow); len(got) != 0 {
		t.Errorf("sweep after restore spawned %d duplicate(s)", len(got))
	}
	if len(s.Tasks) != 2 {
		t.Errorf("board holds %d tasks, want 2", len(s.Tasks))
	}
}

func TestBackupCarriesLedgersToFreshBoard(t *testing.T) {
	ctx := context.Background()
	src := newState(t)
	completedWeekly(t, src)
	rules.Recurrence(src, testNow)

	var buf bytes.Buffer
	if err := ExportJSON(ctx, &buf, src, nil, nil); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"recurrenceLedger"`) {
		t.Fatalf("backup lacks the recurrence ledger:\n%s", buf.String())
	}

	dst := board.New(board.WithClock(func() time.Time { return testNow }))
	if _, err := ImportJSON(ctx, &buf, dst, nil, always(true)); err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if got := rules.Recurrence(dst, testNow); len(got) != 0 {
		t.Errorf("sweep on restored board spawned %d duplicate(s)", len(got))
	}
}
