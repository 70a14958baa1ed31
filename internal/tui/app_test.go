package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/sponsorscout/internal/flow"
	"github.com/amishk599/sponsorscout/internal/history"
	"github.com/amishk599/sponsorscout/internal/metrics"
	"github.com/amishk599/sponsorscout/internal/model"
	"github.com/amishk599/sponsorscout/internal/session"
)

// fakeService fails uploads of files named in failUploads and counts calls.
type fakeService struct {
	failUploads map[string]bool
	queryResp   model.QueryResponse
	queryErr    error
	uploads     atomic.Int32
	queries     atomic.Int32
}

func (f *fakeService) Upload(_ context.Context, file model.FileRef) (model.UploadResponse, error) {
	f.uploads.Add(1)
	if f.failUploads[file.Name] {
		return model.UploadResponse{}, &model.HTTPError{StatusCode: 500}
	}
	return model.UploadResponse{Message: "ok", NumJobs: 3}, nil
}

func (f *fakeService) Query(_ context.Context, _ string) (model.QueryResponse, error) {
	f.queries.Add(1)
	return f.queryResp, f.queryErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp(t *testing.T, svc model.JobService, opts Options) appModel {
	t.Helper()
	h, err := history.NewSQLiteHistory()
	if err != nil {
		t.Fatalf("NewSQLiteHistory: %v", err)
	}
	t.Cleanup(func() { h.Close() })

	orch := flow.New(session.NewStore(), svc, h, metrics.New(), discardLogger())
	m := newAppModel(context.Background(), orch, opts)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(appModel)
}

func writeCSV(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("job_title,company,location,sponsorship_details\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func oneMatch() model.QueryResponse {
	return model.QueryResponse{
		Summary: "1 match",
		RelevantJobs: []model.Job{
			{JobTitle: "SWE", Company: "Acme", Location: "CA", SponsorshipDetails: "H1B sponsored"},
		},
	}
}

// applyMsg runs one Update and returns the command without running it.
func applyMsg(t *testing.T, m appModel, msg tea.Msg) (appModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	got, ok := next.(appModel)
	if !ok {
		t.Fatalf("Update returned %T, want appModel", next)
	}
	return got, cmd
}

// drain runs cmd and every command it produces, expanding batches.
// Spinner ticks are dropped since they only animate.
func drain(t *testing.T, m appModel, cmd tea.Cmd) appModel {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 64 {
			t.Fatal("command chain exceeded max depth")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			var next tea.Cmd
			m, next = applyMsg(t, m, msg)
			queue = append(queue, next)
		}
	}
	return m
}

func send(t *testing.T, m appModel, msg tea.Msg) appModel {
	t.Helper()
	m, cmd := applyMsg(t, m, msg)
	return drain(t, m, cmd)
}

func typeText(t *testing.T, m appModel, text string) appModel {
	t.Helper()
	for _, r := range text {
		m, _ = applyMsg(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	escKey   = tea.KeyMsg{Type: tea.KeyEscape}
	ctrlR    = tea.KeyMsg{Type: tea.KeyCtrlR}
)

func TestApp_UploadThenAsk(t *testing.T) {
	svc := &fakeService{queryResp: oneMatch()}
	m := newTestApp(t, svc, Options{ServerName: "local", HistoryEnabled: true})

	m = send(t, m, fileChosenMsg{path: writeCSV(t, "jobs.csv")})
	s := m.orch.State()
	if s.SelectedFile.Name != "jobs.csv" || s.Busy || s.ErrorMessage != "" {
		t.Fatalf("after upload: %+v", s)
	}
	if !strings.Contains(m.View(), "Selected file: jobs.csv") {
		t.Errorf("view missing selected file:\n%s", m.View())
	}

	m = typeText(t, m, "who sponsors?")
	if got := m.orch.State().QueryText; got != "who sponsors?" {
		t.Errorf("QueryText = %q", got)
	}

	m = send(t, m, enterKey)
	if svc.queries.Load() != 1 {
		t.Fatalf("queries = %d, want 1", svc.queries.Load())
	}
	view := m.View()
	for _, want := range []string{"1 match", "SWE", "Company: Acme", "Sponsorship: H1B sponsored"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestApp_BusyUntilSettled(t *testing.T) {
	svc := &fakeService{queryResp: oneMatch()}
	m := newTestApp(t, svc, Options{})
	m = send(t, m, fileChosenMsg{path: writeCSV(t, "jobs.csv")})
	m = typeText(t, m, "h1b?")

	m, cmd := applyMsg(t, m, enterKey)
	if !m.orch.State().Busy {
		t.Fatal("Busy = false after submit, before settlement")
	}
	if !strings.Contains(m.View(), "Loading...") {
		t.Errorf("loading indicator missing:\n%s", m.View())
	}

	m = drain(t, m, cmd)
	if m.orch.State().Busy {
		t.Error("Busy = true after settlement")
	}
	if strings.Contains(m.View(), "Loading...") {
		t.Error("loading indicator still shown after settlement")
	}
}

func TestApp_SubmitWithoutFileIsDisabled(t *testing.T) {
	svc := &fakeService{}
	m := newTestApp(t, svc, Options{})
	m = typeText(t, m, "any sponsors?")
	before := m.orch.State()

	m = send(t, m, enterKey)
	if svc.queries.Load() != 0 {
		t.Errorf("queries = %d, want 0", svc.queries.Load())
	}
	after := m.orch.State()
	if after.Busy || after.ErrorMessage != before.ErrorMessage || after.LastResponse != nil {
		t.Errorf("state changed: %+v", after)
	}
	if !strings.Contains(m.View(), "Upload a CSV file first") {
		t.Errorf("hint missing:\n%s", m.View())
	}
}

func TestApp_BlankQueryIsIgnored(t *testing.T) {
	svc := &fakeService{}
	m := newTestApp(t, svc, Options{})
	m = send(t, m, fileChosenMsg{path: writeCSV(t, "jobs.csv")})
	m = typeText(t, m, "   ")

	m = send(t, m, enterKey)
	if svc.queries.Load() != 0 {
		t.Errorf("queries = %d, want 0", svc.queries.Load())
	}
	if m.orch.State().Busy {
		t.Error("Busy = true after blank submit")
	}
}

func TestApp_NonCSVIsRejected(t *testing.T) {
	svc := &fakeService{}
	m := newTestApp(t, svc, Options{})

	m = send(t, m, fileChosenMsg{path: writeCSV(t, "notes.txt")})
	if svc.uploads.Load() != 0 {
		t.Errorf("uploads = %d, want 0", svc.uploads.Load())
	}
	if !m.orch.State().SelectedFile.IsZero() {
		t.Errorf("SelectedFile = %+v, want none", m.orch.State().SelectedFile)
	}
	if m.hint == "" {
		t.Error("expected a hint for the rejected file")
	}
}

func TestApp_QueryFailureKeepsEarlierResults(t *testing.T) {
	svc := &fakeService{queryResp: oneMatch()}
	m := newTestApp(t, svc, Options{})
	m = send(t, m, fileChosenMsg{path: writeCSV(t, "jobs.csv")})
	m = typeText(t, m, "first")
	m = send(t, m, enterKey)

	svc.queryErr = &model.TransportError{Op: "query", Err: errors.New("connection refused")}
	m = send(t, m, enterKey)

	view := m.View()
	if !strings.Contains(view, flow.QueryFailedMessage) {
		t.Errorf("banner missing:\n%s", view)
	}
	if !strings.Contains(view, "Company: Acme") {
		t.Errorf("earlier results not shown:\n%s", view)
	}
}

func TestApp_StaleUploadFailureIsDiscarded(t *testing.T) {
	svc := &fakeService{failUploads: map[string]bool{"a.csv": true}}
	m := newTestApp(t, svc, Options{})

	m, first := applyMsg(t, m, fileChosenMsg{path: writeCSV(t, "a.csv")})
	m, second := applyMsg(t, m, fileChosenMsg{path: writeCSV(t, "b.csv")})

	m = drain(t, m, second)
	m = drain(t, m, first)

	s := m.orch.State()
	if s.ErrorMessage != "" {
		t.Errorf("ErrorMessage = %q, stale failure should be dropped", s.ErrorMessage)
	}
	if s.SelectedFile.Name != "b.csv" || s.Busy {
		t.Errorf("state = %+v", s)
	}
	if svc.uploads.Load() != 2 {
		t.Errorf("uploads = %d, want 2", svc.uploads.Load())
	}
}

func TestApp_HistoryView(t *testing.T) {
	svc := &fakeService{failUploads: map[string]bool{"bad.csv": true}}
	m := newTestApp(t, svc, Options{HistoryEnabled: true, HistoryLimit: 10})
	m = send(t, m, fileChosenMsg{path: writeCSV(t, "bad.csv")})
	m = send(t, m, fileChosenMsg{path: writeCSV(t, "good.csv")})

	m = send(t, m, ctrlR)
	if m.view != viewHistory {
		t.Fatalf("view = %v, want history", m.view)
	}
	view := m.View()
	for _, want := range []string{"#2", "good.csv", "3 jobs: ok", "#1", "bad.csv", flow.UploadFailedMessage} {
		if !strings.Contains(view, want) {
			t.Errorf("history missing %q:\n%s", want, view)
		}
	}
	if strings.Index(view, "#2") > strings.Index(view, "#1") {
		t.Error("history should list newest first")
	}

	m = send(t, m, escKey)
	if m.view != viewMain {
		t.Errorf("view = %v after esc, want main", m.view)
	}
}

func TestApp_HistoryDisabled(t *testing.T) {
	m := newTestApp(t, &fakeService{}, Options{HistoryEnabled: false})
	m = send(t, m, ctrlR)
	if !strings.Contains(m.View(), "History is disabled") {
		t.Errorf("view:\n%s", m.View())
	}
}

func TestApp_InitialFileUploadsOnStart(t *testing.T) {
	svc := &fakeService{}
	m := newTestApp(t, svc, Options{InitialFile: writeCSV(t, "start.csv")})
	m = drain(t, m, m.Init())
	if svc.uploads.Load() != 1 {
		t.Errorf("uploads = %d, want 1", svc.uploads.Load())
	}
	if m.orch.State().SelectedFile.Name != "start.csv" {
		t.Errorf("SelectedFile = %+v", m.orch.State().SelectedFile)
	}
}

func TestRenderHistory_Empty(t *testing.T) {
	if got := renderHistory(nil, 80); !strings.Contains(got, "No actions") {
		t.Errorf("renderHistory(nil) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("a much longer question", 10); got != "a much ..." {
		t.Errorf("truncate = %q", got)
	}
}
