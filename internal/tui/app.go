// Package tui is the interactive front end: a bubbletea program that turns
// key presses into flow actions and draws the presenter's view of the
// session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/sponsorscout/internal/flow"
	"github.com/amishk599/sponsorscout/internal/model"
	"github.com/amishk599/sponsorscout/internal/presenter"
)

// Rows taken by everything except the results viewport: title, selected
// file, bordered query input (3) and the status bar.
const chromeHeight = 6

type viewState int

const (
	viewMain viewState = iota
	viewFiles
	viewHistory
)

// settledMsg carries a finished request back to the update loop, where it
// is applied to the session.
type settledMsg struct {
	res flow.Result
}

// fileChosenMsg is sent when a file has been picked for upload.
type fileChosenMsg struct {
	path string
}

// Options configures the interactive session.
type Options struct {
	ServerName     string
	StartDir       string // file picker start directory, "" for the working directory
	InitialFile    string // uploaded as soon as the program starts
	HistoryEnabled bool
	HistoryLimit   int // 0 shows every entry
}

type appModel struct {
	ctx  context.Context
	orch *flow.Orchestrator
	opts Options

	view      viewState
	input     textinput.Model
	files     filepicker.Model
	spinner   spinner.Model
	spinning  bool
	results   viewport.Model
	historyVP viewport.Model

	hint   string
	width  int
	height int
	ready  bool
}

func newAppModel(ctx context.Context, orch *flow.Orchestrator, opts Options) appModel {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "Which of these roles sponsor H1B visas?"
	input.CharLimit = 500
	input.Cursor.SetMode(cursor.CursorStatic)
	input.Focus()

	files := filepicker.New()
	files.AllowedTypes = []string{".csv"}
	if opts.StartDir != "" {
		files.CurrentDirectory = opts.StartDir
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return appModel{
		ctx:       ctx,
		orch:      orch,
		opts:      opts,
		input:     input,
		files:     files,
		spinner:   sp,
		results:   viewport.New(0, 0),
		historyVP: viewport.New(0, 0),
	}
}

func (m appModel) Init() tea.Cmd {
	if m.opts.InitialFile == "" {
		return nil
	}
	path := m.opts.InitialFile
	return func() tea.Msg { return fileChosenMsg{path: path} }
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.refresh()
	return next, cmd
}

func (m appModel) update(msg tea.Msg) (appModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.recalcLayout()
		var cmd tea.Cmd
		m.files, cmd = m.files.Update(msg)
		return m, cmd

	case settledMsg:
		m.orch.Settle(msg.res)
		return m, nil

	case fileChosenMsg:
		return m.startUpload(msg.path)

	case spinner.TickMsg:
		if !m.orch.State().Busy {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.view {
		case viewFiles:
			return m.updateFiles(msg)
		case viewHistory:
			return m.updateHistory(msg)
		}
		return m.updateMain(msg)
	}

	// Directory listings for the file picker.
	var cmd tea.Cmd
	m.files, cmd = m.files.Update(msg)
	return m, cmd
}

func (m appModel) updateMain(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+o":
		m.view = viewFiles
		m.hint = ""
		return m, m.files.Init()
	case "ctrl+r":
		m.view = viewHistory
		m.loadHistory()
		return m, nil
	case "enter":
		return m.submitQuery()
	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		m.orch.SetQueryText(v)
		m.hint = ""
	}
	return m, cmd
}

func (m appModel) updateFiles(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = viewMain
		m.hint = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.files, cmd = m.files.Update(msg)
	if ok, path := m.files.DidSelectFile(msg); ok {
		next, runCmd := m.startUpload(path)
		return next, tea.Batch(cmd, runCmd)
	}
	if ok, path := m.files.DidSelectDisabledFile(msg); ok {
		m.hint = fmt.Sprintf("%s is not a .csv file", filepath.Base(path))
	}
	return m, cmd
}

func (m appModel) updateHistory(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "q", "ctrl+r":
		m.view = viewMain
		return m, nil
	}
	var cmd tea.Cmd
	m.historyVP, cmd = m.historyVP.Update(msg)
	return m, cmd
}

func (m appModel) startUpload(path string) (appModel, tea.Cmd) {
	p, err := m.orch.BeginUpload(model.NewFileRef(path))
	if err != nil {
		m.hint = fmt.Sprintf("%s: %v", filepath.Base(path), err)
		return m, nil
	}
	m.view = viewMain
	m.hint = ""
	return m, m.run(p)
}

func (m appModel) submitQuery() (appModel, tea.Cmd) {
	p, err := m.orch.BeginQuery(m.input.Value())
	switch {
	case errors.Is(err, flow.ErrEmptyQuery):
		m.hint = "Type a question first"
		return m, nil
	case errors.Is(err, flow.ErrSubmitDisabled):
		if m.orch.State().SelectedFile.IsZero() {
			m.hint = "Upload a CSV file first (ctrl+o)"
		} else {
			m.hint = "Wait for the current request to finish"
		}
		return m, nil
	case err != nil:
		m.hint = err.Error()
		return m, nil
	}
	m.hint = ""
	return m, m.run(p)
}

// run sends p's request off the update loop and starts the spinner if it
// is not already ticking.
func (m *appModel) run(p flow.Pending) tea.Cmd {
	ctx := m.ctx
	request := func() tea.Msg {
		return settledMsg{res: p.Run(ctx)}
	}
	if m.spinning {
		return request
	}
	m.spinning = true
	return tea.Batch(request, m.spinner.Tick)
}

func (m *appModel) loadHistory() {
	defer m.historyVP.GotoTop()
	if !m.opts.HistoryEnabled {
		m.historyVP.SetContent(dimStyle.Render("History is disabled (history.enabled: false)."))
		return
	}
	entries, err := m.orch.History(m.opts.HistoryLimit)
	if err != nil {
		m.historyVP.SetContent(failureStyle.Render(fmt.Sprintf("Could not load history: %v", err)))
		return
	}
	m.historyVP.SetContent(renderHistory(entries, m.historyVP.Width))
}

func (m *appModel) recalcLayout() {
	w := max(m.width-2, 1)
	h := max(m.height-chromeHeight, 1)
	m.results.Width = w
	m.results.Height = h
	m.historyVP.Width = w
	m.historyVP.Height = max(m.height-2, 1)
	m.input.Width = max(m.width-8, 1)
}

// refresh re-renders the results pane from the current snapshot.
func (m *appModel) refresh() {
	v := presenter.Build(m.orch.State())
	m.results.SetContent(presenter.Render(v, presenter.Options{
		Width:   m.results.Width,
		Spinner: m.spinner.View(),
	}))
}

func (m appModel) View() string {
	if !m.ready {
		return "Loading..."
	}
	switch m.view {
	case viewFiles:
		return m.viewFiles()
	case viewHistory:
		return m.viewHistory()
	}
	return m.viewMain()
}

func (m appModel) viewMain() string {
	v := presenter.Build(m.orch.State())

	title := titleStyle.Render("sponsorscout")
	if m.opts.ServerName != "" {
		title += dimStyle.Render("@ " + m.opts.ServerName)
	}

	file := presenter.RenderSelectedFile(v)
	if file == "" {
		file = dimStyle.Render("No file selected")
	}

	box := inactiveBorderStyle
	if v.CanSubmit {
		box = activeBorderStyle
	}
	input := box.Width(max(m.width-2, 1)).Render(m.input.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		fileLineStyle.Render(file),
		input,
		fileLineStyle.Render(m.results.View()),
		m.statusBar("ctrl+o upload csv  enter ask  ↑/↓ scroll  ctrl+r history  ctrl+c quit"),
	)
}

func (m appModel) viewFiles() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Select a CSV file"),
		m.files.View(),
		m.statusBar("↑/↓ navigate  enter open/select  ← parent  esc back"),
	)
}

func (m appModel) viewHistory() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Session history"),
		fileLineStyle.Render(m.historyVP.View()),
		m.statusBar("↑/↓ scroll  esc back"),
	)
}

func (m appModel) statusBar(keys string) string {
	text := keys
	if m.hint != "" {
		text = hintStyle.Render(m.hint) + "  " + keys
	}
	return statusBarStyle.Width(max(m.width, 1)).Render(text)
}

// Run launches the interactive session in the alternate screen and blocks
// until the user quits.
func Run(ctx context.Context, orch *flow.Orchestrator, opts Options) error {
	p := tea.NewProgram(newAppModel(ctx, orch, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
