package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type loaderDoneMsg struct {
	err error
}

type loaderModel struct {
	label   string
	ctx     context.Context
	cancel  context.CancelFunc
	fn      func(ctx context.Context) error
	spinner spinner.Model
	err     error
	done    bool
}

func newLoaderModel(ctx context.Context, label string, fn func(ctx context.Context) error) loaderModel {
	ctx, cancel := context.WithCancel(ctx)
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle
	return loaderModel{
		label:   label,
		ctx:     ctx,
		cancel:  cancel,
		fn:      fn,
		spinner: sp,
	}
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doRun(), m.spinner.Tick)
}

func (m loaderModel) doRun() tea.Cmd {
	ctx, fn := m.ctx, m.fn
	return func() tea.Msg {
		return loaderDoneMsg{err: fn(ctx)}
	}
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loaderDoneMsg:
		m.err = msg.err
		m.done = true
		m.cancel()
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
			m.done = true
			m.err = fmt.Errorf("%s: %w", m.label, context.Canceled)
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s...\n", m.spinner.View(), m.label)
}

// RunLoader shows a spinner labelled label while fn runs. It renders inline
// (no alt screen) and returns fn's error.
func RunLoader(ctx context.Context, label string, fn func(ctx context.Context) error) error {
	p := tea.NewProgram(newLoaderModel(ctx, label, fn))
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("loader: %w", err)
	}
	return result.(loaderModel).err
}
