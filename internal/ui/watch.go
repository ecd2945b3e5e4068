package ui

import (
	"time"

	"github.com/bnema/cascade/internal/ipc"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultRefresh is how often the watch view polls the session
const DefaultRefresh = time.Second

// StatusSource fetches the current session status
type StatusSource func() (*ipc.StatusResponse, error)

type statusMsg struct {
	status *ipc.StatusResponse
	err    error
}

type refreshMsg struct{}

// WatchModel is a bubbletea model that keeps refreshing the session status
type WatchModel struct {
	source   StatusSource
	interval time.Duration
	spinner  spinner.Model

	status   *ipc.StatusResponse
	err      error
	loaded   bool
	quitting bool
}

// NewWatchModel creates a watch model polling source every interval
func NewWatchModel(source StatusSource, interval time.Duration) *WatchModel {
	if interval <= 0 {
		interval = DefaultRefresh
	}
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: SpinnerDot,
		FPS:    time.Second / 10,
	}
	s.Style = SpinnerStyle

	return &WatchModel{
		source:   source,
		interval: interval,
		spinner:  s,
	}
}

// Init implements tea.Model
func (m *WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch())
}

// Update implements tea.Model
func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, m.fetch()
		}

	case statusMsg:
		m.loaded = true
		m.status, m.err = msg.status, msg.err
		return m, tea.Tick(m.interval, func(time.Time) tea.Msg { return refreshMsg{} })

	case refreshMsg:
		return m, m.fetch()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model
func (m *WatchModel) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch {
	case !m.loaded:
		body = m.spinner.View() + " " + SubtleStyle.Render("connecting...")
	case m.err != nil:
		body = FormatError(m.err.Error())
	default:
		body = RenderStatus(m.status)
	}

	help := SubtleStyle.Render(FormatControl("r", "refresh") + "  " + FormatControl("q", "quit"))
	return body + "\n" + m.spinner.View() + " " + help + "\n"
}

func (m *WatchModel) fetch() tea.Cmd {
	return func() tea.Msg {
		status, err := m.source()
		return statusMsg{status: status, err: err}
	}
}
