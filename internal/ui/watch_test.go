package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bnema/cascade/internal/ipc"
	tea "github.com/charmbracelet/bubbletea"
)

func TestWatchModelConnecting(t *testing.T) {
	m := NewWatchModel(func() (*ipc.StatusResponse, error) { return nil, nil }, 0)

	if m.interval != DefaultRefresh {
		t.Errorf("interval = %v, want %v", m.interval, DefaultRefresh)
	}
	if m.Init() == nil {
		t.Fatal("Init() should return a command")
	}
	if !strings.Contains(m.View(), "connecting") {
		t.Errorf("View() = %q, want connecting", m.View())
	}
}

func TestWatchModelFetch(t *testing.T) {
	calls := 0
	m := NewWatchModel(func() (*ipc.StatusResponse, error) {
		calls++
		return &ipc.StatusResponse{Running: true, Engine: "tiling"}, nil
	}, time.Millisecond)

	msg := m.fetch()()
	if calls != 1 {
		t.Fatalf("source called %d times, want 1", calls)
	}

	_, cmd := m.Update(msg)
	if cmd == nil {
		t.Error("Update(status) should schedule a refresh")
	}
	if !strings.Contains(m.View(), "tiling") {
		t.Errorf("View() missing engine name:\n%s", m.View())
	}

	_, cmd = m.Update(refreshMsg{})
	if cmd == nil {
		t.Fatal("Update(refresh) should fetch")
	}
	cmd()
	if calls != 2 {
		t.Errorf("source called %d times, want 2", calls)
	}
}

func TestWatchModelError(t *testing.T) {
	m := NewWatchModel(func() (*ipc.StatusResponse, error) {
		return nil, ipc.ErrNotRunning
	}, time.Second)

	m.Update(m.fetch()())
	if !strings.Contains(m.View(), ipc.ErrNotRunning.Error()) {
		t.Errorf("View() should render the error:\n%s", m.View())
	}

	m.Update(statusMsg{err: errors.New("boom")})
	if !strings.Contains(m.View(), "boom") {
		t.Errorf("View() should render the latest error:\n%s", m.View())
	}
}

func TestWatchModelQuit(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
	}{
		{name: "q", key: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}},
		{name: "ctrl+c", key: tea.KeyMsg{Type: tea.KeyCtrlC}},
		{name: "esc", key: tea.KeyMsg{Type: tea.KeyEsc}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewWatchModel(func() (*ipc.StatusResponse, error) { return nil, nil }, time.Second)
			_, cmd := m.Update(tt.key)
			if cmd == nil {
				t.Fatal("expected quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("expected tea.QuitMsg")
			}
			if m.View() != "" {
				t.Errorf("View() after quit = %q, want empty", m.View())
			}
		})
	}
}
