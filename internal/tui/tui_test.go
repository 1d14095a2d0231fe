package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/raycaster/internal/engine"
)

func testWorld(t *testing.T, views int) *engine.World {
	t.Helper()
	w := engine.NewWorld()
	for i := 0; i < views; i++ {
		z := float64(3 + i)
		v, err := engine.NewView(
			engine.Ray{P1: engine.V(0, 0, z), P2: engine.V(1, 0, z)},
			engine.Ray{P1: engine.V(0, 0, z), P2: engine.V(0, 1, z)},
			2)
		if err != nil {
			t.Fatal(err)
		}
		w.AddView(v)
	}
	return w
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return mm, cmd
}

func TestRenderCycle(t *testing.T) {
	m := NewModel(testWorld(t, 1), 0, engine.Sampling{XSamples: 4, YSamples: 2, PlaneWidth: 5, PlaneHeight: 5}, false)

	msg := m.Init()()
	m, cmd := update(t, m, msg)
	if cmd == nil || m.seq != 1 {
		t.Fatalf("refresh did not start a render (seq %d)", m.seq)
	}
	m, _ = update(t, m, cmd())
	if len(m.lines) != 2 || m.lines[0] != "    " {
		t.Errorf("lines = %q", m.lines)
	}
	if !strings.HasSuffix(m.View(), "view 1/1  4x2 samples  [tab] view  [+/-] samples  [q] quit") {
		t.Errorf("status line missing from %q", m.View())
	}
}

func TestStaleRenderDropped(t *testing.T) {
	m := NewModel(testWorld(t, 1), 0, engine.Sampling{XSamples: 4, YSamples: 2, PlaneWidth: 5, PlaneHeight: 5}, false)
	m, _ = update(t, m, refreshMsg{})
	m, _ = update(t, m, refreshMsg{})
	m, _ = update(t, m, renderedMsg{seq: 1, lines: []string{"old"}})
	if m.lines != nil {
		t.Errorf("stale render shown: %q", m.lines)
	}
	m, _ = update(t, m, renderedMsg{seq: 2, lines: []string{"new"}})
	if len(m.lines) != 1 || m.lines[0] != "new" {
		t.Errorf("lines = %q", m.lines)
	}
}

func TestKeys(t *testing.T) {
	base := engine.Sampling{XSamples: 12, YSamples: 6, PlaneWidth: 5, PlaneHeight: 5}
	tests := []struct {
		name     string
		key      tea.KeyMsg
		view     int
		xs, ys   int
		wantsCmd bool
	}{
		{"next view", tea.KeyMsg{Type: tea.KeyTab}, 1, 12, 6, true},
		{"previous view wraps", tea.KeyMsg{Type: tea.KeyShiftTab}, 2, 12, 6, true},
		{"more samples", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}}, 0, 22, 11, true},
		{"fewer samples", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}}, 0, 2, 2, true},
		{"other key", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}, 0, 12, 6, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(testWorld(t, 3), 0, base, false)
			m, cmd := update(t, m, tt.key)
			if m.view != tt.view {
				t.Errorf("view = %d, want %d", m.view, tt.view)
			}
			if m.sampling.XSamples != tt.xs || m.sampling.YSamples != tt.ys {
				t.Errorf("samples = %dx%d, want %dx%d", m.sampling.XSamples, m.sampling.YSamples, tt.xs, tt.ys)
			}
			if (cmd != nil) != tt.wantsCmd {
				t.Errorf("cmd = %v, want a render: %v", cmd != nil, tt.wantsCmd)
			}
		})
	}
}

func TestWindowSizeFollowsTerminal(t *testing.T) {
	s := engine.Sampling{XSamples: 10, YSamples: 10, PlaneWidth: 5, PlaneHeight: 5}

	m := NewModel(testWorld(t, 1), 0, s, true)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	if m.sampling.XSamples != 80 || m.sampling.YSamples != 22 {
		t.Errorf("fit samples = %dx%d, want 80x22", m.sampling.XSamples, m.sampling.YSamples)
	}

	m = NewModel(testWorld(t, 1), 0, s, false)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	if m.sampling.XSamples != 10 {
		t.Errorf("fixed samples changed to %d", m.sampling.XSamples)
	}
}

func TestNewModelClampsView(t *testing.T) {
	m := NewModel(testWorld(t, 2), 7, engine.Sampling{}, false)
	if m.view != 0 {
		t.Errorf("view = %d, want 0", m.view)
	}
}
