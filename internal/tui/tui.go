// Package tui shows glyph renders of a world in the terminal.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/raycaster/internal/engine"
)

const (
	minSamples = 2
	sampleStep = 10
	statusRows = 2
)

// refreshMsg asks Update to start a render.
type refreshMsg struct{}

type renderedMsg struct {
	seq   int
	lines []string
	err   error
}

// Model is the bubbletea model of the text preview.
type Model struct {
	world    *engine.World
	view     int
	sampling engine.Sampling
	fit      bool // follow the terminal size

	seq    int
	lines  []string
	err    error
	cancel context.CancelFunc
}

// NewModel previews w starting at view index view. While fit is set the
// sample grid follows the terminal size.
func NewModel(w *engine.World, view int, s engine.Sampling, fit bool) Model {
	if view < 0 || view >= len(w.Views) {
		view = 0
	}
	return Model{world: w, view: view, sampling: s, fit: fit}
}

func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return refreshMsg{} }
}

// render starts a render of the current state. Results of older renders are
// dropped in Update by sequence number.
func (m *Model) render() tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}
	if len(m.world.Views) == 0 {
		return nil
	}
	m.seq++
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	seq, w, v, s := m.seq, m.world, m.world.Views[m.view], m.sampling
	return func() tea.Msg {
		lines, err := engine.RenderToText(ctx, w, v, s)
		return renderedMsg{seq: seq, lines: lines, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "tab", "right", "l":
			if n := len(m.world.Views); n > 0 {
				m.view = (m.view + 1) % n
			}
		case "shift+tab", "left", "h":
			if n := len(m.world.Views); n > 0 {
				m.view = (m.view + n - 1) % n
			}
		case "+", "=":
			m.fit = false
			m.sampling.XSamples += sampleStep
			m.sampling.YSamples += sampleStep / 2
		case "-":
			m.fit = false
			m.sampling.XSamples = max(minSamples, m.sampling.XSamples-sampleStep)
			m.sampling.YSamples = max(minSamples, m.sampling.YSamples-sampleStep/2)
		default:
			return m, nil
		}
		return m, m.render()

	case tea.WindowSizeMsg:
		if !m.fit {
			return m, nil
		}
		m.sampling.XSamples = max(minSamples, msg.Width)
		m.sampling.YSamples = max(minSamples, msg.Height-statusRows)
		return m, m.render()

	case refreshMsg:
		return m, m.render()

	case renderedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.lines, m.err = msg.lines, msg.err
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	if m.err != nil {
		fmt.Fprintf(&b, "render error: %v\n", m.err)
	} else {
		for _, l := range m.lines {
			b.WriteString(l)
			b.WriteByte('\n')
		}
	}
	fmt.Fprintf(&b, "view %d/%d  %dx%d samples  [tab] view  [+/-] samples  [q] quit",
		m.view+1, len(m.world.Views), m.sampling.XSamples, m.sampling.YSamples)
	return b.String()
}

// Run blocks until the user quits the preview.
func Run(w *engine.World, view int, s engine.Sampling, fit bool) error {
	p := tea.NewProgram(NewModel(w, view, s, fit), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
