// Package tui renders the session in the terminal: the moving target, the
// beat pulse indicator, and the detected tempo readout. It is a pure
// consumer of engine frames; every state change goes through an engine
// operation.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Arcadesys/doctorfeelgood-sub001/internal/config"
	"github.com/Arcadesys/doctorfeelgood-sub001/internal/engine"
	"github.com/Arcadesys/doctorfeelgood-sub001/internal/scheduler"
)

const trackWidth = 64

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#5A56E0")).
			Padding(0, 1).
			Bold(true)

	targetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5A56E0")).
			Bold(true)

	trackStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3C3C3C"))

	pulseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F25D94")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B2B2B2"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB454"))
)

type keyMap struct {
	Toggle    key.Binding
	Mode      key.Binding
	Pattern   key.Binding
	Faster    key.Binding
	Slower    key.Binding
	Reanalyze key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Toggle:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "start/stop")),
	Mode:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "sync mode")),
	Pattern:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pattern")),
	Faster:    key.NewBinding(key.WithKeys("up", "+"), key.WithHelp("↑", "faster")),
	Slower:    key.NewBinding(key.WithKeys("down", "-"), key.WithHelp("↓", "slower")),
	Reanalyze: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "re-analyze")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type frameMsg scheduler.Frame

// SessionModel is the Bubble Tea model for a running session.
type SessionModel struct {
	eng *engine.Engine

	position   float64
	pulseTicks int // frames the pulse marker stays lit
	beat       int
}

// NewSessionModel creates the model for the given session engine.
func NewSessionModel(eng *engine.Engine) SessionModel {
	return SessionModel{eng: eng, position: 0.5}
}

func (m SessionModel) Init() tea.Cmd {
	return m.waitForFrame()
}

// waitForFrame blocks on the engine frame channel and converts the next
// frame into a message.
func (m SessionModel) waitForFrame() tea.Cmd {
	return func() tea.Msg {
		return frameMsg(<-m.eng.Frames())
	}
}

func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.position = msg.Position
		if msg.Pulse {
			m.pulseTicks = 6
			m.beat = msg.Beat
		} else if m.pulseTicks > 0 {
			m.pulseTicks--
		}
		return m, m.waitForFrame()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Toggle):
			if m.eng.Running() {
				m.eng.Stop()
				m.position = 0.5
			} else if err := m.eng.Start(); err != nil {
				return m, tea.Quit
			}

		case key.Matches(msg, keys.Mode):
			stim := m.eng.Stimulus()
			if stim.SyncMode == config.SyncBeat {
				stim.SyncMode = config.SyncManual
			} else {
				stim.SyncMode = config.SyncBeat
			}
			// Fail-soft: without beat data the engine keeps manual mode
			// and sets the notice shown below.
			_ = m.eng.Apply(stim)

		case key.Matches(msg, keys.Pattern):
			stim := m.eng.Stimulus()
			if stim.MovementPattern == config.PatternSine {
				stim.MovementPattern = config.PatternPingPong
			} else {
				stim.MovementPattern = config.PatternSine
			}
			_ = m.eng.Apply(stim)

		case key.Matches(msg, keys.Faster):
			stim := m.eng.Stimulus()
			stim.FrequencyHz += 0.1
			_ = m.eng.Apply(stim)

		case key.Matches(msg, keys.Slower):
			stim := m.eng.Stimulus()
			stim.FrequencyHz -= 0.1
			_ = m.eng.Apply(stim)

		case key.Matches(msg, keys.Reanalyze):
			m.eng.Analyze()
		}
	}

	return m, nil
}

func (m SessionModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("bilateral stimulation"))
	b.WriteString("\n\n")
	b.WriteString(m.renderTrack())
	b.WriteString("\n\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(infoStyle.Render("space start/stop · m sync mode · p pattern · ↑/↓ rate · a re-analyze · q quit"))
	b.WriteString("\n")

	return b.String()
}

// renderTrack draws the horizontal track with the target at its current
// position and the pulse marker beside it.
func (m SessionModel) renderTrack() string {
	idx := int(m.position * float64(trackWidth-1))
	if idx < 0 {
		idx = 0
	} else if idx > trackWidth-1 {
		idx = trackWidth - 1
	}

	var b strings.Builder
	for i := 0; i < trackWidth; i++ {
		if i == idx {
			b.WriteString(targetStyle.Render("●"))
		} else {
			b.WriteString(trackStyle.Render("─"))
		}
	}

	pulse := "  "
	if m.pulseTicks > 0 {
		pulse = pulseStyle.Render(" ✦")
	}
	return b.String() + pulse
}

func (m SessionModel) renderStatus() string {
	stim := m.eng.Stimulus()

	state := "stopped"
	if m.eng.Running() {
		state = "running"
	}

	tempoLine := "Detected Beat: —"
	if est, ok := m.eng.Tempo(); ok {
		tempoLine = fmt.Sprintf("Detected Beat: %.0f BPM, confidence %.0f%%", est.BPM, est.Confidence*100)
	}

	lines := []string{
		infoStyle.Render(fmt.Sprintf("%s · %s · %s · %.1f Hz", state, stim.SyncMode, stim.MovementPattern, stim.FrequencyHz)),
		infoStyle.Render(tempoLine),
	}
	if notice := m.eng.Notice(); notice != "" {
		lines = append(lines, noticeStyle.Render(notice))
	}
	return strings.Join(lines, "\n")
}
