// Package ui renders live progress for a synthesis run.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/dgnsrekt/vaani/tts"
)

var (
	stageStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AAFF")) // Blue
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")) // Green
	abortStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")) // Red
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")) // Yellow
	counterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")) // Gray
)

type eventMsg tts.ProgressEvent

// finishedMsg signals that the run closed its event channel.
type finishedMsg struct{}

type model struct {
	events <-chan tts.ProgressEvent

	spinner  spinner.Model
	progress progress.Model

	state    tts.RunState
	segment  int
	total    int
	failures int
	reason   string
	width    int
}

// NewProgram returns a Tea program that follows a synthesis run over
// its progress channel and exits when the channel closes.
func NewProgram(events <-chan tts.ProgressEvent) *tea.Program {
	return tea.NewProgram(newModel(events))
}

func newModel(events <-chan tts.ProgressEvent) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = stageStyle

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(40),
	)

	return model{
		events:   events,
		spinner:  s,
		progress: p,
		state:    tts.StateValidating,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvents())
}

// listenForEvents waits for the next progress event. The run closes
// the channel when it returns, which ends the program.
func (m model) listenForEvents() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return finishedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 10; w > 10 {
			m.progress.Width = w
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case eventMsg:
		m = m.apply(tts.ProgressEvent(msg))
		cmds = append(cmds, m.listenForEvents())

	case finishedMsg:
		return m, tea.Quit

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m model) apply(ev tts.ProgressEvent) model {
	m.state = ev.State
	if ev.Segment > 0 {
		m.segment = ev.Segment
	}
	if ev.Total > 0 {
		m.total = ev.Total
	}
	m.failures = ev.Failures
	m.reason = ev.Reason
	return m
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(m.fit(m.statusLine()))
	b.WriteString("\n")

	if m.total > 0 && m.state != tts.StateDone && m.state != tts.StateAborted {
		frac := float64(m.segment) / float64(m.total)
		b.WriteString(m.progress.ViewAs(frac))
		b.WriteString(counterStyle.Render(fmt.Sprintf(" %d/%d", m.segment, m.total)))
		b.WriteString("\n")
	}

	if m.failures > 0 {
		line := fmt.Sprintf("%d of %d segments failed", m.failures, m.total)
		if m.reason != "" {
			line += " (" + m.reason + ")"
		}
		b.WriteString(m.fit(warnStyle.Render(line)))
		b.WriteString("\n")
	}

	return b.String()
}

// fit truncates a rendered line to the terminal width once one is
// known.
func (m model) fit(s string) string {
	if m.width <= 2 {
		return s
	}
	return truncate.StringWithTail(s, uint(m.width-2), "…")
}

func (m model) statusLine() string {
	switch m.state {
	case tts.StateDone:
		return doneStyle.Render("✓ " + m.stageText())
	case tts.StateAborted:
		return abortStyle.Render("✗ " + m.stageText())
	default:
		return m.spinner.View() + " " + stageStyle.Render(m.stageText())
	}
}

func (m model) stageText() string {
	switch m.state {
	case tts.StateValidating:
		return "Validating input"
	case tts.StateDetecting:
		return "Detecting language"
	case tts.StateChunking:
		return "Splitting into segments"
	case tts.StateDispatching:
		if m.segment > 0 {
			return fmt.Sprintf("Synthesizing segment %d of %d", m.segment, m.total)
		}
		return "Synthesizing"
	case tts.StateAssembling:
		return "Assembling audio"
	case tts.StateDone:
		return "Done"
	case tts.StateAborted:
		return "Aborted"
	default:
		return m.state.String()
	}
}
