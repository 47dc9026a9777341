package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/wifiprov/internal/manager"
)

// maxHistory bounds the transitions kept on screen
const maxHistory = 10

// StateMsg reports a manager state transition
type StateMsg struct {
	From manager.State
	To   manager.State
	At   time.Time
}

// DoneMsg reports that the manager run loop returned
type DoneMsg struct {
	Err error
}

// Monitor is a Bubble Tea model following the connection manager
type Monitor struct {
	title   string
	params  []Detail
	spinner spinner.Model
	width   int

	state   manager.State
	since   time.Time
	history []StateMsg

	done     bool
	err      error
	quitting bool

	now func() time.Time
}

// NewMonitor creates a monitor in the disconnected state
func NewMonitor(title string, params ...Detail) Monitor {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(PrimaryColor)),
	)
	return Monitor{
		title:   title,
		params:  params,
		spinner: s,
		width:   GetTerminalWidth(),
		state:   manager.StateDisconnected,
		since:   time.Now(),
		now:     time.Now,
	}
}

// Init implements tea.Model
func (m Monitor) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model
func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = clampWidth(msg.Width, nil)

	case StateMsg:
		m.state = msg.To
		m.since = msg.At
		m.history = append(m.history, msg)
		if len(m.history) > maxHistory {
			m.history = m.history[len(m.history)-maxHistory:]
		}

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model
func (m Monitor) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(strings.ToUpper(m.title)))
	b.WriteString("\n")
	for _, p := range m.params {
		b.WriteString(KeyStyle.Render(p.Key+":") + " " + ValueStyle.Render(p.Value) + "\n")
	}
	b.WriteString("\n")

	marker := PendingMarker
	switch {
	case m.state == manager.StateConnected:
		marker = lipgloss.NewStyle().Foreground(SuccessColor).Render(SuccessMarker)
	case !m.done && (m.state == manager.StateConnecting || m.state == manager.StateAccessPoint):
		marker = m.spinner.View()
	}
	elapsed := m.now().Sub(m.since).Truncate(time.Second)
	fmt.Fprintf(&b, "%s %s %s\n", marker, StateLabel(m.state), SubtitleStyle.Render(fmt.Sprintf("for %v", elapsed)))

	if len(m.history) > 0 {
		b.WriteString("\n")
		for _, h := range m.history {
			fmt.Fprintf(&b, "  %s  %s → %s\n",
				SubtitleStyle.Render(h.At.Format("15:04:05")),
				h.From, h.To,
			)
		}
	}
	b.WriteString("\n")

	switch {
	case m.done && m.err != nil:
		b.WriteString(NewFailureResult("Connection manager stopped", m.err).SetWidth(m.width).Render())
		b.WriteString("\n")
	case m.done:
		b.WriteString(NewSuccessResult("Connected").SetWidth(m.width).Render())
		b.WriteString("\n")
	case !m.quitting:
		b.WriteString(HintStyle.Render("press q to quit"))
		b.WriteString("\n")
	}

	return b.String()
}

// State returns the last reported state
func (m Monitor) State() manager.State {
	return m.state
}

// Err returns the run loop error, once done
func (m Monitor) Err() error {
	return m.err
}

// Done reports whether the run loop returned
func (m Monitor) Done() bool {
	return m.done
}

// Quitting reports whether the user asked to quit
func (m Monitor) Quitting() bool {
	return m.quitting
}
