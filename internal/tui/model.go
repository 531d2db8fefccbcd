package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vito/progrock"
)

const (
	statusRunning   = "running"
	statusCompleted = "completed"
	statusFailed    = "failed"
	statusCached    = "cached"
)

// logTailLines is how many recent output lines are shown under the running
// stage.
const logTailLines = 4

// stageState represents one pipeline stage vertex in the TUI.
type stageState struct {
	ID     string
	Name   string
	Status string
	tail   []string
}

type styles struct {
	running   lipgloss.Style
	completed lipgloss.Style
	failed    lipgloss.Style
	cached    lipgloss.Style
	log       lipgloss.Style
}

// Model is the Bubble Tea model for the TUI, managing pipeline stages and
// tape updates.
type Model struct {
	tape    TapeSource
	stages  []stageState
	width   int
	height  int
	spinner spinner.Model
	styles  styles
}

// NewModel creates a new TUI model with the given tape source.
func NewModel(tape TapeSource) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow"))

	return &Model{
		tape:    tape,
		spinner: s,
		styles: styles{
			running:   lipgloss.NewStyle().Foreground(lipgloss.Color("yellow")),
			completed: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),  // Green
			failed:    lipgloss.NewStyle().Foreground(lipgloss.Color("160")), // Red
			cached:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Faint(true),
			log:       lipgloss.NewStyle().Foreground(lipgloss.Color("246")),
		},
	}
}

// Init initializes the model and starts reading from the tape.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		WaitForTape(m.tape),
		m.spinner.Tick,
	)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case MsgTapeUpdate:
		m.processUpdate(msg.Update)
		return m, WaitForTape(m.tape)
	case MsgTapeEnded:
		return m, tea.Quit
	}
	return m, nil
}

// processUpdate folds one tape update into the stage list.
func (m *Model) processUpdate(update *progrock.StatusUpdate) {
	for _, v := range update.Vertexes {
		m.updateOrAddStage(v)
	}
	for _, l := range update.Logs {
		m.appendLog(l.Vertex, string(l.Data))
	}
}

func (m *Model) updateOrAddStage(v *progrock.Vertex) {
	for i := range m.stages {
		if m.stages[i].ID == v.Id {
			m.stages[i].Status = vertexStatus(v)
			return
		}
	}
	m.stages = append(m.stages, stageState{
		ID:     v.Id,
		Name:   v.Name,
		Status: vertexStatus(v),
	})
}

func vertexStatus(v *progrock.Vertex) string {
	switch {
	case v.Cached:
		return statusCached
	case v.Completed == nil:
		return statusRunning
	case v.Error != nil:
		return statusFailed
	default:
		return statusCompleted
	}
}

// appendLog keeps a short tail of output lines per stage, enough to see
// download and extraction progress without scrolling.
func (m *Model) appendLog(vertexID, text string) {
	for i := range m.stages {
		if m.stages[i].ID != vertexID {
			continue
		}
		for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
			if line == "" {
				continue
			}
			m.stages[i].tail = append(m.stages[i].tail, line)
			if len(m.stages[i].tail) > logTailLines {
				m.stages[i].tail = m.stages[i].tail[1:]
			}
		}
		return
	}
}

// View renders the current state of the model as a string.
func (m *Model) View() string {
	var s strings.Builder

	for _, stage := range m.stages {
		var icon string
		var style lipgloss.Style
		switch stage.Status {
		case statusRunning:
			icon = m.spinner.View()
			style = m.styles.running
		case statusCompleted:
			icon = "✓"
			style = m.styles.completed
		case statusFailed:
			icon = "✗"
			style = m.styles.failed
		default:
			icon = "≡"
			style = m.styles.cached
		}

		fmt.Fprintf(&s, "%s %s\n", style.Render(icon), stage.Name)

		// Only the active stage shows its output tail.
		if stage.Status == statusRunning {
			for _, line := range stage.tail {
				fmt.Fprintf(&s, "    %s\n", m.styles.log.Render(line))
			}
		}
	}

	return s.String()
}
