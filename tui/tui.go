// Package tui is the interactive terminal frontend: a scrolling log pane
// with a chat input line, driven by bubbletea.
package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// ClientInterface is what the TUI needs from the bot client.
type ClientInterface interface {
	GetUsername() string
	GetAddress() string
	GetMaxLogLines() int
	SendChatMessage(msg string) error
	SendCommand(cmd string) error
	Disconnect(force bool) error
}

// LogMsg appends one line to the log pane.
type LogMsg string

// EnableInputMsg unlocks the chat input once the bot has spawned.
type EnableInputMsg struct{}

// Model is the bubbletea model for the bot console.
type Model struct {
	client ClientInterface

	viewport  viewport.Model
	textInput textinput.Model

	logMu sync.Mutex
	logs  []string

	ready        bool
	inputEnabled bool
}

// NewModel creates the console model. Input starts locked until the bot
// spawns.
func NewModel(client ClientInterface) *Model {
	ti := textinput.New()
	ti.Placeholder = "Connecting..."
	ti.Blur()
	ti.CharLimit = 256
	ti.Width = 50

	return &Model{
		client:    client,
		textInput: ti,
	}
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			_ = m.client.Disconnect(true)
			return m, tea.Quit

		case tea.KeyEnter:
			if !m.inputEnabled {
				return m, nil
			}
			m.submitInput()
			return m, nil
		}

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-3)
			m.viewport.SetContent(m.renderLogs())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 3
		}
		m.textInput.Width = msg.Width - 2

	case LogMsg:
		m.appendLog(string(msg))
		if m.ready {
			// stay put unless the user was already at the bottom
			wasAtBottom := m.viewport.AtBottom()
			m.viewport.SetContent(m.renderLogs())
			if wasAtBottom {
				m.viewport.GotoBottom()
			}
		}
		return m, nil

	case EnableInputMsg:
		m.inputEnabled = true
		m.textInput.Placeholder = "Type a message or /command..."
		m.textInput.Focus()
		return m, nil
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.inputEnabled {
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) submitInput() {
	input := strings.TrimSpace(m.textInput.Value())
	if input == "" {
		return
	}
	m.textInput.SetValue("")

	if strings.HasPrefix(input, "/") {
		if err := m.client.SendCommand(strings.TrimPrefix(input, "/")); err != nil {
			m.appendLog(fmt.Sprintf("error sending command: %v", err))
			return
		}
		m.appendLog("cmd > " + input)
		return
	}
	if err := m.client.SendChatMessage(input); err != nil {
		m.appendLog(fmt.Sprintf("error sending message: %v", err))
	}
}

func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := headerStyle.Render(fmt.Sprintf("mcbot - %s@%s", m.client.GetUsername(), m.client.GetAddress()))

	help := "Enter: send • Ctrl+C/Esc: quit"
	if !m.inputEnabled {
		help = "Waiting for spawn... • Ctrl+C/Esc: quit"
	}

	return fmt.Sprintf(
		"%s\n%s\n%s\n%s",
		header,
		m.viewport.View(),
		promptStyle.Render("> "+m.textInput.View()),
		helpStyle.Render(help),
	)
}

func (m *Model) appendLog(line string) {
	m.logMu.Lock()
	defer m.logMu.Unlock()
	m.logs = append(m.logs, line)

	max := m.client.GetMaxLogLines()
	if max > 0 && len(m.logs) > max {
		m.logs = m.logs[len(m.logs)-max:]
	}
}

func (m *Model) renderLogs() string {
	m.logMu.Lock()
	defer m.logMu.Unlock()
	return strings.Join(m.logs, "\n")
}

// Writer forwards log output into the running program as LogMsg lines.
type Writer struct {
	program *tea.Program
}

func (w *Writer) Write(p []byte) (int, error) {
	msg := strings.TrimSuffix(string(p), "\n")
	if msg != "" {
		w.program.Send(LogMsg(msg))
	}
	return len(p), nil
}

// Start builds the console program and a writer that logs into it. The
// caller runs the program.
func Start(client ClientInterface) (*tea.Program, io.Writer) {
	p := tea.NewProgram(NewModel(client), tea.WithAltScreen())
	return p, &Writer{program: p}
}

// EnableInput unlocks the chat input. Safe to call with a nil program.
func EnableInput(program *tea.Program) {
	if program != nil {
		program.Send(EnableInputMsg{})
	}
}
