package main

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/config"
	"github.com/wippyai/hostbridge/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const advanceStep = 100 * time.Millisecond

type interactiveModel struct {
	err      error
	rt       *runtime.Runtime
	logger   *zap.Logger
	cfg      *config.Config
	console  *bytes.Buffer
	expr     string
	views    []isolateView
	isolates []string
	input    textinput.Model
	selected int
	state    modelState
}

type modelState int

const (
	stateInput modelState = iota
	stateShowResult
)

func newInteractiveModel(cfg *config.Config) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = `document.createElement("div")`
	ti.Prompt = "> "
	ti.Width = 60
	ti.Focus()

	return &interactiveModel{
		cfg:     cfg,
		console: &bytes.Buffer{},
		input:   ti,
		state:   stateInput,
	}
}

type readyMsg struct {
	err    error
	rt     *runtime.Runtime
	logger *zap.Logger
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.start)
}

func (m *interactiveModel) start() tea.Msg {
	rt, logger, err := newRuntime(m.cfg, m.console)
	if err != nil {
		return readyMsg{err: err}
	}
	return readyMsg{rt: rt, logger: logger}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.shutdown()
			return m, tea.Quit

		case "up":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down":
			if m.selected < len(m.isolates)-1 {
				m.selected++
			}
			return m, nil

		case "ctrl+t":
			if m.rt != nil {
				fired := m.rt.Advance(advanceStep)
				fmt.Fprintf(m.console, "advanced %s, %d timer(s) fired\n", advanceStep, fired)
			}
			return m, nil

		case "enter":
			switch m.state {
			case stateInput:
				m.evaluate()
				m.state = stateShowResult
			case stateShowResult:
				m.state = stateInput
				m.input.Reset()
			}
			return m, nil

		case "esc":
			if m.state == stateShowResult {
				m.state = stateInput
				return m, nil
			}
			m.shutdown()
			return m, tea.Quit
		}

	case readyMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.rt = msg.rt
		m.logger = msg.logger
		for _, tok := range m.rt.Isolates() {
			m.isolates = append(m.isolates, tok.Name())
		}
		return m, nil
	}

	if m.state == stateInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// evaluate runs the expression in the selected isolate. It runs on the
// update loop since the runtime is single-threaded.
func (m *interactiveModel) evaluate() {
	m.expr = strings.TrimSpace(m.input.Value())
	m.views = nil
	m.err = nil
	if m.rt == nil || m.expr == "" {
		return
	}

	err := m.rt.In(m.isolates[m.selected], func() {
		m.views, m.err = inspect(m.rt, m.expr)
	})
	if err != nil {
		m.err = err
	}
}

func (m *interactiveModel) shutdown() {
	if m.rt != nil {
		m.rt.Close()
	}
	if m.logger != nil {
		_ = m.logger.Sync()
	}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress ctrl+c to quit.", m.err))
	}

	if m.rt == nil {
		return "Starting runtime..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Host Bridge"))
	b.WriteString(" ")
	b.WriteString(typeStyle.Render(m.rt.Bridge().Objects().Stats().String()))
	b.WriteString("\n\n")

	b.WriteString("Isolate:\n")
	for i, name := range m.isolates {
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + name))
		} else {
			b.WriteString("  " + name)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.state {
	case stateInput:
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("↑/↓ isolate • enter eval • ctrl+t advance timers • esc quit"))

	case stateShowResult:
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(m.expr)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			for _, v := range m.views {
				b.WriteString(resultStyle.Render(v.String()))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • ctrl+t advance timers • ctrl+c quit"))
	}

	if m.console.Len() > 0 {
		b.WriteString("\n\n")
		b.WriteString(typeStyle.Render("console"))
		b.WriteString("\n")
		b.WriteString(lastLines(m.console.String(), 8))
	}

	return b.String()
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

func runInteractive(cfg *config.Config) error {
	p := tea.NewProgram(newInteractiveModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
