package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lexcodex/dashbot/swarm"
)

// Run starts the interactive dashboard prompt.
func Run(ctx context.Context, orch *swarm.Orchestrator) error {
	if orch == nil {
		return fmt.Errorf("orchestrator is required")
	}
	program := tea.NewProgram(
		NewModel(ctx, orch),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)
	_, err := program.Run()
	return err
}

// reportMsg carries the finished report back into the update loop.
type reportMsg struct {
	request string
	report  string
}

// Model implements the Bubble Tea Model interface: a prompt bar on the
// bottom, the latest report in a scrollable viewport above it.
type Model struct {
	ctx  context.Context
	orch *swarm.Orchestrator

	feed    viewport.Model
	input   textinput.Model
	spinner spinner.Model

	history []string
	busy    bool
	ready   bool

	width  int
	height int
}

// NewModel builds the initial model.
func NewModel(ctx context.Context, orch *swarm.Orchestrator) Model {
	input := textinput.New()
	input.Placeholder = "What do you need? (jira, email, daily note...)"
	input.Prompt = promptStyle.Render("> ")
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = promptStyle

	return Model{
		ctx:     ctx,
		orch:    orch,
		input:   input,
		spinner: spin,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		feedHeight := msg.Height - 5
		if feedHeight < 3 {
			feedHeight = 3
		}
		if !m.ready {
			m.feed = viewport.New(msg.Width, feedHeight)
			m.ready = true
		} else {
			m.feed.Width = msg.Width
			m.feed.Height = feedHeight
		}
		m.refreshFeed()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			request := strings.TrimSpace(m.input.Value())
			if request == "" || m.busy {
				return m, nil
			}
			m.input.Reset()
			m.busy = true
			return m, tea.Batch(m.spinner.Tick, m.executeCmd(request))
		}

	case reportMsg:
		m.busy = false
		m.history = append(m.history,
			headerStyle.Render("Request: ")+msg.request,
			reportBoxStyle.Render(msg.report))
		m.refreshFeed()
		m.feed.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	if m.ready {
		m.feed, cmd = m.feed.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// executeCmd runs the swarm off the update loop. Execute never returns an
// error; failures arrive as text inside the report.
func (m Model) executeCmd(request string) tea.Cmd {
	ctx := m.ctx
	orch := m.orch
	return func() tea.Msg {
		return reportMsg{request: request, report: orch.Execute(ctx, request)}
	}
}

func (m *Model) refreshFeed() {
	if !m.ready {
		return
	}
	if len(m.history) == 0 {
		m.feed.SetContent(dimStyle.Render("No reports yet. Type a request and press enter."))
		return
	}
	m.feed.SetContent(strings.Join(m.history, "\n\n"))
}

func (m Model) View() string {
	if !m.ready {
		return "Starting..."
	}
	status := dimStyle.Render("esc to quit")
	if m.busy {
		status = m.spinner.View() + dimStyle.Render(" routing request...")
	}
	return strings.Join([]string{
		headerStyle.Render("dashbot"),
		m.feed.View(),
		m.input.View(),
		status,
	}, "\n")
}
