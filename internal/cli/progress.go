package cli

import (
	"context"
	"fmt"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/groundhog-ai/groundhog/internal/webrag"
)

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// stageLabels maps turn stages to display text and a completion fraction.
var stageLabels = map[webrag.Stage]struct {
	label string
	pct   float64
}{
	webrag.StageFirstRunCheck:  {"Analyzing question", 0.1},
	webrag.StageQueryOptimize:  {"Optimizing search query", 0.3},
	webrag.StageRelevanceCheck: {"Checking cached context", 0.5},
	webrag.StageWebSearch:      {"Searching the web", 0.6},
	webrag.StageStore:          {"Storing results", 0.8},
	webrag.StageRespond:        {"Generating answer", 0.9},
}

// stageMsg carries a turn progress event.
type stageMsg webrag.Event

// turnDoneMsg carries the finished turn.
type turnDoneMsg struct {
	result webrag.TurnResult
	err    error
}

// turnModel is the bubbletea model shown while a chat turn runs.
type turnModel struct {
	progress progress.Model
	theme    Theme
	events   <-chan webrag.Event
	run      tea.Cmd

	label    string
	pct      float64
	result   webrag.TurnResult
	err      error
	done     bool
	canceled bool
	cancel   context.CancelFunc
}

func newTurnModel(events <-chan webrag.Event, run tea.Cmd, cancel context.CancelFunc) turnModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)
	return turnModel{
		progress: prog,
		theme:    defaultTheme,
		events:   events,
		run:      run,
		cancel:   cancel,
		label:    "Starting turn",
	}
}

func (m turnModel) Init() tea.Cmd {
	return tea.Batch(m.run, m.waitForEvent(), m.progress.Init())
}

func (m turnModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			// Cancel the turn; the done message still arrives and quits.
			m.canceled = true
			m.cancel()
			return m, nil
		}

	case stageMsg:
		if info, ok := stageLabels[msg.Stage]; ok {
			m.label = info.label
			m.pct = info.pct
		}
		return m, m.waitForEvent()

	case turnDoneMsg:
		m.result = msg.result
		m.err = msg.err
		m.done = true
		m.pct = 1
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m turnModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m turnModel) renderContent() string {
	if m.done {
		return ""
	}
	status := m.theme.statusStyle().Render(m.label)
	hint := m.theme.hintStyle().Render("Press Ctrl+C to cancel")
	return fmt.Sprintf("%s\n%s\n%s\n", status, m.progress.ViewAs(m.pct), hint)
}

// waitForEvent blocks on the next progress event.
func (m turnModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		if e, ok := <-m.events; ok {
			return stageMsg(e)
		}
		return nil
	}
}

// runTurnWithProgress executes a turn behind an interactive progress bar.
func runTurnWithProgress(ctx context.Context, agent *webrag.Agent, turn webrag.Turn) (webrag.TurnResult, error) {
	events := make(chan webrag.Event, 16)
	agent.WithEvents(func(e webrag.Event) {
		select {
		case events <- e:
		default:
		}
	})

	turnCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	run := func() tea.Msg {
		result, err := agent.RunTurn(turnCtx, turn)
		close(events)
		return turnDoneMsg{result: result, err: err}
	}

	p := tea.NewProgram(newTurnModel(events, run, cancel))
	finalModel, err := p.Run()
	if err != nil {
		return webrag.TurnResult{}, fmt.Errorf("progress UI error: %w", err)
	}

	m, ok := finalModel.(turnModel)
	if !ok {
		return webrag.TurnResult{}, fmt.Errorf("unexpected model type")
	}
	if m.canceled {
		return webrag.TurnResult{}, context.Canceled
	}
	return m.result, m.err
}
