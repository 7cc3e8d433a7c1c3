package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mindguard/mindguard/internal/config"
	"github.com/mindguard/mindguard/internal/orchestrator"
)

// Model is the Bubbletea model for the assistant overlay. It is a thin view
// over the orchestrator: every key press turns into an orchestrator call, and
// every refresh re-reads the orchestrator's state. The model itself holds
// only presentation state.
type Model struct {
	orch  *orchestrator.Orchestrator
	state orchestrator.State

	width  int
	height int

	// Challenge presentation: the option the cursor is on.
	cursor int

	chatInput  textinput.Model
	transcript viewport.Model

	quitting bool
}

// NewModel creates the model for a running orchestrator.
func NewModel(orch *orchestrator.Orchestrator) Model {
	input := textinput.New()
	input.Placeholder = "Ask Mindguard..."
	input.CharLimit = 280

	return Model{
		orch:       orch,
		state:      orch.State(),
		chatInput:  input,
		transcript: viewport.New(60, 10),
	}
}

// Init starts the refresh loop.
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles UI messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.transcript.Width = msg.Width - 8
		m.transcript.Height = max(4, msg.Height-10)
		m.chatInput.Width = msg.Width - 12
		return m, nil

	case tickMsg:
		m = m.refresh()
		return m, tick()

	case busMsg:
		m = m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// refresh pulls the latest orchestrator state and reconciles presentation
// state with it.
func (m Model) refresh() Model {
	prev := m.state.Surface
	m.state = m.orch.State()

	if m.state.Surface != prev {
		switch m.state.Surface {
		case orchestrator.SurfaceChallenge:
			m.cursor = 0
		case orchestrator.SurfaceChat:
			m.chatInput.SetValue(m.state.ChatSeed)
			m.chatInput.Focus()
		}
		if prev == orchestrator.SurfaceChat {
			m.chatInput.Blur()
			m.chatInput.SetValue("")
		}
	}

	if m.state.Surface == orchestrator.SurfaceChat {
		m.transcript.SetContent(m.renderTranscript())
		m.transcript.GotoBottom()
	}
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The chat input swallows most keys while it has focus.
	if m.state.Surface == orchestrator.SurfaceChat {
		return m.handleChatKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "w":
		m.orch.SetWidgetExpanded(!m.state.WidgetExpanded)
		return m.refresh(), nil
	case "o":
		m.orch.OpenChat()
		return m.refresh(), nil
	case "t":
		m.orch.TakeChallenge()
		return m.refresh(), nil
	}

	switch m.state.Surface {
	case orchestrator.SurfaceBanner:
		return m.handleBannerKey(msg)
	case orchestrator.SurfaceChallenge:
		return m.handleChallengeKey(msg)
	case orchestrator.SurfaceIntercept:
		return m.handleInterceptKey(msg)
	}

	if m.state.WidgetExpanded {
		return m.handleSettingsKey(msg)
	}
	return m, nil
}

func (m Model) handleBannerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "d", "esc":
		m.orch.DismissBanner()
	case "enter":
		m.orch.OpenChatFromBanner()
	}
	return m.refresh(), nil
}

func (m Model) handleChallengeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	run := m.orch.ChallengeRun()
	if run == nil {
		return m, nil
	}
	options := len(run.Question().Options)

	switch msg.String() {
	case "up", "k":
		if options > 0 && m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if options > 0 && m.cursor < options-1 {
			m.cursor++
		}
	case " ":
		run.Select(m.cursor)
	case "enter":
		if options > 0 {
			run.Select(m.cursor)
		}
		run.Submit()
	case "s":
		run.Skip()
	case "esc":
		m.orch.CloseSurface()
	}
	return m.refresh(), nil
}

func (m Model) handleInterceptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "c", "enter":
		m.orch.ContinueWithChat()
	case "b":
		m.orch.StartThinkBreak()
	case "esc":
		m.orch.CloseSurface()
	}
	return m.refresh(), nil
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "esc":
		m.orch.CloseSurface()
		return m.refresh(), nil
	case "enter":
		m.orch.SendChat(m.chatInput.Value())
		m.chatInput.SetValue("")
		return m.refresh(), nil
	}

	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

// handleSettingsKey adjusts settings from the expanded widget card.
func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.state.Settings

	switch msg.String() {
	case "a":
		s.Active = !s.Active
	case "m":
		s.Mode = nextMode(s.Mode)
	case "-":
		s.Frequency--
	case "=", "+":
		s.Frequency++
	case ",":
		s.Difficulty--
	case ".":
		s.Difficulty++
	case "[":
		s.Directness--
	case "]":
		s.Directness++
	default:
		return m, nil
	}

	m.orch.UpdateSettings(s)
	return m.refresh(), nil
}

func nextMode(mode config.Mode) config.Mode {
	modes := config.Modes()
	for i, candidate := range modes {
		if candidate == mode {
			return modes[(i+1)%len(modes)]
		}
	}
	return config.ModeEnhance
}
