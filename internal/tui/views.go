package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mindguard/mindguard/internal/chat"
	"github.com/mindguard/mindguard/internal/orchestrator"
	"github.com/mindguard/mindguard/internal/util"
)

// View renders the widget, the open surface, and the status line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sections []string
	sections = append(sections, m.renderWidget())

	switch m.state.Surface {
	case orchestrator.SurfaceBanner:
		sections = append(sections, m.renderBanner())
	case orchestrator.SurfaceChallenge:
		sections = append(sections, m.renderChallenge())
	case orchestrator.SurfaceChat:
		sections = append(sections, m.renderChat())
	case orchestrator.SurfaceIntercept:
		sections = append(sections, m.renderIntercept())
	}

	sections = append(sections, m.renderStatus())
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

// renderWidget shows the collapsed pill or the expanded settings card.
func (m Model) renderWidget() string {
	if !m.state.WidgetExpanded {
		label := "Mindguard"
		if !m.state.Settings.Active {
			label += " (paused)"
		}
		return titleStyle.Render("🛡 "+label) + mutedStyle.Render("  w: settings")
	}

	s := m.state.Settings
	active := "on"
	if !s.Active {
		active = "off"
	}
	lines := []string{
		titleStyle.Render("Mindguard Settings"),
		"",
		fmt.Sprintf("  active      %-8s (a)", active),
		fmt.Sprintf("  mode        %-8s (m)", s.Mode),
		fmt.Sprintf("  difficulty  %-8d (, .)", s.Difficulty),
		fmt.Sprintf("  frequency   %-8d (- +)", s.Frequency),
		fmt.Sprintf("  directness  %-8d ([ ])", s.Directness),
		"",
		mutedStyle.Render("  w: collapse   o: chat   t: challenge   q: quit"),
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderBanner() string {
	platform := m.state.Platform
	if platform == "" {
		platform = "an AI assistant"
	}
	body := fmt.Sprintf("Looks like you're using %s.\nWant to sharpen your own thinking first?", platform)
	hint := mutedStyle.Render("enter: open chat   d: dismiss")
	return bannerStyle.Render(body + "\n" + hint)
}

func (m Model) renderChallenge() string {
	run := m.orch.ChallengeRun()
	if run == nil {
		return ""
	}
	question := run.Question()

	if result, done := run.Graded(); done && result.Graded {
		verdict := goodStyle.Render("Correct! Nice thinking.")
		if !result.Correct {
			verdict = badStyle.Render("Not quite. Worth another look later.")
		}
		return cardStyle.Render(question.Prompt + "\n\n" + verdict)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Challenge"))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("   %ds left", run.Remaining())))
	b.WriteString("\n\n")
	b.WriteString(question.Prompt)
	b.WriteString("\n")

	if len(question.Options) == 0 {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("Take a moment. enter: done   s: skip"))
		return cardStyle.Render(b.String())
	}

	selected := run.Selected()
	for i, option := range question.Options {
		marker := "( )"
		if i == selected {
			marker = "(•)"
		}
		line := fmt.Sprintf("%s %s", marker, option)
		if i == m.cursor {
			line = selectedOptionStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString("\n" + line)
	}
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("space: select   enter: submit   s: skip   esc: close"))
	return cardStyle.Render(b.String())
}

func (m Model) renderIntercept() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Hold on a second"))
	b.WriteString("\n\n")
	b.WriteString("You were about to ask:\n")
	query := util.TruncateANSI(m.state.InterceptQuery, max(20, m.width-12))
	b.WriteString(selectedOptionStyle.Render("  " + query))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("c: continue with Mindguard   b: think break   esc: close"))
	return interceptStyle.Render(b.String())
}

func (m Model) renderChat() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Mindguard Chat"))
	b.WriteString("\n")
	b.WriteString(m.transcript.View())
	b.WriteString("\n")
	b.WriteString(m.chatInput.View())
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("enter: send   esc: close"))
	return cardStyle.Render(b.String())
}

func (m Model) renderTranscript() string {
	session := m.orch.ChatSession()
	if session == nil {
		return ""
	}

	var lines []string
	for _, msg := range session.Messages() {
		switch msg.Role {
		case chat.RoleUser:
			lines = append(lines, userMsgStyle.Render("you: ")+msg.Body)
		case chat.RoleAssistant:
			lines = append(lines, assistantMsgStyle.Render("mindguard: ")+msg.Body)
		}
	}
	if len(lines) == 0 {
		return mutedStyle.Render("Say what you're working on, in your own words.")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderStatus() string {
	s := m.state
	detection := "no AI page detected"
	if s.Detected {
		detection = "detected: " + s.Platform
	}
	return statusStyle.Render(fmt.Sprintf("%s · session %s · challenges %d · intercepts %d",
		detection,
		formatElapsed(s.ElapsedSeconds),
		s.ChallengesCompleted,
		s.InterceptsTriggered))
}

func formatElapsed(seconds uint64) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
