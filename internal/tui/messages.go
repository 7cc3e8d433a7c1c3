package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mindguard/mindguard/internal/event"
)

// tickMsg drives the periodic UI refresh: the countdown display, the session
// clock, and the chat transcript all read live state on each tick.
type tickMsg time.Time

// busMsg wraps a core event forwarded from the bus onto the UI thread.
type busMsg struct {
	event event.Event
}

// tick returns a command that sends a tickMsg after a short delay.
func tick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
