// Package tui renders the assistant overlay: the collapsed widget, the
// settings card, and the four surfaces arbitrated by the orchestrator. It
// never mutates orchestrator state directly; every user action goes through
// an orchestrator method and every display reads back through accessors.
package tui

import (
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mindguard/mindguard/internal/event"
	"github.com/mindguard/mindguard/internal/orchestrator"
)

// App wraps the Bubbletea program.
type App struct {
	program *tea.Program
	model   Model
	bus     *event.Bus
	orch    *orchestrator.Orchestrator
}

// New creates the TUI application for a running orchestrator.
func New(orch *orchestrator.Orchestrator, bus *event.Bus) *App {
	return &App{
		model: NewModel(orch),
		bus:   bus,
		orch:  orch,
	}
}

// Run starts the TUI and blocks until the user quits.
func (a *App) Run() error {
	a.program = tea.NewProgram(
		a.model,
		tea.WithAltScreen(),
	)

	// Core events reach the UI thread through program.Send, so the model
	// refreshes the moment a surface changes rather than on the next tick.
	subID := a.bus.SubscribeAll(func(e event.Event) {
		a.program.Send(busMsg{event: e})
	})
	defer a.bus.Unsubscribe(subID)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		if a.program != nil {
			a.program.Send(tea.Quit())
		}
	}()

	_, err := a.program.Run()
	return err
}
