// Package schedule converts the frequency setting into recurring intervention
// timers. It owns two periodic timers, one for challenges and one for
// intercepts, and publishes a due event on each tick. It never decides whether
// an intervention actually surfaces; the orchestrator drops due events that
// arrive while another surface is busy.
package schedule

import (
	"sync"
	"time"

	"github.com/mindguard/mindguard/internal/config"
	"github.com/mindguard/mindguard/internal/event"
	"github.com/mindguard/mindguard/internal/logging"
)

// ChallengePeriod returns the interval between challenge due events for a
// frequency setting. Frequency 1 yields 10 seconds, frequency 10 yields 1
// second; out-of-range values are clamped first.
func ChallengePeriod(frequency int) time.Duration {
	f := clampFrequency(frequency)
	return time.Duration(11-f) * time.Second
}

// InterceptPeriod returns the interval between intercept due events. It is
// always exactly twice the challenge period for the same frequency.
func InterceptPeriod(frequency int) time.Duration {
	return 2 * ChallengePeriod(frequency)
}

func clampFrequency(f int) int {
	if f < config.MinFrequency {
		return config.MinFrequency
	}
	if f > config.MaxFrequency {
		return config.MaxFrequency
	}
	return f
}

// Scheduler runs the intervention timers for the current settings. Every call
// to Configure cancels the running timers outright and, when the new settings
// are enabled, starts fresh ones; the periods are never adjusted in place.
type Scheduler struct {
	bus    *event.Bus
	logger *logging.Logger

	mu       sync.Mutex
	settings config.Settings
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// New creates a scheduler publishing on the given bus. It starts idle; call
// Configure with the initial settings to arm the timers.
func New(bus *event.Bus, opts ...Option) *Scheduler {
	s := &Scheduler{
		bus:    bus,
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configure applies new settings. Running timers are always cancelled first,
// so a frequency change restarts both periods from zero rather than letting a
// partially elapsed timer fire early. Timers only start when the settings are
// active and the mode is not off.
func (s *Scheduler) Configure(settings config.Settings) {
	settings = settings.Clamp()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.settings = settings

	if !settings.Enabled() {
		s.logger.Debug("scheduler idle", "active", settings.Active, "mode", settings.Mode)
		return
	}

	challengePeriod := ChallengePeriod(settings.Frequency)
	interceptPeriod := InterceptPeriod(settings.Frequency)
	s.logger.Info("scheduler armed",
		"frequency", settings.Frequency,
		"challenge_period", challengePeriod,
		"intercept_period", interceptPeriod)

	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.loop(s.stopCh, s.doneCh, challengePeriod, interceptPeriod)
}

// loop publishes due events until stopCh closes. The channels are captured as
// arguments so a Configure racing with a tick can never cross generations.
func (s *Scheduler) loop(stopCh, doneCh chan struct{}, challengePeriod, interceptPeriod time.Duration) {
	defer close(doneCh)

	challengeTicker := time.NewTicker(challengePeriod)
	defer challengeTicker.Stop()
	interceptTicker := time.NewTicker(interceptPeriod)
	defer interceptTicker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-challengeTicker.C:
			s.bus.Publish(event.NewChallengeDueEvent())
		case <-interceptTicker.C:
			s.bus.Publish(event.NewInterceptDueEvent())
		}
	}
}

// Running reports whether the timers are currently armed.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopCh != nil
}

// Settings returns the settings last applied via Configure.
func (s *Scheduler) Settings() config.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Stop cancels the timers. The scheduler can be re-armed with Configure.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if s.stopCh == nil {
		return
	}
	close(s.stopCh)
	<-s.doneCh
	s.stopCh = nil
	s.doneCh = nil
}
