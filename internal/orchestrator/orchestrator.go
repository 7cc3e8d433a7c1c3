// Package orchestrator is the top-level controller. It consumes detection
// events, scheduler events, and user actions, owns the single surface slot,
// and owns the session counters. All state lives in an immutable State record
// advanced by a pure reducer; this file wires the reducer to the event bus
// and manages the side-effectful collaborators (challenge runs, chat
// sessions, the session clock).
package orchestrator

import (
	"sync"
	"time"

	"github.com/mindguard/mindguard/internal/challenge"
	"github.com/mindguard/mindguard/internal/chat"
	"github.com/mindguard/mindguard/internal/config"
	"github.com/mindguard/mindguard/internal/content"
	"github.com/mindguard/mindguard/internal/event"
	"github.com/mindguard/mindguard/internal/logging"
	"github.com/mindguard/mindguard/internal/schedule"
)

// Orchestrator drives the intervention state machine. Create with New, arm
// with Start, and always Stop on teardown: Stop cancels the scheduler, the
// session clock, and any live challenge or chat collaborator together.
type Orchestrator struct {
	bus       *event.Bus
	library   *content.Library
	scheduler *schedule.Scheduler
	logger    *logging.Logger

	clockEvery    time.Duration
	challengeOpts []challenge.Option
	chatOpts      []chat.Option

	mu      sync.Mutex
	state   State
	run     *challenge.Run
	session *chat.Session
	started bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	subIDs  []string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithClockEvery overrides the one-second session clock cadence. Tests use
// this to run the clock fast.
func WithClockEvery(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.clockEvery = d
		}
	}
}

// WithChallengeOptions appends options applied to every challenge run.
func WithChallengeOptions(opts ...challenge.Option) Option {
	return func(o *Orchestrator) {
		o.challengeOpts = append(o.challengeOpts, opts...)
	}
}

// WithChatOptions appends options applied to every chat session.
func WithChatOptions(opts ...chat.Option) Option {
	return func(o *Orchestrator) {
		o.chatOpts = append(o.chatOpts, opts...)
	}
}

// New creates an orchestrator publishing and subscribing on the given bus.
func New(bus *event.Bus, library *content.Library, settings config.Settings, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		bus:        bus,
		library:    library,
		logger:     logging.NopLogger(),
		clockEvery: time.Second,
		state:      initialState(settings),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.scheduler = schedule.New(bus, schedule.WithLogger(o.logger))
	return o
}

// Start subscribes to bus events, arms the scheduler for the current
// settings, and starts the session clock. Starting twice is a no-op.
func (o *Orchestrator) Start() {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return
	}
	o.started = true
	o.stopCh = make(chan struct{})
	o.doneCh = make(chan struct{})
	settings := o.state.Settings
	o.mu.Unlock()

	subIDs := []string{
		o.bus.Subscribe("detection.changed", func(e event.Event) {
			dc := e.(event.DetectionChangedEvent)
			o.dispatch(actionDetectionChanged{Detected: dc.Detected, Platform: dc.Platform})
		}),
		o.bus.Subscribe("schedule.challenge_due", func(event.Event) {
			o.dispatch(actionChallengeDue{})
		}),
		o.bus.Subscribe("schedule.intercept_due", func(event.Event) {
			payload := o.library.PickIntercept()
			o.dispatch(actionInterceptDue{Query: payload.Query, CannedResponse: payload.CannedResponse})
		}),
	}
	o.mu.Lock()
	o.subIDs = subIDs
	o.mu.Unlock()

	o.scheduler.Configure(settings)
	go o.clock()
}

// clock ticks the session timer. The reducer gates the increment on
// active && mode != off, so the ticker itself never needs reconfiguring.
func (o *Orchestrator) clock() {
	defer close(o.doneCh)

	ticker := time.NewTicker(o.clockEvery)
	defer ticker.Stop()

	for {
		select {
		case <-o.stopCh:
			return
		case <-ticker.C:
			o.dispatch(actionSessionTick{})
		}
	}
}

// State returns a copy of the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// SessionStats are the cumulative session counters. They reset only when the
// process restarts.
type SessionStats struct {
	ElapsedSeconds      uint64
	ChallengesCompleted uint64
	InterceptsTriggered uint64
}

// Stats returns a copy of the session counters.
func (o *Orchestrator) Stats() SessionStats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return SessionStats{
		ElapsedSeconds:      o.state.ElapsedSeconds,
		ChallengesCompleted: o.state.ChallengesCompleted,
		InterceptsTriggered: o.state.InterceptsTriggered,
	}
}

// ChallengeRun returns the live challenge run, or nil.
func (o *Orchestrator) ChallengeRun() *challenge.Run {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.run
}

// ChatSession returns the live chat session, or nil.
func (o *Orchestrator) ChatSession() *chat.Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session
}

// UpdateSettings applies new settings: the reducer stores them and the
// scheduler cancels and restarts its timers. An open challenge keeps running
// even when the new mode is off.
func (o *Orchestrator) UpdateSettings(settings config.Settings) {
	o.dispatch(actionSettingsChanged{Settings: settings})
	o.scheduler.Configure(settings.Clamp())
}

// DismissBanner hides the banner until the next detection episode.
func (o *Orchestrator) DismissBanner() {
	o.dispatch(actionBannerDismissed{})
}

// OpenChatFromBanner accepts the banner invitation.
func (o *Orchestrator) OpenChatFromBanner() {
	o.dispatch(actionBannerOpenChat{})
}

// OpenChat opens the chat surface on explicit user request, overriding
// whatever surface is open.
func (o *Orchestrator) OpenChat() {
	o.dispatch(actionOpenChat{})
}

// TakeChallenge opens a challenge on explicit user request, overriding
// whatever surface is open.
func (o *Orchestrator) TakeChallenge() {
	o.dispatch(actionTakeChallenge{})
}

// ContinueWithChat hands the intercepted query off to a chat session.
func (o *Orchestrator) ContinueWithChat() {
	o.dispatch(actionInterceptContinueChat{})
}

// StartThinkBreak swaps the intercept for a reflection challenge.
func (o *Orchestrator) StartThinkBreak() {
	o.dispatch(actionInterceptThinkBreak{})
}

// CloseSurface closes the open chat, challenge, or intercept without grading
// or counting it.
func (o *Orchestrator) CloseSurface() {
	o.dispatch(actionSurfaceClosed{})
}

// SetWidgetExpanded toggles the widget between its collapsed pill and the
// expanded settings card.
func (o *Orchestrator) SetWidgetExpanded(expanded bool) {
	o.dispatch(actionSetWidgetExpanded{Expanded: expanded})
}

// SelectAnswer forwards an option choice to the live challenge.
func (o *Orchestrator) SelectAnswer(index int) {
	if run := o.ChallengeRun(); run != nil {
		run.Select(index)
	}
}

// SubmitAnswer grades the live challenge with the current selection.
func (o *Orchestrator) SubmitAnswer() {
	if run := o.ChallengeRun(); run != nil {
		run.Submit()
	}
}

// SkipChallenge completes the live challenge without grading.
func (o *Orchestrator) SkipChallenge() {
	if run := o.ChallengeRun(); run != nil {
		run.Skip()
	}
}

// SendChat forwards a message to the live chat session.
func (o *Orchestrator) SendChat(text string) {
	o.mu.Lock()
	session := o.session
	o.mu.Unlock()
	if session != nil {
		session.Send(text)
	}
}

// Stop tears everything down: scheduler timers, the session clock, bus
// subscriptions, and any live collaborator. No event fires after it returns.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if !o.started {
		o.mu.Unlock()
		return
	}
	o.started = false
	stopCh := o.stopCh
	doneCh := o.doneCh
	run := o.run
	session := o.session
	o.run = nil
	o.session = nil
	subIDs := o.subIDs
	o.subIDs = nil
	o.mu.Unlock()

	for _, id := range subIDs {
		o.bus.Unsubscribe(id)
	}
	o.scheduler.Stop()
	close(stopCh)
	<-doneCh
	if run != nil {
		run.Stop()
	}
	if session != nil {
		session.Close()
	}
}

// dispatch applies an action, then reconciles collaborators and publishes
// events outside the lock. It is the only writer of o.state.
func (o *Orchestrator) dispatch(a Action) {
	o.mu.Lock()
	if !o.started && o.stopCh != nil {
		// Torn down; late actions are structural defects upstream, but
		// they must not resurrect collaborators.
		o.mu.Unlock()
		return
	}
	prev := o.state
	next := reduce(prev, a)
	o.state = next

	var stopRun *challenge.Run
	var closeSession *chat.Session
	if prev.Surface == SurfaceChallenge && next.Surface != SurfaceChallenge {
		stopRun = o.run
		o.run = nil
	}
	if prev.Surface == SurfaceChat && next.Surface != SurfaceChat {
		closeSession = o.session
		o.session = nil
	}

	startChallenge := next.Surface == SurfaceChallenge && prev.Surface != SurfaceChallenge
	startChat := next.Surface == SurfaceChat && prev.Surface != SurfaceChat
	_, thinkBreak := a.(actionInterceptThinkBreak)

	var newRun *challenge.Run
	if startChallenge {
		newRun = o.newRunLocked(thinkBreak)
		o.run = newRun
	}
	var newSession *chat.Session
	if startChat {
		newSession = o.newSessionLocked(next.ChatSeed)
		o.session = newSession
	}
	o.mu.Unlock()

	// Side effects after the lock: collaborator callbacks re-enter dispatch.
	if stopRun != nil {
		if _, completed := a.(actionChallengeCompleted); !completed {
			stopRun.Stop()
		}
	}
	if closeSession != nil {
		closeSession.Close()
	}
	if newRun != nil {
		newRun.Start()
	}

	if prev.Surface != next.Surface {
		o.logger.Info("surface changed", "from", string(prev.Surface), "to", string(next.Surface))
		o.bus.Publish(event.NewSurfaceChangedEvent(string(prev.Surface), string(next.Surface)))
	}
	if next.InterceptsTriggered > prev.InterceptsTriggered {
		o.bus.Publish(event.NewInterceptTriggeredEvent(next.InterceptQuery, next.InterceptsTriggered))
	}
	if next.ElapsedSeconds > prev.ElapsedSeconds {
		o.bus.Publish(event.NewSessionTickEvent(next.ElapsedSeconds))
	}
}

// newRunLocked builds the challenge run for the current mode. A think break
// uses a reflection prompt with no options, which completes ungraded.
func (o *Orchestrator) newRunLocked(thinkBreak bool) *challenge.Run {
	var question content.Question
	if thinkBreak {
		question = content.Question{Prompt: o.library.PickThinkBreak()}
	} else {
		question = o.library.PickQuestion(o.state.Settings.Mode)
	}

	opts := append([]challenge.Option{
		challenge.WithLogger(o.logger),
		challenge.OnComplete(o.challengeCompleted),
	}, o.challengeOpts...)
	return challenge.New(question, o.state.Settings.Difficulty, opts...)
}

// challengeCompleted is the completion callback of every run.
func (o *Orchestrator) challengeCompleted(result challenge.Result) {
	o.dispatch(actionChallengeCompleted{})

	o.mu.Lock()
	total := o.state.ChallengesCompleted
	o.mu.Unlock()
	o.bus.Publish(event.NewChallengeCompletedEvent(result.Graded, result.Correct, total))
}

func (o *Orchestrator) newSessionLocked(seed string) *chat.Session {
	opts := append([]chat.Option{
		chat.WithSeed(seed),
		chat.WithLogger(o.logger),
		chat.WithDirectness(func() int {
			o.mu.Lock()
			defer o.mu.Unlock()
			return o.state.Settings.Directness
		}),
	}, o.chatOpts...)
	return chat.NewSession(o.library, opts...)
}
