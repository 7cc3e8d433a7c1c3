package orchestrator

import (
	"testing"
	"time"

	"github.com/mindguard/mindguard/internal/challenge"
	"github.com/mindguard/mindguard/internal/config"
	"github.com/mindguard/mindguard/internal/content"
	"github.com/mindguard/mindguard/internal/event"
)

func newTestOrchestrator(t *testing.T, settings config.Settings, opts ...Option) (*Orchestrator, *event.Bus) {
	t.Helper()
	bus := event.NewBus()
	opts = append(opts, WithChallengeOptions(
		challenge.WithResultDelay(10*time.Millisecond),
		challenge.WithTickEvery(10*time.Millisecond),
	))
	o := New(bus, content.NewLibrary(), settings, opts...)
	o.Start()
	t.Cleanup(o.Stop)
	return o, bus
}

func waitState(t *testing.T, o *Orchestrator, timeout time.Duration, cond func(State) bool) State {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s := o.State(); cond(s) {
			return s
		}
		time.Sleep(5 * time.Millisecond)
	}
	s := o.State()
	if !cond(s) {
		t.Fatalf("Condition never met, state: %+v", s)
	}
	return s
}

func TestOrchestrator_ChallengeDueOpensRun(t *testing.T) {
	o, bus := newTestOrchestrator(t, enabledSettings())

	bus.Publish(event.NewChallengeDueEvent())

	if got := o.State().Surface; got != SurfaceChallenge {
		t.Fatalf("Surface = %v, want challenge", got)
	}
	run := o.ChallengeRun()
	if run == nil {
		t.Fatal("Expected a live challenge run")
	}
	if len(run.Question().Options) == 0 {
		t.Error("Scheduled challenges use graded quiz questions")
	}
}

func TestOrchestrator_ChallengeCompletionCounts(t *testing.T) {
	o, bus := newTestOrchestrator(t, enabledSettings())

	var completed []event.ChallengeCompletedEvent
	done := make(chan struct{}, 1)
	bus.Subscribe("challenge.completed", func(e event.Event) {
		completed = append(completed, e.(event.ChallengeCompletedEvent))
		done <- struct{}{}
	})

	bus.Publish(event.NewChallengeDueEvent())
	run := o.ChallengeRun()
	run.Select(run.Question().Correct)
	run.Submit()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Completion event never published")
	}

	s := o.State()
	if s.Surface != SurfaceNone {
		t.Errorf("Surface = %v, want none after completion", s.Surface)
	}
	if s.ChallengesCompleted != 1 {
		t.Errorf("ChallengesCompleted = %d, want 1", s.ChallengesCompleted)
	}
	if ev := completed[0]; !ev.Graded || !ev.Correct || ev.Total != 1 {
		t.Errorf("Unexpected completion event: %+v", ev)
	}
	if o.ChallengeRun() != nil {
		t.Error("Run must be discarded after completion")
	}
}

func TestOrchestrator_CloseDiscardsChallengeWithoutCounting(t *testing.T) {
	o, bus := newTestOrchestrator(t, enabledSettings())

	bus.Publish(event.NewChallengeDueEvent())
	o.CloseSurface()

	s := o.State()
	if s.Surface != SurfaceNone || s.ChallengesCompleted != 0 {
		t.Errorf("Close must clear without counting: %+v", s)
	}
	if o.ChallengeRun() != nil {
		t.Error("Run must be discarded on close")
	}
}

func TestOrchestrator_InterceptHandsQueryToChat(t *testing.T) {
	o, bus := newTestOrchestrator(t, enabledSettings())

	var triggered []event.InterceptTriggeredEvent
	bus.Subscribe("intercept.triggered", func(e event.Event) {
		triggered = append(triggered, e.(event.InterceptTriggeredEvent))
	})

	bus.Publish(event.NewInterceptDueEvent())

	s := o.State()
	if s.Surface != SurfaceIntercept {
		t.Fatalf("Surface = %v, want intercept", s.Surface)
	}
	if s.InterceptQuery == "" || s.InterceptResponse == "" {
		t.Fatalf("Intercept payload missing: %+v", s)
	}
	if len(triggered) != 1 || triggered[0].Total != 1 {
		t.Fatalf("Expected one intercept.triggered event, got %v", triggered)
	}

	o.ContinueWithChat()

	s = o.State()
	if s.Surface != SurfaceChat {
		t.Fatalf("Surface = %v, want chat", s.Surface)
	}
	session := o.ChatSession()
	if session == nil || session.Seed() != s.InterceptQuery {
		t.Errorf("Chat seed should carry the intercepted query")
	}
	if s.InterceptsTriggered != 1 {
		t.Errorf("Hand-off must not re-count the intercept, got %d", s.InterceptsTriggered)
	}
	if stats := o.Stats(); stats.InterceptsTriggered != 1 {
		t.Errorf("Stats accessor disagrees: %+v", stats)
	}
}

func TestOrchestrator_ThinkBreakIsUngraded(t *testing.T) {
	o, bus := newTestOrchestrator(t, enabledSettings())

	done := make(chan event.ChallengeCompletedEvent, 1)
	bus.Subscribe("challenge.completed", func(e event.Event) {
		done <- e.(event.ChallengeCompletedEvent)
	})

	bus.Publish(event.NewInterceptDueEvent())
	o.StartThinkBreak()

	run := o.ChallengeRun()
	if run == nil {
		t.Fatal("Think break should open a challenge run")
	}
	if len(run.Question().Options) != 0 {
		t.Error("Think breaks use reflection prompts without options")
	}

	run.Submit()
	select {
	case ev := <-done:
		if ev.Graded {
			t.Errorf("Think break completion must be ungraded, got %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("Think break never completed")
	}
}

func TestOrchestrator_OffModeMidChallenge(t *testing.T) {
	o, bus := newTestOrchestrator(t, enabledSettings())

	bus.Publish(event.NewChallengeDueEvent())
	run := o.ChallengeRun()
	if run == nil {
		t.Fatal("Expected a live run")
	}

	off := enabledSettings()
	off.Mode = config.ModeOff
	o.UpdateSettings(off)

	// The open challenge keeps running and still counts on completion.
	if o.State().Surface != SurfaceChallenge {
		t.Fatal("Challenge must survive the mode change")
	}
	run.Submit()

	s := waitState(t, o, time.Second, func(s State) bool { return s.Surface == SurfaceNone })
	if s.ChallengesCompleted != 1 {
		t.Errorf("ChallengesCompleted = %d, want 1", s.ChallengesCompleted)
	}

	// No further scheduler timers while off.
	bus.Publish(event.NewChallengeDueEvent())
	if o.State().Surface != SurfaceChallenge {
		// A due event still surfaces if published directly; what matters
		// is that the scheduler itself is idle.
		t.Log("direct due event surfaced, checking scheduler instead")
	}
	if o.scheduler.Running() {
		t.Error("Scheduler must be idle in off mode")
	}
}

func TestOrchestrator_ManualChallengeOverridesIntercept(t *testing.T) {
	o, bus := newTestOrchestrator(t, enabledSettings())

	bus.Publish(event.NewInterceptDueEvent())
	o.TakeChallenge()

	if got := o.State().Surface; got != SurfaceChallenge {
		t.Errorf("Surface = %v, want challenge", got)
	}
	if o.ChallengeRun() == nil {
		t.Error("Manual challenge should open a run")
	}
}

func TestOrchestrator_SessionClock(t *testing.T) {
	o, _ := newTestOrchestrator(t, enabledSettings(), WithClockEvery(10*time.Millisecond))

	waitState(t, o, time.Second, func(s State) bool { return s.ElapsedSeconds >= 3 })

	inactive := enabledSettings()
	inactive.Active = false
	o.UpdateSettings(inactive)

	frozen := o.State().ElapsedSeconds
	time.Sleep(100 * time.Millisecond)
	if got := o.State().ElapsedSeconds; got != frozen {
		t.Errorf("Clock advanced while inactive: %d -> %d", frozen, got)
	}
}

func TestOrchestrator_BannerFlowFromDetection(t *testing.T) {
	o, bus := newTestOrchestrator(t, enabledSettings())

	bus.Publish(event.NewDetectionChangedEvent(true, "claude.ai"))
	if got := o.State().Surface; got != SurfaceBanner {
		t.Fatalf("Surface = %v, want banner", got)
	}

	o.OpenChatFromBanner()
	if got := o.State().Surface; got != SurfaceChat {
		t.Fatalf("Surface = %v, want chat", got)
	}
	if session := o.ChatSession(); session == nil || session.Seed() != "" {
		t.Error("Banner chat opens without a seed")
	}
}

func TestOrchestrator_StopTearsEverythingDown(t *testing.T) {
	bus := event.NewBus()
	o := New(bus, content.NewLibrary(), enabledSettings(),
		WithClockEvery(10*time.Millisecond),
		WithChallengeOptions(
			challenge.WithResultDelay(10*time.Millisecond),
			challenge.WithTickEvery(10*time.Millisecond),
		))
	o.Start()

	bus.Publish(event.NewChallengeDueEvent())
	o.Stop()
	o.Stop() // idempotent

	if o.scheduler.Running() {
		t.Error("Scheduler must stop with the orchestrator")
	}

	elapsed := o.State().ElapsedSeconds
	time.Sleep(100 * time.Millisecond)
	if got := o.State().ElapsedSeconds; got != elapsed {
		t.Errorf("Clock ticked after Stop: %d -> %d", elapsed, got)
	}

	// Late bus events must not resurrect a surface.
	bus.Publish(event.NewChallengeDueEvent())
	if got := o.State().Surface; got == SurfaceChallenge && o.ChallengeRun() != nil {
		t.Error("Stopped orchestrator must ignore due events")
	}
}
