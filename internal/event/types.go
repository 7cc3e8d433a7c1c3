package event

import "time"

// Event is the interface that all events must implement.
// It provides a common way to identify and timestamp events.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "detection.changed", "surface.changed")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Detection Events
// -----------------------------------------------------------------------------

// DetectionChangedEvent is emitted by the detection watcher when the page
// verdict flips. The watcher suppresses republication of unchanged verdicts,
// so consumers can treat every event as a real transition.
type DetectionChangedEvent struct {
	baseEvent
	Detected bool   // Whether the page now looks like an AI chat interface
	Platform string // Human-readable platform label ("" when not detected)
}

// NewDetectionChangedEvent creates a DetectionChangedEvent.
func NewDetectionChangedEvent(detected bool, platform string) DetectionChangedEvent {
	return DetectionChangedEvent{
		baseEvent: newBaseEvent("detection.changed"),
		Detected:  detected,
		Platform:  platform,
	}
}

// -----------------------------------------------------------------------------
// Scheduler Events
// -----------------------------------------------------------------------------

// ChallengeDueEvent is emitted by the scheduler when the challenge timer
// fires. The scheduler emits unconditionally; the orchestrator decides whether
// the event is acted on or dropped.
type ChallengeDueEvent struct {
	baseEvent
}

// NewChallengeDueEvent creates a ChallengeDueEvent.
func NewChallengeDueEvent() ChallengeDueEvent {
	return ChallengeDueEvent{baseEvent: newBaseEvent("schedule.challenge_due")}
}

// InterceptDueEvent is emitted by the scheduler when the intercept timer
// fires. Same drop-if-busy contract as ChallengeDueEvent.
type InterceptDueEvent struct {
	baseEvent
}

// NewInterceptDueEvent creates an InterceptDueEvent.
func NewInterceptDueEvent() InterceptDueEvent {
	return InterceptDueEvent{baseEvent: newBaseEvent("schedule.intercept_due")}
}

// -----------------------------------------------------------------------------
// Surface Events
// -----------------------------------------------------------------------------

// SurfaceChangedEvent is emitted by the orchestrator whenever the visible
// surface changes. This is the orchestrator's only externally observable
// output besides its read accessors.
type SurfaceChangedEvent struct {
	baseEvent
	Previous string // Previous surface name
	Current  string // New surface name
}

// NewSurfaceChangedEvent creates a SurfaceChangedEvent.
func NewSurfaceChangedEvent(previous, current string) SurfaceChangedEvent {
	return SurfaceChangedEvent{
		baseEvent: newBaseEvent("surface.changed"),
		Previous:  previous,
		Current:   current,
	}
}

// -----------------------------------------------------------------------------
// Session Events
// -----------------------------------------------------------------------------

// SessionTickEvent is emitted once per second while the assistant is active
// and the mode is not off. Carries the cumulative elapsed seconds.
type SessionTickEvent struct {
	baseEvent
	ElapsedSeconds uint64 // Total seconds the session clock has run
}

// NewSessionTickEvent creates a SessionTickEvent.
func NewSessionTickEvent(elapsed uint64) SessionTickEvent {
	return SessionTickEvent{
		baseEvent:      newBaseEvent("session.tick"),
		ElapsedSeconds: elapsed,
	}
}

// ChallengeCompletedEvent is emitted when a challenge run finishes and the
// completion counter has been incremented. Graded reports whether the run
// went through grading (false for skip/close).
type ChallengeCompletedEvent struct {
	baseEvent
	Graded  bool // Whether the run was graded before completing
	Correct bool // Grading outcome; meaningless when Graded is false
	Total   uint64
}

// NewChallengeCompletedEvent creates a ChallengeCompletedEvent.
func NewChallengeCompletedEvent(graded, correct bool, total uint64) ChallengeCompletedEvent {
	return ChallengeCompletedEvent{
		baseEvent: newBaseEvent("challenge.completed"),
		Graded:    graded,
		Correct:   correct,
		Total:     total,
	}
}

// InterceptTriggeredEvent is emitted when an intercept surfaces. The counter
// is incremented at surfacing time; later transitions out of the intercept
// (guided chat, think break, direct answer) do not change it.
type InterceptTriggeredEvent struct {
	baseEvent
	Query string // The intercepted query being shown
	Total uint64
}

// NewInterceptTriggeredEvent creates an InterceptTriggeredEvent.
func NewInterceptTriggeredEvent(query string, total uint64) InterceptTriggeredEvent {
	return InterceptTriggeredEvent{
		baseEvent: newBaseEvent("intercept.triggered"),
		Query:     query,
		Total:     total,
	}
}
