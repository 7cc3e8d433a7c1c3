// Package challenge runs a single quiz challenge: a countdown, an answer
// selection, grading, and a short result display before completion. Each run
// is single-use; the orchestrator creates a fresh Run per surfaced challenge
// and reacts to its completion callback.
package challenge

import (
	"sync"
	"time"

	"github.com/mindguard/mindguard/internal/config"
	"github.com/mindguard/mindguard/internal/content"
	"github.com/mindguard/mindguard/internal/logging"
)

// DefaultResultDelay is how long the graded result stays on screen before the
// run completes.
const DefaultResultDelay = 2 * time.Second

// CountdownSeconds returns the answer window for a difficulty setting. Higher
// difficulty means less time, floored at 5 seconds: difficulty 1 gives 13
// seconds, difficulty 5 gives 5.
func CountdownSeconds(difficulty int) int {
	d := difficulty
	if d < config.MinDifficulty {
		d = config.MinDifficulty
	}
	if d > config.MaxDifficulty {
		d = config.MaxDifficulty
	}
	seconds := 15 - 2*d
	if seconds < 5 {
		seconds = 5
	}
	return seconds
}

// Result describes how a run ended. Skipped runs and reflection prompts are
// ungraded; for those Correct is always false.
type Result struct {
	Graded   bool
	Correct  bool
	Selected int // index of the chosen option, -1 when none
}

type runState int

const (
	stateAnswering runState = iota
	stateResult
	stateDone
)

// Run is one live challenge. Create with New, arm with Start, and drive it
// through Select, Submit, and Skip. Exactly one of Skip or grading leads to
// the completion callback; Stop abandons the run without completing it.
type Run struct {
	question    content.Question
	resultDelay time.Duration
	tickEvery   time.Duration
	logger      *logging.Logger

	onTick     func(remaining int)
	onResult   func(correct bool)
	onComplete func(Result)

	mu          sync.Mutex
	state       runState
	selected    int
	remaining   int
	result      Result
	stopCh      chan struct{}
	resultTimer *time.Timer
}

// Option configures a Run.
type Option func(*Run)

// WithResultDelay overrides the delay between grading and completion.
func WithResultDelay(d time.Duration) Option {
	return func(r *Run) {
		if d >= 0 {
			r.resultDelay = d
		}
	}
}

// WithTickEvery overrides the one-second countdown cadence. Tests use this to
// run the countdown fast.
func WithTickEvery(d time.Duration) Option {
	return func(r *Run) {
		if d > 0 {
			r.tickEvery = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(r *Run) {
		r.logger = logger
	}
}

// OnTick registers a callback fired after every countdown decrement with the
// seconds remaining.
func OnTick(fn func(remaining int)) Option {
	return func(r *Run) {
		r.onTick = fn
	}
}

// OnResult registers a callback fired the moment the run is graded, before
// the result delay.
func OnResult(fn func(correct bool)) Option {
	return func(r *Run) {
		r.onResult = fn
	}
}

// OnComplete registers the completion callback.
func OnComplete(fn func(Result)) Option {
	return func(r *Run) {
		r.onComplete = fn
	}
}

// New creates a run for one question at the given difficulty.
func New(question content.Question, difficulty int, opts ...Option) *Run {
	r := &Run{
		question:    question,
		resultDelay: DefaultResultDelay,
		tickEvery:   time.Second,
		logger:      logging.NopLogger(),
		selected:    -1,
		remaining:   CountdownSeconds(difficulty),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Question returns the question shown by this run.
func (r *Run) Question() content.Question {
	return r.question
}

// Remaining returns the countdown seconds left.
func (r *Run) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

// Selected returns the index of the chosen option, or -1.
func (r *Run) Selected() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selected
}

// Graded returns the result while it is on display, between grading and
// completion. The second return is false while the run is still answering.
func (r *Run) Graded() (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == stateAnswering {
		return Result{}, false
	}
	return r.result, true
}

// Start begins the countdown. Starting twice is a no-op.
func (r *Run) Start() {
	r.mu.Lock()
	if r.stopCh != nil || r.state != stateAnswering {
		r.mu.Unlock()
		return
	}
	r.stopCh = make(chan struct{})
	stopCh := r.stopCh
	r.mu.Unlock()

	go r.countdown(stopCh)
}

// countdown decrements once per tick and auto-submits when it reaches zero.
func (r *Run) countdown(stopCh chan struct{}) {
	ticker := time.NewTicker(r.tickEvery)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			r.mu.Lock()
			if r.state != stateAnswering {
				r.mu.Unlock()
				return
			}
			r.remaining--
			remaining := r.remaining
			r.mu.Unlock()

			if r.onTick != nil {
				r.onTick(remaining)
			}
			if remaining <= 0 {
				r.Submit()
				return
			}
		}
	}
}

// Select records the chosen option. Out-of-range indexes are ignored, and
// selection after grading has no effect.
func (r *Run) Select(index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != stateAnswering {
		return
	}
	if index < 0 || index >= len(r.question.Options) {
		return
	}
	r.selected = index
}

// Submit grades the current selection. An empty selection grades as
// incorrect; a question with no options is a reflection prompt and completes
// ungraded. The result stays visible for the result delay, then the run
// completes.
func (r *Run) Submit() {
	r.mu.Lock()
	if r.state != stateAnswering {
		r.mu.Unlock()
		return
	}
	r.state = stateResult

	graded := len(r.question.Options) > 0
	correct := graded && r.selected >= 0 && r.selected == r.question.Correct
	r.result = Result{Graded: graded, Correct: correct, Selected: r.selected}
	r.resultTimer = time.AfterFunc(r.resultDelay, r.finish)
	r.mu.Unlock()

	r.logger.Debug("challenge graded", "graded", graded, "correct", correct)
	if graded && r.onResult != nil {
		r.onResult(correct)
	}
}

// Skip abandons grading and completes the run immediately.
func (r *Run) Skip() {
	r.mu.Lock()
	if r.state != stateAnswering {
		r.mu.Unlock()
		return
	}
	r.state = stateDone
	r.result = Result{Graded: false, Selected: r.selected}
	result := r.result
	r.mu.Unlock()

	r.logger.Debug("challenge skipped")
	if r.onComplete != nil {
		r.onComplete(result)
	}
}

// finish fires the completion callback once the result delay elapses.
func (r *Run) finish() {
	r.mu.Lock()
	if r.state != stateResult {
		r.mu.Unlock()
		return
	}
	r.state = stateDone
	result := r.result
	r.mu.Unlock()

	if r.onComplete != nil {
		r.onComplete(result)
	}
}

// Stop abandons the run without firing completion. Used on teardown only.
func (r *Run) Stop() {
	r.mu.Lock()
	if r.stopCh != nil {
		select {
		case <-r.stopCh:
		default:
			close(r.stopCh)
		}
	}
	if r.resultTimer != nil {
		r.resultTimer.Stop()
	}
	r.state = stateDone
	r.mu.Unlock()
}
