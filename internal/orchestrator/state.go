package orchestrator

import (
	"github.com/mindguard/mindguard/internal/config"
)

// Surface is the single visible overlay. At most one surface is ever open;
// assigning a new one implicitly clears the previous.
type Surface string

const (
	SurfaceNone      Surface = "none"
	SurfaceBanner    Surface = "banner"
	SurfaceChallenge Surface = "challenge"
	SurfaceChat      Surface = "chat"
	SurfaceIntercept Surface = "intercept"
)

// State is the complete observable state of the orchestrator. It is treated
// as immutable: reduce returns an updated copy and never mutates its input,
// so every transition can be tested as a plain function call.
type State struct {
	Surface        Surface
	WidgetExpanded bool

	// Latest detection verdict. Replaced wholesale, never accumulated.
	Detected bool
	Platform string

	// BannerDismissed is sticky for the current detection episode. It
	// re-arms when detection toggles false then true again.
	BannerDismissed bool

	Settings config.Settings

	// ChatSeed carries an intercepted query into the chat surface.
	ChatSeed string

	// Current intercept payload, meaningful only while Surface is
	// SurfaceIntercept or a chat hand-off is in flight.
	InterceptQuery    string
	InterceptResponse string

	// Session counters. Monotonically non-decreasing, process lifetime.
	ElapsedSeconds      uint64
	ChallengesCompleted uint64
	InterceptsTriggered uint64
}

// initialState returns the pre-start state for the given settings.
func initialState(settings config.Settings) State {
	return State{
		Surface:  SurfaceNone,
		Settings: settings.Clamp(),
	}
}

// Action is a request for a state transition. Components never write state
// directly; they dispatch actions and the reducer decides.
type Action interface {
	isAction()
}

type actionDetectionChanged struct {
	Detected bool
	Platform string
}

type actionSettingsChanged struct {
	Settings config.Settings
}

type actionChallengeDue struct{}

type actionInterceptDue struct {
	Query          string
	CannedResponse string
}

type actionBannerDismissed struct{}

type actionBannerOpenChat struct{}

type actionInterceptContinueChat struct{}

type actionInterceptThinkBreak struct{}

type actionChallengeCompleted struct{}

type actionSurfaceClosed struct{}

type actionOpenChat struct {
	Seed string
}

type actionTakeChallenge struct{}

type actionSetWidgetExpanded struct {
	Expanded bool
}

type actionSessionTick struct{}

func (actionDetectionChanged) isAction()      {}
func (actionSettingsChanged) isAction()       {}
func (actionChallengeDue) isAction()          {}
func (actionInterceptDue) isAction()          {}
func (actionBannerDismissed) isAction()       {}
func (actionBannerOpenChat) isAction()        {}
func (actionInterceptContinueChat) isAction() {}
func (actionInterceptThinkBreak) isAction()   {}
func (actionChallengeCompleted) isAction()    {}
func (actionSurfaceClosed) isAction()         {}
func (actionOpenChat) isAction()              {}
func (actionTakeChallenge) isAction()         {}
func (actionSetWidgetExpanded) isAction()     {}
func (actionSessionTick) isAction()           {}

// reduce applies one action to the state. Scheduler events that arrive while
// a surface is occupied are dropped here, never queued; manual user actions
// always win the surface slot.
func reduce(s State, a Action) State {
	switch act := a.(type) {
	case actionDetectionChanged:
		// A fresh detection episode re-arms the banner dismissal.
		if act.Detected && !s.Detected {
			s.BannerDismissed = false
		}
		s.Detected = act.Detected
		s.Platform = act.Platform
		if act.Detected &&
			s.Settings.Enabled() &&
			!s.BannerDismissed &&
			!s.WidgetExpanded &&
			s.Surface == SurfaceNone {
			s.Surface = SurfaceBanner
		}
		return s

	case actionSettingsChanged:
		// An open surface survives a settings change; in particular a
		// running challenge finishes even when the mode turns off.
		s.Settings = act.Settings.Clamp()
		return s

	case actionChallengeDue:
		if s.Surface != SurfaceNone {
			return s
		}
		s.Surface = SurfaceChallenge
		return s

	case actionInterceptDue:
		if s.Surface != SurfaceNone {
			return s
		}
		s.Surface = SurfaceIntercept
		s.InterceptQuery = act.Query
		s.InterceptResponse = act.CannedResponse
		s.InterceptsTriggered++
		return s

	case actionBannerDismissed:
		// Dismissing an already-dismissed banner is a no-op.
		if s.Surface != SurfaceBanner {
			return s
		}
		s.Surface = SurfaceNone
		s.BannerDismissed = true
		return s

	case actionBannerOpenChat:
		if s.Surface != SurfaceBanner {
			return s
		}
		s.Surface = SurfaceChat
		s.ChatSeed = ""
		return s

	case actionInterceptContinueChat:
		if s.Surface != SurfaceIntercept {
			return s
		}
		s.Surface = SurfaceChat
		s.ChatSeed = s.InterceptQuery
		return s

	case actionInterceptThinkBreak:
		if s.Surface != SurfaceIntercept {
			return s
		}
		s.Surface = SurfaceChallenge
		return s

	case actionChallengeCompleted:
		if s.Surface != SurfaceChallenge {
			return s
		}
		s.Surface = SurfaceNone
		s.ChallengesCompleted++
		return s

	case actionSurfaceClosed:
		if s.Surface == SurfaceNone {
			return s
		}
		s.Surface = SurfaceNone
		return s

	case actionOpenChat:
		// Manual intent beats whatever surface is open.
		s.Surface = SurfaceChat
		s.ChatSeed = act.Seed
		return s

	case actionTakeChallenge:
		s.Surface = SurfaceChallenge
		return s

	case actionSetWidgetExpanded:
		s.WidgetExpanded = act.Expanded
		// The banner only exists alongside the collapsed widget.
		if act.Expanded && s.Surface == SurfaceBanner {
			s.Surface = SurfaceNone
		}
		return s

	case actionSessionTick:
		if s.Settings.Enabled() {
			s.ElapsedSeconds++
		}
		return s
	}

	return s
}
