package orchestrator

import (
	"testing"

	"github.com/mindguard/mindguard/internal/config"
)

func enabledSettings() config.Settings {
	return config.Settings{
		Active:     true,
		Mode:       config.ModeEnhance,
		Difficulty: 3,
		Frequency:  5,
		Directness: 3,
	}
}

func detectedState() State {
	s := initialState(enabledSettings())
	return reduce(s, actionDetectionChanged{Detected: true, Platform: "claude.ai"})
}

func TestReduce_DetectionSurfacesBanner(t *testing.T) {
	s := detectedState()
	if s.Surface != SurfaceBanner {
		t.Errorf("Surface = %v, want banner", s.Surface)
	}
	if !s.Detected || s.Platform != "claude.ai" {
		t.Errorf("Verdict not stored: %+v", s)
	}
}

func TestReduce_BannerEligibility(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(State) State
		want    Surface
	}{
		{
			"inactive settings",
			func(s State) State {
				s.Settings.Active = false
				return s
			},
			SurfaceNone,
		},
		{
			"off mode",
			func(s State) State {
				s.Settings.Mode = config.ModeOff
				return s
			},
			SurfaceNone,
		},
		{
			"widget expanded",
			func(s State) State {
				s.WidgetExpanded = true
				return s
			},
			SurfaceNone,
		},
		{
			"dismissal still sticky",
			func(s State) State {
				s.BannerDismissed = true
				s.Detected = true // same episode, no false transition
				return s
			},
			SurfaceNone,
		},
		{
			"surface occupied",
			func(s State) State {
				s.Surface = SurfaceChallenge
				return s
			},
			SurfaceChallenge,
		},
		{
			"all conditions met",
			func(s State) State { return s },
			SurfaceBanner,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.prepare(initialState(enabledSettings()))
			got := reduce(s, actionDetectionChanged{Detected: true, Platform: "claude.ai"})
			if got.Surface != tt.want {
				t.Errorf("Surface = %v, want %v", got.Surface, tt.want)
			}
		})
	}
}

func TestReduce_BannerDismissalIsSticky(t *testing.T) {
	s := detectedState()
	s = reduce(s, actionBannerDismissed{})
	if s.Surface != SurfaceNone || !s.BannerDismissed {
		t.Fatalf("Dismissal not recorded: %+v", s)
	}

	// Same episode: detection stays true, no banner.
	s = reduce(s, actionDetectionChanged{Detected: true, Platform: "claude.ai"})
	if s.Surface != SurfaceNone {
		t.Error("Banner must stay dismissed within one detection episode")
	}

	// Dismissing again is a no-op.
	before := s
	if after := reduce(s, actionBannerDismissed{}); after != before {
		t.Error("Dismissing an already-dismissed banner must change nothing")
	}

	// Detection toggling false then true re-arms the banner.
	s = reduce(s, actionDetectionChanged{Detected: false})
	s = reduce(s, actionDetectionChanged{Detected: true, Platform: "claude.ai"})
	if s.Surface != SurfaceBanner {
		t.Error("New detection episode must re-arm the banner")
	}
}

func TestReduce_BannerOpensChat(t *testing.T) {
	s := detectedState()
	s = reduce(s, actionBannerOpenChat{})
	if s.Surface != SurfaceChat {
		t.Errorf("Surface = %v, want chat", s.Surface)
	}
	if s.ChatSeed != "" {
		t.Errorf("Banner chat must not carry a seed, got %q", s.ChatSeed)
	}
}

func TestReduce_SchedulerEventsDroppedWhenBusy(t *testing.T) {
	occupied := []Surface{SurfaceBanner, SurfaceChallenge, SurfaceChat, SurfaceIntercept}
	for _, surface := range occupied {
		s := initialState(enabledSettings())
		s.Surface = surface

		if got := reduce(s, actionChallengeDue{}); got.Surface != surface {
			t.Errorf("Challenge due over %v: surface = %v, want unchanged", surface, got.Surface)
		}
		got := reduce(s, actionInterceptDue{Query: "q"})
		if got.Surface != surface {
			t.Errorf("Intercept due over %v: surface = %v, want unchanged", surface, got.Surface)
		}
		if got.InterceptsTriggered != 0 {
			t.Errorf("Dropped intercept must not count, got %d", got.InterceptsTriggered)
		}
	}
}

func TestReduce_ChallengeDueClaimsEmptySlot(t *testing.T) {
	s := reduce(initialState(enabledSettings()), actionChallengeDue{})
	if s.Surface != SurfaceChallenge {
		t.Errorf("Surface = %v, want challenge", s.Surface)
	}
}

func TestReduce_InterceptDueClaimsEmptySlotAndCounts(t *testing.T) {
	s := reduce(initialState(enabledSettings()), actionInterceptDue{
		Query:          "how do I write a for loop",
		CannedResponse: "Here is a for loop...",
	})
	if s.Surface != SurfaceIntercept {
		t.Fatalf("Surface = %v, want intercept", s.Surface)
	}
	if s.InterceptsTriggered != 1 {
		t.Errorf("InterceptsTriggered = %d, want 1", s.InterceptsTriggered)
	}
	if s.InterceptQuery != "how do I write a for loop" {
		t.Errorf("InterceptQuery = %q", s.InterceptQuery)
	}
}

func TestReduce_InterceptContinueWithChatCarriesSeed(t *testing.T) {
	s := reduce(initialState(enabledSettings()), actionInterceptDue{Query: "query Q"})
	counted := s.InterceptsTriggered

	s = reduce(s, actionInterceptContinueChat{})
	if s.Surface != SurfaceChat {
		t.Fatalf("Surface = %v, want chat", s.Surface)
	}
	if s.ChatSeed != "query Q" {
		t.Errorf("ChatSeed = %q, want the intercepted query", s.ChatSeed)
	}
	if s.InterceptsTriggered != counted {
		t.Errorf("Hand-off must not touch the intercept counter: %d != %d",
			s.InterceptsTriggered, counted)
	}
}

func TestReduce_InterceptThinkBreakOpensChallenge(t *testing.T) {
	s := reduce(initialState(enabledSettings()), actionInterceptDue{Query: "q"})
	s = reduce(s, actionInterceptThinkBreak{})
	if s.Surface != SurfaceChallenge {
		t.Errorf("Surface = %v, want challenge", s.Surface)
	}
}

func TestReduce_ChallengeCompletionCountsAndClears(t *testing.T) {
	s := reduce(initialState(enabledSettings()), actionChallengeDue{})
	s = reduce(s, actionChallengeCompleted{})
	if s.Surface != SurfaceNone {
		t.Errorf("Surface = %v, want none", s.Surface)
	}
	if s.ChallengesCompleted != 1 {
		t.Errorf("ChallengesCompleted = %d, want 1", s.ChallengesCompleted)
	}

	// Completion without an open challenge changes nothing.
	if got := reduce(s, actionChallengeCompleted{}); got.ChallengesCompleted != 1 {
		t.Errorf("Stray completion must not count, got %d", got.ChallengesCompleted)
	}
}

func TestReduce_CloseClearsAnySurface(t *testing.T) {
	for _, surface := range []Surface{SurfaceChallenge, SurfaceChat, SurfaceIntercept} {
		s := initialState(enabledSettings())
		s.Surface = surface
		got := reduce(s, actionSurfaceClosed{})
		if got.Surface != SurfaceNone {
			t.Errorf("Close over %v: surface = %v, want none", surface, got.Surface)
		}
		if got.ChallengesCompleted != 0 {
			t.Errorf("Close must not count as completion, got %d", got.ChallengesCompleted)
		}
	}
}

func TestReduce_ManualActionsOverrideAnySurface(t *testing.T) {
	for _, surface := range []Surface{SurfaceNone, SurfaceBanner, SurfaceChallenge, SurfaceChat, SurfaceIntercept} {
		s := initialState(enabledSettings())
		s.Surface = surface

		if got := reduce(s, actionOpenChat{}); got.Surface != SurfaceChat {
			t.Errorf("Manual open chat over %v: surface = %v", surface, got.Surface)
		}
		if got := reduce(s, actionTakeChallenge{}); got.Surface != SurfaceChallenge {
			t.Errorf("Manual take challenge over %v: surface = %v", surface, got.Surface)
		}
	}
}

func TestReduce_ExpandingWidgetClearsBanner(t *testing.T) {
	s := detectedState()
	s = reduce(s, actionSetWidgetExpanded{Expanded: true})
	if s.Surface != SurfaceNone {
		t.Errorf("Surface = %v, want none after expanding over a banner", s.Surface)
	}
	if !s.WidgetExpanded {
		t.Error("WidgetExpanded not set")
	}
}

func TestReduce_SessionTickGatedOnEnabled(t *testing.T) {
	s := initialState(enabledSettings())
	s = reduce(s, actionSessionTick{})
	if s.ElapsedSeconds != 1 {
		t.Errorf("ElapsedSeconds = %d, want 1", s.ElapsedSeconds)
	}

	off := enabledSettings()
	off.Mode = config.ModeOff
	s = reduce(s, actionSettingsChanged{Settings: off})
	s = reduce(s, actionSessionTick{})
	if s.ElapsedSeconds != 1 {
		t.Errorf("Clock must not advance in off mode, got %d", s.ElapsedSeconds)
	}

	inactive := enabledSettings()
	inactive.Active = false
	s = reduce(s, actionSettingsChanged{Settings: inactive})
	s = reduce(s, actionSessionTick{})
	if s.ElapsedSeconds != 1 {
		t.Errorf("Clock must not advance while inactive, got %d", s.ElapsedSeconds)
	}
}

func TestReduce_SettingsChangeKeepsOpenSurface(t *testing.T) {
	s := reduce(initialState(enabledSettings()), actionChallengeDue{})
	off := enabledSettings()
	off.Mode = config.ModeOff
	s = reduce(s, actionSettingsChanged{Settings: off})
	if s.Surface != SurfaceChallenge {
		t.Errorf("Open challenge must survive a mode change, surface = %v", s.Surface)
	}
}

func TestReduce_SettingsClamped(t *testing.T) {
	s := reduce(initialState(enabledSettings()), actionSettingsChanged{
		Settings: config.Settings{Active: true, Mode: "bogus", Difficulty: 99, Frequency: 0, Directness: -1},
	})
	got := s.Settings
	if got.Mode != config.ModeEnhance || got.Difficulty != 5 || got.Frequency != 1 || got.Directness != 1 {
		t.Errorf("Settings not clamped: %+v", got)
	}
}

// Random interleavings of triggering events must never yield two surfaces;
// with a single Surface field that holds structurally, so this pins the
// counters instead: they only move on the transitions that own them.
func TestReduce_CountersMonotonic(t *testing.T) {
	actions := []Action{
		actionDetectionChanged{Detected: true, Platform: "claude.ai"},
		actionChallengeDue{},
		actionInterceptDue{Query: "q"},
		actionBannerDismissed{},
		actionChallengeCompleted{},
		actionSurfaceClosed{},
		actionOpenChat{},
		actionTakeChallenge{},
		actionSessionTick{},
		actionDetectionChanged{Detected: false},
	}

	s := initialState(enabledSettings())
	for round := 0; round < 20; round++ {
		for _, a := range actions {
			next := reduce(s, a)
			if next.ElapsedSeconds < s.ElapsedSeconds ||
				next.ChallengesCompleted < s.ChallengesCompleted ||
				next.InterceptsTriggered < s.InterceptsTriggered {
				t.Fatalf("Counter went backwards: %+v -> %+v on %T", s, next, a)
			}
			s = next
		}
	}
}
