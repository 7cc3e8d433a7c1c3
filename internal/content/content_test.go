package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mindguard/mindguard/internal/config"
)

func TestLibrary_QuestionsPerMode(t *testing.T) {
	lib := NewLibrary()

	for _, mode := range []config.Mode{config.ModeEnhance, config.ModeProtect, config.ModeFocus} {
		qs := lib.Questions(mode)
		if len(qs) == 0 {
			t.Errorf("Mode %s should have a non-empty question pool", mode)
		}
		for i, q := range qs {
			if q.Correct < 0 || q.Correct >= len(q.Options) {
				t.Errorf("Mode %s question %d has correct index %d outside its options", mode, i, q.Correct)
			}
		}
	}
}

func TestLibrary_PoolsAreDistinct(t *testing.T) {
	lib := NewLibrary()

	enhance := lib.Questions(config.ModeEnhance)
	protect := lib.Questions(config.ModeProtect)
	focus := lib.Questions(config.ModeFocus)

	if enhance[0].Prompt == protect[0].Prompt || protect[0].Prompt == focus[0].Prompt {
		t.Error("Each mode should have its own distinct question pool")
	}
}

func TestLibrary_OffModeFallsBackToEnhance(t *testing.T) {
	lib := NewLibrary()

	qs := lib.Questions(config.ModeOff)
	enhance := lib.Questions(config.ModeEnhance)
	if len(qs) != len(enhance) || qs[0].Prompt != enhance[0].Prompt {
		t.Error("Unknown pool lookup should fall back to the enhance pool")
	}
}

func TestLibrary_PickQuestionDeterministic(t *testing.T) {
	lib := NewLibrary()
	lib.SetRand(func(n int) int { return n - 1 })

	q := lib.PickQuestion(config.ModeFocus)
	pool := lib.Questions(config.ModeFocus)
	if q.Prompt != pool[len(pool)-1].Prompt {
		t.Errorf("Expected last question of the focus pool, got %q", q.Prompt)
	}
}

func TestLibrary_PickIntercept(t *testing.T) {
	lib := NewLibrary()
	lib.SetRand(func(n int) int { return 0 })

	p := lib.PickIntercept()
	if p.Query == "" || p.CannedResponse == "" {
		t.Error("Intercept payload should have both query and canned response")
	}
}

func TestLibrary_PickThinkBreak(t *testing.T) {
	lib := NewLibrary()
	lib.SetRand(func(n int) int { return 0 })

	if q := lib.PickThinkBreak(); q == "" {
		t.Error("Think break question should not be empty")
	}
}

func TestLibrary_ChatReplyLevels(t *testing.T) {
	lib := NewLibrary()

	seen := make(map[string]bool)
	for level := config.MinDirectness; level <= config.MaxDirectness; level++ {
		reply := lib.ChatReply(level, "how does DNS work?")
		if reply == "" {
			t.Errorf("Directness level %d should produce a reply", level)
		}
		seen[reply] = true
	}
	if len(seen) != 5 {
		t.Errorf("Expected 5 distinct replies across directness levels, got %d", len(seen))
	}

	direct := lib.ChatReply(config.MaxDirectness, "how does DNS work?")
	if !strings.Contains(direct, "how does DNS work?") {
		t.Error("Most direct reply should interpolate the user's message")
	}
}

func TestLibrary_ChatReplyClampsLevel(t *testing.T) {
	lib := NewLibrary()

	if lib.ChatReply(0, "q") != lib.ChatReply(config.MinDirectness, "q") {
		t.Error("Below-range directness should clamp to the minimum level")
	}
	if lib.ChatReply(99, "q") != lib.ChatReply(config.MaxDirectness, "q") {
		t.Error("Above-range directness should clamp to the maximum level")
	}
}

func TestLibrary_LoadPack(t *testing.T) {
	pack := `
questions:
  focus:
    - prompt: "Replacement question?"
      options: ["a", "b"]
      correct: 1
think_break:
  - "Explain two-phase commit"
`
	path := filepath.Join(t.TempDir(), "pack.yaml")
	if err := os.WriteFile(path, []byte(pack), 0644); err != nil {
		t.Fatalf("failed to write pack: %v", err)
	}

	lib := NewLibrary()
	if err := lib.LoadPack(path); err != nil {
		t.Fatalf("LoadPack failed: %v", err)
	}

	qs := lib.Questions(config.ModeFocus)
	if len(qs) != 1 || qs[0].Prompt != "Replacement question?" {
		t.Errorf("Pack should replace the focus pool, got %+v", qs)
	}
	if len(lib.Questions(config.ModeEnhance)) == 0 {
		t.Error("Pack without an enhance section should keep the built-in pool")
	}

	lib.SetRand(func(n int) int { return 0 })
	if got := lib.PickThinkBreak(); got != "Explain two-phase commit" {
		t.Errorf("Pack should replace think-break questions, got %q", got)
	}
}

func TestLibrary_LoadPackRejectsBadCorrectIndex(t *testing.T) {
	pack := `
questions:
  enhance:
    - prompt: "Bad question?"
      options: ["only option"]
      correct: 3
`
	path := filepath.Join(t.TempDir(), "pack.yaml")
	if err := os.WriteFile(path, []byte(pack), 0644); err != nil {
		t.Fatalf("failed to write pack: %v", err)
	}

	lib := NewLibrary()
	if err := lib.LoadPack(path); err == nil {
		t.Error("LoadPack should reject a correct index outside the options")
	}
}

func TestLibrary_LoadPackRejectsUnknownPool(t *testing.T) {
	pack := `
questions:
  zen:
    - prompt: "q?"
      options: ["a"]
      correct: 0
`
	path := filepath.Join(t.TempDir(), "pack.yaml")
	if err := os.WriteFile(path, []byte(pack), 0644); err != nil {
		t.Fatalf("failed to write pack: %v", err)
	}

	lib := NewLibrary()
	if err := lib.LoadPack(path); err == nil {
		t.Error("LoadPack should reject an unknown question pool name")
	}
}

func TestLibrary_RejectedPackLeavesLibraryUntouched(t *testing.T) {
	pack := `
intercepts:
  - query: "pack query"
    response: "pack response"
chat_replies:
  9: "out of range"
`
	path := filepath.Join(t.TempDir(), "pack.yaml")
	if err := os.WriteFile(path, []byte(pack), 0644); err != nil {
		t.Fatalf("failed to write pack: %v", err)
	}

	lib := NewLibrary()
	lib.SetRand(func(n int) int { return 0 })
	before := lib.PickIntercept()

	if err := lib.LoadPack(path); err == nil {
		t.Fatal("LoadPack should reject an out-of-range chat reply level")
	}
	if got := lib.PickIntercept(); got != before {
		t.Errorf("Rejected pack should not replace intercepts, got %+v", got)
	}
}

func TestLibrary_LoadPackDoesNotLeakAcrossLibraries(t *testing.T) {
	pack := `
chat_replies:
  1: "overridden level one"
`
	path := filepath.Join(t.TempDir(), "pack.yaml")
	if err := os.WriteFile(path, []byte(pack), 0644); err != nil {
		t.Fatalf("failed to write pack: %v", err)
	}

	a := NewLibrary()
	if err := a.LoadPack(path); err != nil {
		t.Fatalf("LoadPack failed: %v", err)
	}
	if a.ChatReply(1, "q") != "overridden level one" {
		t.Error("Pack should override level 1 on the loading library")
	}

	b := NewLibrary()
	if b.ChatReply(1, "q") == "overridden level one" {
		t.Error("Pack loaded on one library should not alter a fresh library")
	}
}

func TestLibrary_ChatReplyVerbLessDirectTemplate(t *testing.T) {
	pack := `
chat_replies:
  5: "Here is the answer, plain and whole."
`
	path := filepath.Join(t.TempDir(), "pack.yaml")
	if err := os.WriteFile(path, []byte(pack), 0644); err != nil {
		t.Fatalf("failed to write pack: %v", err)
	}

	lib := NewLibrary()
	if err := lib.LoadPack(path); err != nil {
		t.Fatalf("LoadPack failed: %v", err)
	}

	got := lib.ChatReply(config.MaxDirectness, "how does DNS work?")
	if got != "Here is the answer, plain and whole." {
		t.Errorf("Verb-less direct reply should be returned as-is, got %q", got)
	}
}

func TestLibrary_LoadPackMissingFile(t *testing.T) {
	lib := NewLibrary()
	if err := lib.LoadPack("/nonexistent/pack.yaml"); err == nil {
		t.Error("LoadPack should fail for a missing file")
	}
}
