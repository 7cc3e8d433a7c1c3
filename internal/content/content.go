// Package content supplies the static material consumed by interventions:
// per-mode question pools for challenges, think-break questions, intercepted
// query/response pairs, and the canned guided-chat replies per directness
// level. The orchestrator treats all of it as opaque display data.
package content

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"

	"github.com/mindguard/mindguard/internal/config"
	"gopkg.in/yaml.v3"
)

// Question is one multiple-choice challenge question.
type Question struct {
	Prompt  string   `yaml:"prompt"`
	Options []string `yaml:"options"`
	Correct int      `yaml:"correct"` // Index into Options
}

// InterceptPayload is one intercepted query with its prepared direct answer.
// Opaque to the orchestrator beyond display and hand-off to the chat.
type InterceptPayload struct {
	Query          string `yaml:"query"`
	CannedResponse string `yaml:"response"`
}

// Pack is the YAML shape of an external content pack. Non-empty sections
// replace the corresponding built-ins wholesale; empty sections keep them.
type Pack struct {
	Questions   map[string][]Question `yaml:"questions"`
	ThinkBreak  []string              `yaml:"think_break"`
	Intercepts  []InterceptPayload    `yaml:"intercepts"`
	ChatReplies map[int]string        `yaml:"chat_replies"`
}

// Library resolves content requests. Safe for concurrent use.
type Library struct {
	mu          sync.RWMutex
	questions   map[config.Mode][]Question
	thinkBreak  []string
	intercepts  []InterceptPayload
	chatReplies map[int]string

	rng func(n int) int // Injectable for deterministic tests
}

// NewLibrary returns a Library serving the built-in content. The built-in
// maps are copied so that pack loads on one library never alter another.
func NewLibrary() *Library {
	replies := make(map[int]string, len(chatReplies))
	for level, reply := range chatReplies {
		replies[level] = reply
	}

	return &Library{
		questions: map[config.Mode][]Question{
			config.ModeEnhance: enhanceQuestions,
			config.ModeProtect: protectQuestions,
			config.ModeFocus:   focusQuestions,
		},
		thinkBreak:  thinkBreakQuestions,
		intercepts:  interceptPayloads,
		chatReplies: replies,
		rng:         rand.Intn,
	}
}

// LoadPack merges a YAML content pack over the built-ins.
func (l *Library) LoadPack(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read content pack: %w", err)
	}

	var pack Pack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return fmt.Errorf("failed to parse content pack: %w", err)
	}

	return l.apply(pack)
}

// apply validates the whole pack, then installs its non-empty sections.
// A pack that fails validation leaves the library untouched.
func (l *Library) apply(pack Pack) error {
	for modeName, qs := range pack.Questions {
		mode := config.Mode(modeName)
		if !mode.IsValid() || mode == config.ModeOff {
			return fmt.Errorf("content pack references unknown question pool %q", modeName)
		}
		for i, q := range qs {
			if q.Correct < 0 || q.Correct >= len(q.Options) {
				return fmt.Errorf("question %d in pool %q has correct index %d outside its %d options",
					i, modeName, q.Correct, len(q.Options))
			}
		}
	}
	for level := range pack.ChatReplies {
		if level < config.MinDirectness || level > config.MaxDirectness {
			return fmt.Errorf("content pack chat reply for out-of-range directness level %d", level)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for modeName, qs := range pack.Questions {
		if len(qs) > 0 {
			l.questions[config.Mode(modeName)] = qs
		}
	}
	if len(pack.ThinkBreak) > 0 {
		l.thinkBreak = pack.ThinkBreak
	}
	if len(pack.Intercepts) > 0 {
		l.intercepts = pack.Intercepts
	}
	for level, reply := range pack.ChatReplies {
		l.chatReplies[level] = reply
	}

	return nil
}

// Questions returns the question pool for a mode. Off has no pool of its
// own and falls back to the enhance pool rather than returning nil.
func (l *Library) Questions(mode config.Mode) []Question {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if qs, ok := l.questions[mode]; ok && len(qs) > 0 {
		return qs
	}
	return l.questions[config.ModeEnhance]
}

// PickQuestion returns one question from the mode's pool.
func (l *Library) PickQuestion(mode config.Mode) Question {
	qs := l.Questions(mode)
	l.mu.RLock()
	defer l.mu.RUnlock()
	return qs[l.rng(len(qs))]
}

// PickThinkBreak returns one unrelated technical question.
func (l *Library) PickThinkBreak() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.thinkBreak[l.rng(len(l.thinkBreak))]
}

// PickIntercept returns one intercepted query/response pair.
func (l *Library) PickIntercept() InterceptPayload {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.intercepts[l.rng(len(l.intercepts))]
}

// ChatReply returns the canned guided-chat reply for a directness level.
// At the most direct level a %s verb in the reply, if present, is filled
// with the user's message, mirroring a full answer echoing the question
// back. A verb-less reply is returned as-is.
func (l *Library) ChatReply(directness int, userMessage string) string {
	level := directness
	if level < config.MinDirectness {
		level = config.MinDirectness
	}
	if level > config.MaxDirectness {
		level = config.MaxDirectness
	}

	l.mu.RLock()
	reply := l.chatReplies[level]
	l.mu.RUnlock()

	if level == config.MaxDirectness && strings.Contains(reply, "%s") {
		return fmt.Sprintf(reply, userMessage)
	}
	return reply
}

// SetRand replaces the random source. Intended for deterministic tests.
func (l *Library) SetRand(rng func(n int) int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rng = rng
}
