// Package detect classifies a page snapshot as an AI-chat interface or not.
// It layers three tiers of signals, strongest first, and stops at the first
// match: known hostnames, chat-specific DOM selectors, then weaker structural
// heuristics. All signals are advisory; a non-match is never an error.
package detect

import (
	"strings"

	"github.com/mindguard/mindguard/internal/page"
)

// Verdict is the scanner's result: whether the page looks like an AI chat,
// and a human-readable platform label. The latest verdict fully replaces the
// prior one; verdicts are never accumulated.
type Verdict struct {
	Detected bool
	Platform string
}

// Platform labels for the two non-hostname tiers. Hostname matches label the
// verdict with the matched domain string itself.
const (
	PlatformChatInterface = "AI Chat Interface"
	PlatformAssistant     = "AI Assistant"
)

// HostnameIndicators are substrings matched (case-insensitively) against
// the page hostname. The matched entry becomes the platform label.
var HostnameIndicators = []string{
	"chat.openai.com",
	"chatgpt.com",
	"claude.ai",
	"gemini.google.com",
	"bard.google.com",
	"perplexity.ai",
}

// SelectorIndicators are DOM selectors strongly associated with chat UIs.
var SelectorIndicators = []string{
	`[data-testid*="chat"]`,
	`[class*="chat-input"]`,
	`[class*="message-input"]`,
	`[placeholder*="message"]`,
	`[placeholder*="chat"]`,
	`[placeholder*="ask"]`,
}

// HeuristicIndicators are weaker structural signals. Any single one present
// is sufficient for an "AI Assistant" verdict.
var HeuristicIndicators = []string{
	`[class*="assistant"]`,
	`[class*="bot"]`,
	`[data-testid*="bot"]`,
	`[class*="conversation"]`,
	`[aria-label*="regenerate"]`,
	`[aria-label*="thumbs"]`,
}

// heuristicConjunctions are heuristic signals that require two selectors to
// match at once, e.g. a messages container coexisting with a text input.
var heuristicConjunctions = [][]string{
	{`[class*="messages"]`, "textarea"},
}

// rule is one classifier entry: a predicate over the snapshot and the label
// to report when the predicate is the first to hold.
type rule struct {
	match func(page.Snapshot) (bool, string)
}

// Scanner classifies page snapshots. Construct once with NewScanner;
// scanning is pure, idempotent, and safe for concurrent use.
type Scanner struct {
	rules []rule
}

// NewScanner creates a scanner with the fixed rule tiers pre-compiled.
// The indicator lists are fixed at build time, so a selector that fails
// to compile panics here rather than silently weakening a tier.
func NewScanner() *Scanner {
	hostnames := make([]string, len(HostnameIndicators))
	for i, h := range HostnameIndicators {
		hostnames[i] = strings.ToLower(h)
	}

	selectors := compileSelectors(SelectorIndicators)
	heuristics := compileSelectors(HeuristicIndicators)
	conjunctions := make([][]page.Selector, 0, len(heuristicConjunctions))
	for _, group := range heuristicConjunctions {
		conjunctions = append(conjunctions, compileSelectors(group))
	}

	return &Scanner{
		rules: []rule{
			{match: hostnameRule(hostnames)},
			{match: selectorRule(selectors)},
			{match: heuristicRule(heuristics, conjunctions)},
		},
	}
}

// compileSelectors compiles selector source text from the fixed lists.
func compileSelectors(raw []string) []page.Selector {
	compiled := make([]page.Selector, 0, len(raw))
	for _, r := range raw {
		compiled = append(compiled, page.MustCompileSelector(r))
	}
	return compiled
}

// Scan evaluates the rule tiers in order and returns the first match.
// Tier order is a strict precedence: a page matching both a hostname and a
// DOM selector reports the hostname's label.
func (s *Scanner) Scan(snap page.Snapshot) Verdict {
	for _, r := range s.rules {
		if ok, label := r.match(snap); ok {
			return Verdict{Detected: true, Platform: label}
		}
	}
	return Verdict{}
}

// hostnameRule matches known AI-chat domains by hostname substring.
func hostnameRule(hostnames []string) func(page.Snapshot) (bool, string) {
	return func(snap page.Snapshot) (bool, string) {
		host := strings.ToLower(snap.Hostname)
		if host == "" {
			return false, ""
		}
		for _, h := range hostnames {
			if strings.Contains(host, h) {
				return true, h
			}
		}
		return false, ""
	}
}

// selectorRule matches chat-specific DOM selectors.
func selectorRule(selectors []page.Selector) func(page.Snapshot) (bool, string) {
	return func(snap page.Snapshot) (bool, string) {
		if snap.Doc == nil {
			return false, ""
		}
		for _, sel := range selectors {
			if snap.Doc.Match(sel) {
				return true, PlatformChatInterface
			}
		}
		return false, ""
	}
}

// heuristicRule matches the weaker structural signals, single selectors and
// conjunctions alike. Any one signal suffices.
func heuristicRule(single []page.Selector, conjunctions [][]page.Selector) func(page.Snapshot) (bool, string) {
	return func(snap page.Snapshot) (bool, string) {
		if snap.Doc == nil {
			return false, ""
		}
		for _, sel := range single {
			if snap.Doc.Match(sel) {
				return true, PlatformAssistant
			}
		}
		for _, group := range conjunctions {
			if snap.Doc.MatchAll(group...) {
				return true, PlatformAssistant
			}
		}
		return false, ""
	}
}
