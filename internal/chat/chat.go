// Package chat implements the guided chat surface. It is deliberately not a
// real assistant: every user message gets exactly one canned reply chosen by
// the directness setting, nudging the user back toward their own thinking.
package chat

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mindguard/mindguard/internal/content"
	"github.com/mindguard/mindguard/internal/logging"
)

// DefaultReplyDelay is the pause before the canned reply appears, long enough
// to read like a considered response.
const DefaultReplyDelay = 900 * time.Millisecond

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in the transcript.
type Message struct {
	ID   string
	Role Role
	Body string
	Time time.Time
}

// Session is one guided chat conversation. A session opened from an intercept
// carries the intercepted query as its seed, which the view prefills into the
// input. Close cancels any reply still pending.
type Session struct {
	library    *content.Library
	directness func() int
	replyDelay time.Duration
	logger     *logging.Logger
	onMessage  func(Message)

	mu       sync.Mutex
	seed     string
	messages []Message
	pending  *time.Timer
	closed   bool
}

// Option configures a Session.
type Option func(*Session)

// WithSeed prefills the session input with an intercepted query.
func WithSeed(seed string) Option {
	return func(s *Session) {
		s.seed = seed
	}
}

// WithDirectness supplies the current directness level. The function is read
// at reply time, so mid-session settings changes take effect immediately.
func WithDirectness(fn func() int) Option {
	return func(s *Session) {
		if fn != nil {
			s.directness = fn
		}
	}
}

// WithReplyDelay overrides the reply delay.
func WithReplyDelay(d time.Duration) Option {
	return func(s *Session) {
		if d >= 0 {
			s.replyDelay = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// OnMessage registers a callback fired for every appended message, user and
// assistant alike.
func OnMessage(fn func(Message)) Option {
	return func(s *Session) {
		s.onMessage = fn
	}
}

// NewSession creates a guided chat session backed by the content library.
func NewSession(library *content.Library, opts ...Option) *Session {
	s := &Session{
		library:    library,
		directness: func() int { return 3 },
		replyDelay: DefaultReplyDelay,
		logger:     logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed returns the intercepted query this session was opened with, or "".
func (s *Session) Seed() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seed
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Send appends a user message and schedules its reply. Blank messages are
// dropped. A send while a reply is still pending reschedules the reply, so
// the assistant answers the latest message once instead of queueing replies.
func (s *Session) Send(text string) (Message, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, false
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Message{}, false
	}

	msg := Message{
		ID:   uuid.NewString(),
		Role: RoleUser,
		Body: text,
		Time: time.Now(),
	}
	s.messages = append(s.messages, msg)

	if s.pending != nil {
		s.pending.Stop()
	}
	s.pending = time.AfterFunc(s.replyDelay, func() { s.reply(text) })
	s.mu.Unlock()

	s.logger.Debug("chat message sent", "id", msg.ID)
	if s.onMessage != nil {
		s.onMessage(msg)
	}
	return msg, true
}

// reply appends the canned assistant response for a user message.
func (s *Session) reply(userMessage string) {
	body := s.library.ChatReply(s.directness(), userMessage)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	msg := Message{
		ID:   uuid.NewString(),
		Role: RoleAssistant,
		Body: body,
		Time: time.Now(),
	}
	s.messages = append(s.messages, msg)
	s.pending = nil
	s.mu.Unlock()

	if s.onMessage != nil {
		s.onMessage(msg)
	}
}

// Close ends the session and cancels any pending reply.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}
