// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assistant

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jeranaias/nums-tui/internal/model"
)

// DefaultDelay is the pause before a canned reply is appended.
const DefaultDelay = 1000 * time.Millisecond

// =============================================================================
// SESSION
// =============================================================================

// Session owns a conversation and the reply timers scheduled against it.
type Session struct {
	conv      *model.Conversation
	responder Responder
	clock     Clock
	delay     time.Duration
	logger    *slog.Logger

	replies chan model.Message
	pending atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu orders appends against Close.
	mu     sync.Mutex
	closed bool
}

// Option configures a Session.
type Option func(*Session)

// WithDelay sets the reply delay.
func WithDelay(d time.Duration) Option {
	return func(s *Session) { s.delay = d }
}

// WithClock sets the time source.
func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithResponder replaces the default round-robin responder.
func WithResponder(r Responder) Option {
	return func(s *Session) { s.responder = r }
}

// WithConversation attaches an existing conversation.
func WithConversation(c *model.Conversation) Option {
	return func(s *Session) { s.conv = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// NewSession creates a session with a freshly seeded conversation.
func NewSession(opts ...Option) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		delay:   DefaultDelay,
		clock:   RealClock{},
		logger:  slog.Default(),
		replies: make(chan model.Message, 64),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.responder == nil {
		s.responder = NewSimulatedResponder(PolicyRoundRobin)
	}
	if s.conv == nil {
		s.conv = model.NewConversationWithGreeting(model.Greeting, s.clock.Now())
	}
	s.logger = s.logger.With("component", "assistant")
	return s
}

// Conversation returns the underlying conversation.
func (s *Session) Conversation() *model.Conversation {
	return s.conv
}

// Replies delivers each assistant reply after it has been appended.
// Delivery is best effort: when nobody drains the channel, replies are
// still appended to the conversation.
func (s *Session) Replies() <-chan model.Message {
	return s.replies
}

// Pending returns the number of replies still waiting on their timer.
func (s *Session) Pending() int {
	return int(s.pending.Load())
}

// Submit appends the operator's message and schedules one reply.
// Whitespace-only text is ignored and nothing is scheduled; Submit then
// returns false. Submissions after Close are ignored as well.
func (s *Session) Submit(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.conv.Append(model.NewMessage(model.RoleUser, text, s.clock.Now()))
	timer := s.clock.After(s.delay)
	s.pending.Add(1)
	s.wg.Add(1)
	s.mu.Unlock()

	go s.awaitReply(text, timer)
	return true
}

func (s *Session) awaitReply(prompt string, timer <-chan time.Time) {
	defer s.wg.Done()
	defer s.pending.Add(-1)

	select {
	case <-s.ctx.Done():
		return
	case <-timer:
	}

	text, err := s.responder.Reply(s.ctx, prompt)
	if err != nil {
		if s.ctx.Err() == nil {
			s.logger.Warn("reply failed", "error", err)
		}
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	msg := model.NewMessage(model.RoleAssistant, text, s.clock.Now())
	s.conv.Append(msg)
	s.mu.Unlock()

	select {
	case s.replies <- msg:
	default:
		s.logger.Debug("reply notification dropped", "id", msg.ID)
	}
}

// Wait blocks until every scheduled reply has been appended or cancelled.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close cancels all pending replies and waits for their goroutines.
// Nothing is appended to the conversation once Close returns.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
