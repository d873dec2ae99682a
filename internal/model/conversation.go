// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sync"
	"time"
)

// Greeting is the assistant message every conversation starts with.
const Greeting = "Hi! I'm NUMI, your AI assistant. Ask me anything about the plant operations!"

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is the ordered, append-only message log for one panel
// session. It is never empty: construction seeds the assistant greeting.
// Safe for concurrent use; replies are appended from timer goroutines.
type Conversation struct {
	mu       sync.RWMutex
	messages []Message
}

// NewConversation returns a conversation seeded with the standard greeting.
func NewConversation() *Conversation {
	return NewConversationWithGreeting(Greeting, time.Now())
}

// NewConversationWithGreeting seeds the conversation with a custom greeting.
func NewConversationWithGreeting(greeting string, now time.Time) *Conversation {
	return &Conversation{
		messages: []Message{NewMessage(RoleAssistant, greeting, now)},
	}
}

// Append adds msg to the end of the log. No validation is done here;
// blank input is filtered by the caller.
func (c *Conversation) Append(msg Message) {
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
}

// List returns a copy of all messages, oldest first.
func (c *Conversation) List() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// Last returns the newest message.
func (c *Conversation) Last() Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.messages[len(c.messages)-1]
}
