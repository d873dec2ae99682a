// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "NUMI"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single entry in a conversation. It is passed and stored by
// value, so a message cannot change after it has been appended.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message with a generated ID stamped at now.
func NewMessage(role Role, text string, now time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: now,
	}
}

// NewUserMessage creates a user message stamped with the current time.
func NewUserMessage(text string) Message {
	return NewMessage(RoleUser, text, time.Now())
}

// NewAssistantMessage creates an assistant message stamped with the current time.
func NewAssistantMessage(text string) Message {
	return NewMessage(RoleAssistant, text, time.Now())
}

// IsUser reports whether the message was typed by the operator.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// FormatTime returns the message time in the short clock form shown under
// each bubble.
func (m Message) FormatTime() string {
	return m.Timestamp.Format("3:04 PM")
}
