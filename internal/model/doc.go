// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for assistant conversations.
//
// # Key Types
//
//   - Conversation: append-only log seeded with the NUMI greeting
//   - Message: immutable value with ID, role, text and timestamp
//   - Role: user or assistant
//
// # Usage
//
//	conv := model.NewConversation()
//	conv.Append(model.NewUserMessage("status?"))
//	for _, m := range conv.List() {
//	    fmt.Println(m.Role.DisplayName(), m.Text)
//	}
package model
