// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sync"
	"testing"
	"time"
)

func TestNewConversation_SeededWithGreeting(t *testing.T) {
	conv := NewConversation()

	if conv.Len() != 1 {
		t.Fatalf("Len = %d, want 1", conv.Len())
	}
	first := conv.List()[0]
	if first.Role != RoleAssistant {
		t.Errorf("seed role = %s, want assistant", first.Role)
	}
	if first.Text != Greeting {
		t.Errorf("seed text = %q", first.Text)
	}
	if first.ID == "" {
		t.Error("seed message has no ID")
	}
}

func TestConversation_AppendPreservesOrder(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewUserMessage("first"))
	conv.Append(NewAssistantMessage("second"))
	conv.Append(NewUserMessage("third"))

	list := conv.List()
	want := []string{Greeting, "first", "second", "third"}
	if len(list) != len(want) {
		t.Fatalf("Len = %d, want %d", len(list), len(want))
	}
	for i, w := range want {
		if list[i].Text != w {
			t.Errorf("list[%d] = %q, want %q", i, list[i].Text, w)
		}
	}
	if conv.Last().Text != "third" {
		t.Errorf("Last = %q", conv.Last().Text)
	}
}

func TestConversation_ListIsACopy(t *testing.T) {
	conv := NewConversation()
	list := conv.List()
	list[0].Text = "tampered"

	if conv.List()[0].Text != Greeting {
		t.Error("mutating List() result changed the stored message")
	}
}

func TestConversation_IDsAreUnique(t *testing.T) {
	conv := NewConversation()
	for i := 0; i < 100; i++ {
		conv.Append(NewUserMessage("x"))
	}
	seen := make(map[string]bool)
	for _, m := range conv.List() {
		if seen[m.ID] {
			t.Fatalf("duplicate ID %s", m.ID)
		}
		seen[m.ID] = true
	}
}

func TestConversation_ConcurrentAppend(t *testing.T) {
	conv := NewConversation()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			conv.Append(NewAssistantMessage("reply"))
		}()
		go func() {
			defer wg.Done()
			_ = conv.List()
		}()
	}
	wg.Wait()

	if conv.Len() != 51 {
		t.Errorf("Len = %d, want 51", conv.Len())
	}
}

func TestRole_DisplayName(t *testing.T) {
	if RoleUser.DisplayName() != "You" {
		t.Errorf("user display = %q", RoleUser.DisplayName())
	}
	if RoleAssistant.DisplayName() != "NUMI" {
		t.Errorf("assistant display = %q", RoleAssistant.DisplayName())
	}
}

func TestMessage_FormatTime(t *testing.T) {
	at := time.Date(2025, 1, 10, 14, 5, 0, 0, time.UTC)
	m := NewMessage(RoleUser, "hi", at)
	if got := m.FormatTime(); got != "2:05 PM" {
		t.Errorf("FormatTime = %q, want 2:05 PM", got)
	}
	if !m.IsUser() {
		t.Error("IsUser = false")
	}
}
