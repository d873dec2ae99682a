// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxBulletinTitle is the longest accepted title, in characters.
	MaxBulletinTitle = 100
	// MaxBulletinMessage is the longest accepted message, in characters.
	MaxBulletinMessage = 500
	// ActiveBulletinLimit is how many active bulletins the board shows.
	ActiveBulletinLimit = 3
)

// BulletinDraft is a bulletin awaiting validation.
type BulletinDraft struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Normalize validates the draft and returns it trimmed.
func (d BulletinDraft) Normalize() (BulletinDraft, error) {
	out := BulletinDraft{
		Title:   strings.TrimSpace(d.Title),
		Message: strings.TrimSpace(d.Message),
	}
	if out.Title == "" || out.Message == "" {
		field := "title"
		if out.Title != "" {
			field = "message"
		}
		return BulletinDraft{}, &ValidationError{Field: field, Message: "Please fill in both title and message"}
	}
	if n := utf8.RuneCountInString(out.Title); n > MaxBulletinTitle {
		return BulletinDraft{}, &ValidationError{
			Field:   "title",
			Message: fmt.Sprintf("must be at most %d characters, got %d", MaxBulletinTitle, n),
		}
	}
	if n := utf8.RuneCountInString(out.Message); n > MaxBulletinMessage {
		return BulletinDraft{}, &ValidationError{
			Field:   "message",
			Message: fmt.Sprintf("must be at most %d characters, got %d", MaxBulletinMessage, n),
		}
	}
	return out, nil
}
