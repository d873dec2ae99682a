// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assistant

import "sync"

// Rotator cycles through placeholder hints. It only tracks the index;
// callers decide when to advance it.
type Rotator struct {
	mu    sync.Mutex
	hints []string
	idx   int
}

// NewRotator creates a rotator over hints, or the standard placeholders.
func NewRotator(hints ...string) *Rotator {
	if len(hints) == 0 {
		hints = Placeholders
	}
	return &Rotator{hints: append([]string(nil), hints...)}
}

// Current returns the hint currently shown.
func (r *Rotator) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hints[r.idx]
}

// Next advances to the following hint, wrapping at the end, and returns it.
func (r *Rotator) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.idx = (r.idx + 1) % len(r.hints)
	return r.hints[r.idx]
}

// Index returns the current position.
func (r *Rotator) Index() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.idx
}
