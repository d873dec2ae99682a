// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package layout classifies the viewport as compact or wide.
package layout

import (
	"os"
	"sync"

	"golang.org/x/term"
)

// DefaultThreshold is the widest viewport, in pixels, still treated as compact.
const DefaultThreshold = 768

// DefaultCellWidth is the assumed pixel width of one terminal column.
const DefaultCellWidth = 8

// =============================================================================
// SIZE PROVIDERS
// =============================================================================

// SizeProvider reports the current viewport width in pixels.
type SizeProvider interface {
	Width() int
}

// Fixed is a SizeProvider with a constant width.
type Fixed int

// Width returns the fixed width.
func (f Fixed) Width() int { return int(f) }

// Terminal measures the controlling terminal and converts columns to pixels.
type Terminal struct {
	Fd        int
	CellWidth int
}

// NewTerminal returns a provider for stdout.
func NewTerminal(cellWidth int) Terminal {
	if cellWidth <= 0 {
		cellWidth = DefaultCellWidth
	}
	return Terminal{Fd: int(os.Stdout.Fd()), CellWidth: cellWidth}
}

// Width returns the terminal width in pixels, or 0 when it cannot be measured.
func (t Terminal) Width() int {
	cols, _, err := term.GetSize(t.Fd)
	if err != nil {
		return 0
	}
	return cols * t.CellWidth
}

// ColumnsToPixels converts a terminal column count to viewport pixels.
func ColumnsToPixels(cols, cellWidth int) int {
	if cellWidth <= 0 {
		cellWidth = DefaultCellWidth
	}
	return cols * cellWidth
}

// =============================================================================
// CLASSIFIER
// =============================================================================

// Classifier holds the current compact flag. It is recomputed from scratch
// on every observation; there is no hysteresis.
type Classifier struct {
	mu        sync.RWMutex
	provider  SizeProvider
	threshold int
	width     int
	compact   bool
}

// NewClassifier creates a classifier and evaluates it immediately.
func NewClassifier(provider SizeProvider, threshold int) *Classifier {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	c := &Classifier{provider: provider, threshold: threshold}
	c.Refresh()
	return c
}

// IsCompact reports whether width falls on the compact side of threshold.
func IsCompact(width, threshold int) bool {
	return width <= threshold
}

// Refresh re-reads the width from the provider.
func (c *Classifier) Refresh() bool {
	width := 0
	if c.provider != nil {
		width = c.provider.Width()
	}
	return c.Observe(width)
}

// Observe records a new width, as delivered by a resize notification, and
// returns the resulting compact flag.
func (c *Classifier) Observe(width int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width = width
	c.compact = IsCompact(width, c.threshold)
	return c.compact
}

// Compact returns the current classification.
func (c *Classifier) Compact() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.compact
}

// Width returns the last observed width in pixels.
func (c *Classifier) Width() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.width
}

// Threshold returns the configured threshold.
func (c *Classifier) Threshold() int {
	return c.threshold
}
