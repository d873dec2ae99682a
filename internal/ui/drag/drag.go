// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package drag tracks pointer drags of the assistant panel header.
package drag

// Point is a position in panel coordinates (terminal cells in the TUI).
type Point struct {
	X, Y int
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// State is the controller state.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Controller moves a panel by keeping the pointer-to-origin offset
// captured at press time. Positions are never clamped to the screen.
type Controller struct {
	state    State
	position Point
	offset   Point
	disabled bool
}

// NewController returns an idle controller at pos.
func NewController(pos Point) *Controller {
	return &Controller{position: pos}
}

// Position returns the current panel origin.
func (c *Controller) Position() Point { return c.position }

// SetPosition moves the panel without dragging.
func (c *Controller) SetPosition(p Point) { c.position = p }

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool { return c.state == Dragging }

// SetDisabled turns dragging off, as in the compact layout. Disabling
// drops any drag in progress.
func (c *Controller) SetDisabled(disabled bool) {
	c.disabled = disabled
	if disabled {
		c.state = Idle
	}
}

// Disabled reports whether dragging is off.
func (c *Controller) Disabled() bool { return c.disabled }

// Press starts a drag when the pointer lands on the handle. It returns
// whether a drag started.
func (c *Controller) Press(pointer Point, onHandle bool) bool {
	if c.disabled || !onHandle {
		return false
	}
	c.offset = pointer.Sub(c.position)
	c.state = Dragging
	return true
}

// Move follows the pointer while dragging. It returns whether the
// position changed.
func (c *Controller) Move(pointer Point) bool {
	if c.state != Dragging {
		return false
	}
	next := pointer.Sub(c.offset)
	if next == c.position {
		return false
	}
	c.position = next
	return true
}

// Release ends any drag. Releasing while idle is a no-op.
func (c *Controller) Release() {
	c.state = Idle
}
