// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the dashboard key bindings.
type KeyMap struct {
	Quit          key.Binding
	NextTab       key.Binding
	PrevTab       key.Binding
	Up            key.Binding
	Down          key.Binding
	Left          key.Binding
	Right         key.Binding
	Export        key.Binding
	Refresh       key.Binding
	Notifications key.Binding
	Toggle        key.Binding
	Approve       key.Binding
	Reject        key.Binding
	Delete        key.Binding
	Confirm       key.Binding
	Search        key.Binding
	RoleFilter    key.Binding
	Compose       key.Binding
	Remove        key.Binding
	ViewAll       key.Binding
	Cancel        key.Binding
	Submit        key.Binding
	NextField     key.Binding
	DismissToast  key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		NextTab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab:       key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		Up:            key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:          key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:          key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev month")),
		Right:         key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next month")),
		Export:        key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		Refresh:       key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh")),
		Notifications: key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "notifications")),
		Toggle:        key.NewBinding(key.WithKeys("t", "enter"), key.WithHelp("t", "toggle yard")),
		Approve:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "approve")),
		Reject:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reject")),
		Delete:        key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Confirm:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
		Search:        key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		RoleFilter:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "role filter")),
		Compose:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new bulletin")),
		Remove:        key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		ViewAll:       key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "view all")),
		Cancel:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Submit:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		NextField:     key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
		DismissToast:  key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "dismiss")),
	}
}
