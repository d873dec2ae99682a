// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// Actor is the operator performing an action.
type Actor struct {
	ID   string
	Name string
	Role Role
}

// IsAdmin reports whether the actor holds the Admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// =============================================================================
// APPROVAL WORKFLOW
// =============================================================================

// CanApprove reports whether u is awaiting approval.
func CanApprove(u User) bool {
	return u.Role == RoleGuest
}

// CanReject reports whether u can be demoted back to Guest.
func CanReject(u User) bool {
	return u.Role != RoleGuest && u.Role != RoleAdmin
}

// CanDelete reports whether actor may delete u.
func CanDelete(actor Actor, u User) bool {
	return CheckDelete(actor, u) == nil
}

// ApproveRole returns the role an approved user receives.
func ApproveRole(actor Actor, u User) (Role, error) {
	if !actor.IsAdmin() {
		return "", ErrForbidden
	}
	if !CanApprove(u) {
		return "", ErrInvalidTransition
	}
	return RoleOpscrew, nil
}

// RejectRole returns the role a rejected user falls back to.
func RejectRole(actor Actor, u User) (Role, error) {
	if !actor.IsAdmin() {
		return "", ErrForbidden
	}
	if !CanReject(u) {
		return "", ErrInvalidTransition
	}
	return RoleGuest, nil
}

// CheckDelete returns nil when actor may delete u.
func CheckDelete(actor Actor, u User) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if u.ID == actor.ID {
		return ErrSelfDelete
	}
	if u.Role == RoleAdmin {
		return ErrProtectedUser
	}
	return nil
}

// =============================================================================
// FILTERING
// =============================================================================

// UserFilter narrows the user table. An empty Search matches everyone;
// an empty Role means all roles.
type UserFilter struct {
	Search string
	Role   Role
}

var folder = cases.Fold()

// Match reports whether u passes the filter. Search matches the full name
// or company ID, case-insensitively.
func (f UserFilter) Match(u User) bool {
	if f.Role != "" && u.Role != f.Role {
		return false
	}
	term := folder.String(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	return strings.Contains(folder.String(u.FullName), term) ||
		strings.Contains(folder.String(u.CompanyID), term)
}

// FilterUsers returns the users passing f, preserving order.
func FilterUsers(users []User, f UserFilter) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		if f.Match(u) {
			out = append(out, u)
		}
	}
	return out
}

// PendingApprovals counts users still at Guest.
func PendingApprovals(users []User) int {
	n := 0
	for _, u := range users {
		if CanApprove(u) {
			n++
		}
	}
	return n
}
