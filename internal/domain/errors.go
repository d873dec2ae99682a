// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrForbidden is returned when the acting role may not perform an action.
	ErrForbidden = errors.New("operation not permitted for this role")
	// ErrSelfDelete is returned when an operator tries to delete their own account.
	ErrSelfDelete = errors.New("you cannot delete your own account")
	// ErrProtectedUser is returned when deleting an Admin account.
	ErrProtectedUser = errors.New("admin accounts cannot be deleted")
	// ErrInvalidTransition is returned when a role change does not apply
	// to the user's current role.
	ErrInvalidTransition = errors.New("role change not applicable")
)

// ValidationError describes an invalid input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
