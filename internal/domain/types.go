// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package domain

import (
	"fmt"
	"time"
)

// =============================================================================
// ROLES
// =============================================================================

// Role is an operator's access level.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleMantech Role = "Mantech"
	RoleOpscrew Role = "Opscrew"
	RoleGuest   Role = "Guest"
)

// Roles lists every role, most privileged first.
var Roles = []Role{RoleAdmin, RoleMantech, RoleOpscrew, RoleGuest}

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// =============================================================================
// RECORDS
// =============================================================================

// User is a row of the users table.
type User struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	CompanyID string    `json:"company_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Birthday  *string   `json:"birthday"`
	Avatar    *string   `json:"avatar"`
}

// Bulletin is a row of the bulletins table.
type Bulletin struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy *string   `json:"created_by"`
}

// StockStatus grades chemical and salt inventory.
type StockStatus string

const (
	StockNormal   StockStatus = "Normal"
	StockLow      StockStatus = "Low"
	StockCritical StockStatus = "Critical"
)

// ParseStockStatus validates a stock status.
func ParseStockStatus(s string) (StockStatus, error) {
	switch StockStatus(s) {
	case StockNormal, StockLow, StockCritical:
		return StockStatus(s), nil
	}
	return "", fmt.Errorf("unknown status %q, must be Normal, Low or Critical", s)
}

// Chemical is a row of the chemicals table.
type Chemical struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	CBY         float64     `json:"cby"`
	Liters      float64     `json:"liters"`
	Status      StockStatus `json:"status"`
	LastUpdated time.Time   `json:"last_updated"`
	UpdatedBy   *string     `json:"updated_by"`
}

// YardStatus is a coal yard's availability.
type YardStatus string

const (
	YardAvailable YardStatus = "Available"
	YardDepleted  YardStatus = "Depleted"
)

// Toggle returns the opposite status.
func (s YardStatus) Toggle() YardStatus {
	if s == YardAvailable {
		return YardDepleted
	}
	return YardAvailable
}

// CoalYard is a row of the coal_yards table.
type CoalYard struct {
	ID          string     `json:"id"`
	YardName    string     `json:"yard_name"`
	YardNumber  int        `json:"yard_number"`
	Status      YardStatus `json:"status"`
	LastUpdated time.Time  `json:"last_updated"`
	UpdatedBy   *string    `json:"updated_by"`
}

// Section is a metered plant section.
type Section string

const (
	SectionUtilities Section = "Utilities"
	SectionBottling  Section = "Bottling"
	SectionProcess   Section = "Process"
	SectionLVSG5     Section = "LVSG5"
)

// Sections lists the metered sections in display order.
var Sections = []Section{SectionUtilities, SectionBottling, SectionProcess, SectionLVSG5}

// PowerReading is a row of the power_consumption table.
type PowerReading struct {
	ID            string    `json:"id"`
	Section       Section   `json:"section"`
	ConsumptionKW float64   `json:"consumption_kw"`
	RecordedAt    time.Time `json:"recorded_at"`
	CreatedBy     *string   `json:"created_by"`
}

// SaltTracker is the single row of the salt_tracker table.
type SaltTracker struct {
	ID          string      `json:"id"`
	Sacks       int         `json:"sacks"`
	Status      StockStatus `json:"status"`
	LastUpdated time.Time   `json:"last_updated"`
	UpdatedBy   *string     `json:"updated_by"`
}

// NotificationKind is the severity of a notification.
type NotificationKind string

const (
	NotifyInfo    NotificationKind = "info"
	NotifyWarning NotificationKind = "warning"
	NotifyDanger  NotificationKind = "danger"
)

// Notification is a row of the notifications table.
type Notification struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Kind      NotificationKind `json:"type"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

// LatestBySection keeps the newest reading per section, in section
// display order. Sections without readings are omitted.
func LatestBySection(readings []PowerReading) []PowerReading {
	latest := make(map[Section]PowerReading)
	for _, r := range readings {
		cur, ok := latest[r.Section]
		if !ok || r.RecordedAt.After(cur.RecordedAt) {
			latest[r.Section] = r
		}
	}

	out := make([]PowerReading, 0, len(latest))
	for _, s := range Sections {
		if r, ok := latest[s]; ok {
			out = append(out, r)
			delete(latest, s)
		}
	}
	// Unknown sections go last, in first-seen order.
	for _, r := range readings {
		if v, ok := latest[r.Section]; ok {
			out = append(out, v)
			delete(latest, r.Section)
		}
	}
	return out
}
