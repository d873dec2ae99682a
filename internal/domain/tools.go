// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package domain

// Tool is a launcher tile on the Tools tab.
type Tool struct {
	ID    string
	Title string
	Roles []Role
}

// Allows reports whether role may see the tool.
func (t Tool) Allows(role Role) bool {
	for _, r := range t.Roles {
		if r == role {
			return true
		}
	}
	return false
}

var (
	all     = []Role{RoleAdmin, RoleMantech, RoleOpscrew}
	staff   = []Role{RoleAdmin, RoleMantech}
	admins  = []Role{RoleAdmin}
	opscrew = []Role{RoleOpscrew}
)

// Tools is the full catalogue in display order.
var Tools = []Tool{
	{ID: "boiler-logs", Title: "Boiler Logs", Roles: all},
	{ID: "chemical-logs", Title: "Chemical Logs", Roles: staff},
	{ID: "cws-logs", Title: "CWS Logs", Roles: all},
	{ID: "power-tracker", Title: "Power Tracker", Roles: staff},
	{ID: "pm-workorder", Title: "PM Workorder", Roles: staff},
	{ID: "digital-logsheets", Title: "Digital Logsheets", Roles: all},
	{ID: "coal-admin", Title: "Coal Admin", Roles: admins},
	{ID: "user-management", Title: "User Management", Roles: admins},
	{ID: "reports", Title: "Reports & Analytics", Roles: staff},
	{ID: "settings", Title: "Settings", Roles: admins},
}

// ComingSoon lists announced tools that are not built yet.
var ComingSoon = []Tool{
	{ID: "charging-tool", Title: "Charging Tool", Roles: opscrew},
	{ID: "activity-tracker", Title: "Activity Tracker", Roles: opscrew},
	{ID: "gpm-calculator", Title: "GPM Calculator", Roles: opscrew},
}

// ToolsFor returns the tools and coming-soon tiles visible to role.
func ToolsFor(role Role) (available, upcoming []Tool) {
	for _, t := range Tools {
		if t.Allows(role) {
			available = append(available, t)
		}
	}
	for _, t := range ComingSoon {
		if t.Allows(role) {
			upcoming = append(upcoming, t)
		}
	}
	return available, upcoming
}
