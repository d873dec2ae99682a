// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package domain

import "time"

const (
	// DefaultYardCount is shown as the yard total before any yards load.
	DefaultYardCount = 9
	// AveragePowerKW is the reference draw for the Utilities section.
	AveragePowerKW = 420
)

// Scoreboard is the overview summary across the plant tables.
type Scoreboard struct {
	AvailableYards int      `json:"available_yards"`
	TotalYards     int      `json:"total_yards"`
	DepletedYards  []string `json:"depleted_yards"`

	Chemicals []Chemical `json:"chemicals"`

	Salt        *SaltTracker `json:"salt,omitempty"`
	SaltPercent int          `json:"salt_percent"`

	CurrentPowerKW float64 `json:"current_power_kw"`
	AveragePowerKW float64 `json:"average_power_kw"`
	PowerTrend     string  `json:"power_trend"`

	GeneratedAt time.Time `json:"generated_at"`
}

// AbovePowerAverage reports whether current draw exceeds the average.
func (s Scoreboard) AbovePowerAverage() bool {
	return s.CurrentPowerKW > s.AveragePowerKW
}

// BuildScoreboard summarises the loaded tables. salt may be nil.
func BuildScoreboard(yards []CoalYard, chemicals []Chemical, salt *SaltTracker, latestPower []PowerReading, now time.Time) Scoreboard {
	sb := Scoreboard{
		TotalYards:     len(yards),
		DepletedYards:  []string{},
		Chemicals:      chemicals,
		Salt:           salt,
		AveragePowerKW: AveragePowerKW,
		GeneratedAt:    now,
	}
	if sb.TotalYards == 0 {
		sb.TotalYards = DefaultYardCount
	}
	for _, y := range yards {
		switch y.Status {
		case YardAvailable:
			sb.AvailableYards++
		case YardDepleted:
			sb.DepletedYards = append(sb.DepletedYards, y.YardName)
		}
	}

	if salt != nil {
		sb.SaltPercent = SaltGauge(salt.Status)
	}

	for _, p := range latestPower {
		if p.Section == SectionUtilities {
			sb.CurrentPowerKW = p.ConsumptionKW
			break
		}
	}
	sb.PowerTrend = "Normal"
	if sb.AbovePowerAverage() {
		sb.PowerTrend = "Above Average"
	}
	return sb
}

// SaltGauge returns the fill percentage drawn for a salt status.
func SaltGauge(status StockStatus) int {
	switch status {
	case StockNormal:
		return 70
	case StockLow:
		return 35
	default:
		return 15
	}
}

// ToggleYard returns the new status for a coal yard toggle. Only admins
// may change yard status.
func ToggleYard(actor Actor, y CoalYard) (YardStatus, error) {
	if !actor.IsAdmin() {
		return "", ErrForbidden
	}
	return y.Status.Toggle(), nil
}
