// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"fmt"
	"time"

	"github.com/jeranaias/nums-tui/internal/datasvc"
	"github.com/jeranaias/nums-tui/internal/domain"
)

// DemoAdminID is the id of the seeded administrator.
const DemoAdminID = "00000000-0000-4000-8000-000000000001"

// SeedDemo fills an in-memory backend with a small plant.
func SeedDemo(m *datasvc.Memory, now time.Time) error {
	now = now.UTC()
	ago := func(d time.Duration) time.Time { return now.Add(-d) }
	id := func(n int) string { return fmt.Sprintf("00000000-0000-4000-8000-%012d", n) }

	m.SetDefaults(TableBulletins, datasvc.Row{"is_active": true})
	m.SetDefaults(TableNotifications, datasvc.Row{"is_read": false, "type": string(domain.NotifyInfo)})

	users := []any{
		domain.User{ID: DemoAdminID, FullName: "Plant Administrator", CompanyID: "NB-0001", Role: domain.RoleAdmin, CreatedAt: ago(90 * 24 * time.Hour), UpdatedAt: ago(90 * 24 * time.Hour)},
		domain.User{ID: id(2), FullName: "Maria Santos", CompanyID: "NB-0112", Role: domain.RoleMantech, CreatedAt: ago(60 * 24 * time.Hour), UpdatedAt: ago(30 * 24 * time.Hour)},
		domain.User{ID: id(3), FullName: "Pedro Reyes", CompanyID: "NB-0245", Role: domain.RoleOpscrew, CreatedAt: ago(20 * 24 * time.Hour), UpdatedAt: ago(20 * 24 * time.Hour)},
		domain.User{ID: id(4), FullName: "Ana Cruz", CompanyID: "NB-0301", Role: domain.RoleGuest, CreatedAt: ago(2 * 24 * time.Hour), UpdatedAt: ago(2 * 24 * time.Hour)},
		domain.User{ID: id(5), FullName: "Jose Lim", CompanyID: "NB-0302", Role: domain.RoleGuest, CreatedAt: ago(5 * time.Hour), UpdatedAt: ago(5 * time.Hour)},
	}

	bulletins := []any{
		domain.Bulletin{ID: id(101), Title: "Boiler 2 shutdown", Message: "Planned maintenance Friday 08:00 to 16:00.", IsActive: true, CreatedAt: ago(3 * time.Hour)},
		domain.Bulletin{ID: id(102), Title: "Safety drill", Message: "Fire drill at the bottling hall, 14:00.", IsActive: true, CreatedAt: ago(26 * time.Hour)},
		domain.Bulletin{ID: id(103), Title: "Old notice", Message: "Superseded.", IsActive: false, CreatedAt: ago(72 * time.Hour)},
	}

	chemicals := []any{
		domain.Chemical{ID: id(201), Name: "Caustic Soda", CBY: 4.5, Liters: 1200, Status: domain.StockNormal, LastUpdated: ago(6 * time.Hour)},
		domain.Chemical{ID: id(202), Name: "Chlorine", CBY: 1.2, Liters: 300, Status: domain.StockLow, LastUpdated: ago(4 * time.Hour)},
		domain.Chemical{ID: id(203), Name: "Phosphate", CBY: 0.4, Liters: 80, Status: domain.StockCritical, LastUpdated: ago(2 * time.Hour)},
	}

	var yards []any
	for n := 1; n <= domain.DefaultYardCount; n++ {
		status := domain.YardAvailable
		if n%4 == 0 {
			status = domain.YardDepleted
		}
		yards = append(yards, domain.CoalYard{
			ID: id(300 + n), YardName: fmt.Sprintf("Yard %d", n), YardNumber: n,
			Status: status, LastUpdated: ago(time.Duration(n) * time.Hour),
		})
	}

	var power []any
	kw := map[domain.Section][2]float64{
		domain.SectionUtilities: {401.2, 455.4},
		domain.SectionBottling:  {812.0, 798.5},
		domain.SectionProcess:   {640.3, 652.9},
		domain.SectionLVSG5:     {120.0, 118.6},
	}
	n := 400
	for _, sec := range domain.Sections {
		for i, v := range kw[sec] {
			n++
			power = append(power, domain.PowerReading{
				ID: id(n), Section: sec, ConsumptionKW: v,
				RecordedAt: ago(time.Duration(2-i) * time.Hour),
			})
		}
	}

	salt := domain.SaltTracker{ID: id(501), Sacks: 24, Status: domain.StockLow, LastUpdated: ago(8 * time.Hour)}

	notifications := []any{
		domain.Notification{ID: id(601), Title: "Phosphate critical", Message: "Reorder phosphate today.", Kind: domain.NotifyDanger, CreatedAt: ago(time.Hour)},
		domain.Notification{ID: id(602), Title: "New registration", Message: "Jose Lim is waiting for approval.", Kind: domain.NotifyInfo, CreatedAt: ago(5 * time.Hour)},
		domain.Notification{ID: id(603), Title: "Yard 4 depleted", Message: "Coal yard 4 marked depleted.", Kind: domain.NotifyWarning, IsRead: true, CreatedAt: ago(30 * time.Hour)},
	}

	seeds := []struct {
		table string
		rows  []any
	}{
		{TableUsers, users},
		{TableBulletins, bulletins},
		{TableChemicals, chemicals},
		{TableCoalYards, yards},
		{TablePower, power},
		{TableSalt, []any{salt}},
		{TableNotifications, notifications},
	}
	for _, sd := range seeds {
		if err := m.Seed(sd.table, sd.rows...); err != nil {
			return err
		}
	}

	m.Register(FnLatestPower, func(tables map[string][]datasvc.Row, _ datasvc.Row) (any, error) {
		var readings []domain.PowerReading
		if err := remarshal(tables[TablePower], &readings); err != nil {
			return nil, err
		}
		return domain.LatestBySection(readings), nil
	})
	return nil
}
