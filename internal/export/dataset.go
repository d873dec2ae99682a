// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"strconv"
	"time"

	"github.com/jeranaias/nums-tui/internal/domain"
)

// Dataset names.
const (
	DatasetCoalYards = "coal_yards"
	DatasetChemicals = "chemicals"
	DatasetPower     = "power_consumption"
)

// Dataset is a named table of string cells.
type Dataset struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Empty reports whether the dataset has no rows.
func (d Dataset) Empty() bool {
	return len(d.Rows) == 0
}

// CoalYards converts coal yards to a dataset.
func CoalYards(yards []domain.CoalYard) Dataset {
	d := Dataset{Name: DatasetCoalYards, Header: []string{"yard_name", "yard_number", "status", "last_updated"}}
	for _, y := range yards {
		d.Rows = append(d.Rows, []string{
			y.YardName, strconv.Itoa(y.YardNumber), string(y.Status), formatTime(y.LastUpdated),
		})
	}
	return d
}

// Chemicals converts chemicals to a dataset.
func Chemicals(chems []domain.Chemical) Dataset {
	d := Dataset{Name: DatasetChemicals, Header: []string{"name", "cby", "liters", "status", "last_updated"}}
	for _, c := range chems {
		d.Rows = append(d.Rows, []string{
			c.Name, formatFloat(c.CBY), formatFloat(c.Liters), string(c.Status), formatTime(c.LastUpdated),
		})
	}
	return d
}

// Power converts power readings to a dataset.
func Power(readings []domain.PowerReading) Dataset {
	d := Dataset{Name: DatasetPower, Header: []string{"section", "consumption_kw", "recorded_at"}}
	for _, r := range readings {
		d.Rows = append(d.Rows, []string{
			string(r.Section), formatFloat(r.ConsumptionKW), formatTime(r.RecordedAt),
		})
	}
	return d
}

// Datasets builds the three exported datasets in their fixed order.
func Datasets(yards []domain.CoalYard, chems []domain.Chemical, readings []domain.PowerReading) []Dataset {
	return []Dataset{CoalYards(yards), Chemicals(chems), Power(readings)}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
