// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jeranaias/nums-tui/internal/domain"
)

var exportDay = time.Date(2025, 1, 10, 23, 30, 0, 0, time.FixedZone("PHT", 8*3600))

func sampleYards() []domain.CoalYard {
	at := time.Date(2025, 1, 10, 6, 0, 0, 0, time.UTC)
	return []domain.CoalYard{
		{YardName: "Yard 1", YardNumber: 1, Status: domain.YardAvailable, LastUpdated: at},
		{YardName: `Yard "North", 2`, YardNumber: 2, Status: domain.YardDepleted, LastUpdated: at},
	}
}

func sampleChemicals() []domain.Chemical {
	return []domain.Chemical{{Name: "Chlorine", CBY: 1.25, Liters: 300, Status: domain.StockLow}}
}

func TestCoalYardsDataset(t *testing.T) {
	d := CoalYards(sampleYards())
	assert.Equal(t, []string{"yard_name", "yard_number", "status", "last_updated"}, d.Header)
	assert.Equal(t, []string{"Yard 1", "1", "Available", "2025-01-10T06:00:00Z"}, d.Rows[0])
	assert.False(t, d.Empty())
	assert.True(t, Power(nil).Empty())
}

func TestCSVExporter_QuotesFields(t *testing.T) {
	out, err := NewCSVExporter().Export(CoalYards(sampleYards()))
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, `Yard "North", 2`, records[2][0])

	_, err = NewCSVExporter().Export()
	assert.Error(t, err)
}

func TestWriteAll_CSVSkipsEmpty(t *testing.T) {
	dir := t.TempDir()
	res, err := WriteAll(Datasets(sampleYards(), sampleChemicals(), nil), &Options{
		OutputDir: dir,
		Format:    FormatCSV,
		Now:       func() time.Time { return exportDay },
	})
	require.NoError(t, err)

	// 23:30 at +08:00 is still the 10th in UTC.
	assert.Equal(t, []string{
		filepath.Join(dir, "coal_yards_2025-01-10.csv"),
		filepath.Join(dir, "chemicals_2025-01-10.csv"),
	}, res.Files)
	assert.Equal(t, []string{DatasetPower}, res.Skipped)

	data, err := os.ReadFile(res.Files[1])
	require.NoError(t, err)
	assert.Equal(t, "name,cby,liters,status,last_updated\nChlorine,1.25,300,Low,\n", string(data))
}

func TestWriteAll_NothingToExport(t *testing.T) {
	dir := t.TempDir()
	res, err := WriteAll(Datasets(nil, nil, nil), &Options{OutputDir: dir})
	require.NoError(t, err)
	assert.Empty(t, res.Files)
	assert.Len(t, res.Skipped, 3)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteAll_XLSXWorkbook(t *testing.T) {
	dir := t.TempDir()
	res, err := WriteAll(Datasets(sampleYards(), sampleChemicals(), nil), &Options{
		OutputDir: dir,
		Format:    FormatXLSX,
		Now:       func() time.Time { return exportDay },
	})
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "nums_export_2025-01-10.xlsx")}, res.Files)

	f, err := excelize.OpenFile(res.Files[0])
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DatasetCoalYards, DatasetChemicals}, f.GetSheetList())

	rows, err := f.GetRows(DatasetChemicals)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "name", rows[0][0])
	assert.Equal(t, "Chlorine", rows[1][0])
	assert.Equal(t, "1.25", rows[1][1])
}

func TestForFormat(t *testing.T) {
	e, err := ForFormat("")
	require.NoError(t, err)
	assert.Equal(t, ".csv", e.FileExtension())

	e, err = ForFormat(FormatXLSX)
	require.NoError(t, err)
	assert.Contains(t, e.MimeType(), "spreadsheetml")

	_, err = ForFormat("pdf")
	assert.Error(t, err)
}
