package sheet

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testColumns = []string{"ID", "Name", "Doctor"}

func TestLoadAll_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.xlsx")
	tbl, err := LoadAll(path, testColumns)
	require.NoError(t, err)
	assert.Equal(t, testColumns, tbl.Columns)
	assert.Empty(t, tbl.Rows)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appointments.xlsx")

	tbl := NewTable(testColumns)
	tbl.Append(map[string]string{"ID": "1", "Name": "Asha Rao", "Doctor": "Dr. Mehta"})
	tbl.Append(map[string]string{"ID": "2", "Name": "Vikram Iyer", "Doctor": "Dr. Shah"})
	require.NoError(t, SaveAll(path, tbl))

	got, err := LoadAll(path, testColumns)
	require.NoError(t, err)
	assert.Equal(t, tbl.Columns, got.Columns)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "Asha Rao", got.Rows[0]["Name"])
	assert.Equal(t, "Dr. Shah", got.Rows[1]["Doctor"])
}

func TestLoadAll_BackfillsMissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.xlsx")

	// Write a file with a narrower schema, then load with a wider one.
	old := NewTable([]string{"ID", "Name"})
	old.Append(map[string]string{"ID": "1", "Name": "Asha Rao"})
	require.NoError(t, SaveAll(path, old))

	got, err := LoadAll(path, []string{"ID", "Name", "Status"})
	require.NoError(t, err)
	assert.Contains(t, got.Columns, "Status")
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "", got.Rows[0]["Status"])
	assert.Equal(t, "Asha Rao", got.Rows[0]["Name"])
}

func TestLoadAll_KeepsUnknownColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.xlsx")

	old := NewTable([]string{"ID", "LegacyNote"})
	old.Append(map[string]string{"ID": "1", "LegacyNote": "keep me"})
	require.NoError(t, SaveAll(path, old))

	got, err := LoadAll(path, []string{"ID"})
	require.NoError(t, err)
	assert.Contains(t, got.Columns, "LegacyNote")
	assert.Equal(t, "keep me", got.Rows[0]["LegacyNote"])
}

func TestSaveAll_Overwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.xlsx")

	first := NewTable(testColumns)
	first.Append(map[string]string{"ID": "1", "Name": "A", "Doctor": "D"})
	first.Append(map[string]string{"ID": "2", "Name": "B", "Doctor": "D"})
	require.NoError(t, SaveAll(path, first))

	second := NewTable(testColumns)
	second.Append(map[string]string{"ID": "9", "Name": "Z", "Doctor": "D"})
	require.NoError(t, SaveAll(path, second))

	got, err := LoadAll(path, testColumns)
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "9", got.Rows[0]["ID"])
}

func TestMonthlyFileName(t *testing.T) {
	assert.Equal(t, "appointments_2026_09.xlsx", MonthlyFileName("appointments", "2026-09-15"))

	// Unparseable date falls back to the current month.
	now := time.Now().Format("2006_01")
	assert.Equal(t, "appointments_"+now+".xlsx", MonthlyFileName("appointments", "garbage"))
}
