// Package sheet implements a flat spreadsheet table codec. The whole table
// is loaded into memory, mutated, and written back in full. Concurrent
// writers race last-writer-wins; callers that need stronger guarantees use
// the database backend instead.
package sheet

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

const dataSheet = "Sheet1"

// Table is an in-memory spreadsheet table. Rows are keyed by column name so
// column order in the file does not matter to callers.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// NewTable returns an empty table with the given column set.
func NewTable(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// Append adds a row. Keys not in the column set are ignored on save.
func (t *Table) Append(row map[string]string) {
	t.Rows = append(t.Rows, row)
}

// ensureColumns back-fills columns missing from the file header. The schema
// is additive-only: unknown file columns are kept, canonical columns that
// the file lacks are added with empty values.
func (t *Table) ensureColumns(canonical []string) {
	have := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		have[c] = true
	}
	for _, c := range canonical {
		if !have[c] {
			t.Columns = append(t.Columns, c)
		}
	}
}

// LoadAll reads the whole table from path. A missing file yields an empty
// table with the canonical columns rather than an error.
func LoadAll(path string, canonical []string) (*Table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewTable(canonical), nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(dataSheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", dataSheet, err)
	}
	if len(rows) == 0 {
		return NewTable(canonical), nil
	}

	t := &Table{Columns: rows[0]}
	t.ensureColumns(canonical)

	for _, raw := range rows[1:] {
		row := make(map[string]string, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(raw) {
				row[col] = raw[i]
			} else {
				row[col] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// SaveAll overwrites path with the full table. The file is written to a
// temp name in the same directory and renamed into place so a crash cannot
// leave a torn file behind.
func SaveAll(path string, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(dataSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range t.Rows {
		cells := make([]interface{}, len(t.Columns))
		for j, col := range t.Columns {
			cells[j] = row[col]
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(dataSheet, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	// The temp name must keep a workbook extension or excelize refuses to save.
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.tmp%s", filepath.Base(path), filepath.Ext(path)))
	if err := f.SaveAs(tmp); err != nil {
		return fmt.Errorf("save spreadsheet: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace spreadsheet: %w", err)
	}
	return nil
}

// MonthlyFileName derives a per-month file name such as
// "appointments_2026_09.xlsx" from a date in 2006-01-02 form. An
// unparseable date falls back to the current month.
func MonthlyFileName(prefix, date string) string {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		d = time.Now()
	}
	return fmt.Sprintf("%s_%s.xlsx", prefix, d.Format("2006_01"))
}
