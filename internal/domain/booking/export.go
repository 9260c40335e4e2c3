package booking

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/sheet"
)

// ExportTable converts records into the canonical spreadsheet table. It
// backs both the export endpoint and the export CLI command.
func ExportTable(records []*AppointmentRecord) *sheet.Table {
	tbl := sheet.NewTable(Columns)
	for _, rec := range records {
		tbl.Append(RecordToRow(rec))
	}
	return tbl
}

// ExportToFile writes the whole appointment book to a spreadsheet at path.
func (s *Service) ExportToFile(ctx context.Context, path string) (int, error) {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	if err := sheet.SaveAll(path, ExportTable(records)); err != nil {
		return 0, err
	}
	return len(records), nil
}

// ImportFromFile merges a spreadsheet into the book. Rows whose id already
// exists are skipped; rows without an id get the next free one.
func (s *Service) ImportFromFile(ctx context.Context, path string) (int, error) {
	tbl, err := sheet.LoadAll(path, Columns)
	if err != nil {
		return 0, err
	}
	existing, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	seen := make(map[int]bool, len(existing))
	for _, r := range existing {
		seen[r.ID] = true
	}

	imported := 0
	for _, row := range tbl.Rows {
		rec := RowToRecord(row)
		if rec.ID != 0 && seen[rec.ID] {
			continue
		}
		if rec.ID == 0 {
			rec.ID = NextAppointmentID(existing)
		}
		if err := s.repo.Insert(ctx, rec); err != nil {
			return imported, err
		}
		existing = append(existing, rec)
		seen[rec.ID] = true
		imported++
	}
	return imported, nil
}

// Export streams the appointment book as a spreadsheet download. An
// optional date query parameter filters to that month and names the file
// accordingly; an unparseable date falls back to the current month.
func (h *Handler) Export(c echo.Context) error {
	records, err := h.svc.repo.ListAll(c.Request().Context())
	if err != nil {
		return mapError(err)
	}

	date := c.QueryParam("date")
	if date != "" {
		month := date
		if len(month) >= 7 {
			month = month[:7]
		}
		filtered := records[:0]
		for _, r := range records {
			if strings.HasPrefix(r.Date, month) {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	tmp, err := os.CreateTemp("", "export-*.xlsx")
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "export failed")
	}
	tmpPath := tmp.Name()
	tmp.Close()
	os.Remove(tmpPath)
	defer os.Remove(tmpPath)

	if err := sheet.SaveAll(tmpPath, ExportTable(records)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "export failed")
	}
	return c.Attachment(tmpPath, filepath.Base(sheet.MonthlyFileName("appointments", date)))
}
