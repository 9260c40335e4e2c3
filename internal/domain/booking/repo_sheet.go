package booking

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/platform/sheet"
)

// Columns is the canonical spreadsheet schema for the appointment book.
var Columns = []string{
	"ID", "PatientID", "Name", "Age", "Gender", "Height", "Weight", "Mobile",
	"AppointmentDate", "AppointmentTime", "Doctor", "Notes", "Status",
	"BookedOn", "ReportFiles", "PrescriptionFiles", "FollowUpDate", "Diagnosis",
}

const fileListSep = ";"

// RecordToRow converts a record to its spreadsheet representation.
func RecordToRow(a *AppointmentRecord) map[string]string {
	return map[string]string{
		"ID":                strconv.Itoa(a.ID),
		"PatientID":         a.PatientID,
		"Name":              a.Name,
		"Age":               a.Age,
		"Gender":            a.Gender,
		"Height":            a.Height,
		"Weight":            a.Weight,
		"Mobile":            a.Mobile,
		"AppointmentDate":   a.Date,
		"AppointmentTime":   a.Time,
		"Doctor":            a.Doctor,
		"Notes":             a.Notes,
		"Status":            string(a.Status),
		"BookedOn":          a.BookedOn.Format(time.RFC3339),
		"ReportFiles":       strings.Join(a.ReportFiles, fileListSep),
		"PrescriptionFiles": strings.Join(a.PrescriptionFiles, fileListSep),
		"FollowUpDate":      a.FollowUpDate,
		"Diagnosis":         a.Diagnosis,
	}
}

// RowToRecord converts a spreadsheet row back to a record. Unparseable
// fields degrade to zero values rather than failing the whole load.
func RowToRecord(row map[string]string) *AppointmentRecord {
	id, _ := strconv.Atoi(strings.TrimSpace(row["ID"]))
	bookedOn, _ := time.Parse(time.RFC3339, row["BookedOn"])

	status := Status(row["Status"])
	if !ValidStatus(status) {
		status = StatusBooked
	}

	return &AppointmentRecord{
		ID:                id,
		PatientID:         row["PatientID"],
		Name:              row["Name"],
		Age:               row["Age"],
		Gender:            row["Gender"],
		Height:            row["Height"],
		Weight:            row["Weight"],
		Mobile:            row["Mobile"],
		Date:              row["AppointmentDate"],
		Time:              row["AppointmentTime"],
		Doctor:            row["Doctor"],
		Notes:             row["Notes"],
		Status:            status,
		BookedOn:          bookedOn,
		ReportFiles:       splitFileList(row["ReportFiles"]),
		PrescriptionFiles: splitFileList(row["PrescriptionFiles"]),
		FollowUpDate:      row["FollowUpDate"],
		Diagnosis:         row["Diagnosis"],
	}
}

func splitFileList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, fileListSep)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// apptRepoSheet stores the appointment book in one spreadsheet file. Every
// operation loads the whole table, mutates it in memory and writes it back.
// The mutex serializes writers within this process; across processes the
// last writer wins.
type apptRepoSheet struct {
	mu   sync.Mutex
	path string
}

// NewRepoSheet returns the spreadsheet-backed appointment repository.
func NewRepoSheet(path string) AppointmentRepository {
	return &apptRepoSheet{path: path}
}

func (r *apptRepoSheet) load() ([]*AppointmentRecord, error) {
	tbl, err := sheet.LoadAll(r.path, Columns)
	if err != nil {
		return nil, err
	}
	records := make([]*AppointmentRecord, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		records = append(records, RowToRecord(row))
	}
	return records, nil
}

func (r *apptRepoSheet) save(records []*AppointmentRecord) error {
	tbl := sheet.NewTable(Columns)
	for _, rec := range records {
		tbl.Append(RecordToRow(rec))
	}
	return sheet.SaveAll(r.path, tbl)
}

func (r *apptRepoSheet) Insert(ctx context.Context, rec *AppointmentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	records, err := r.load()
	if err != nil {
		return err
	}
	return r.save(append(records, rec))
}

func (r *apptRepoSheet) Update(ctx context.Context, rec *AppointmentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	records, err := r.load()
	if err != nil {
		return err
	}
	for i, existing := range records {
		if existing.ID == rec.ID {
			records[i] = rec
			return r.save(records)
		}
	}
	return ErrNotFound
}

func (r *apptRepoSheet) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	records, err := r.load()
	if err != nil {
		return err
	}
	for i, existing := range records {
		if existing.ID == id {
			records = append(records[:i], records[i+1:]...)
			return r.save(records)
		}
	}
	return ErrNotFound
}

func (r *apptRepoSheet) GetByID(ctx context.Context, id int) (*AppointmentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	records, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, ErrNotFound
}

func (r *apptRepoSheet) ListAll(ctx context.Context) ([]*AppointmentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

func (r *apptRepoSheet) Search(ctx context.Context, params SearchParams, limit, offset int) ([]*AppointmentRecord, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	records, err := r.load()
	if err != nil {
		return nil, 0, err
	}

	var matched []*AppointmentRecord
	for _, rec := range records {
		if params.Doctor != "" && rec.Doctor != params.Doctor {
			continue
		}
		if params.Date != "" && rec.Date != params.Date {
			continue
		}
		if params.Status != "" && rec.Status != params.Status {
			continue
		}
		if params.Mobile != "" && NormalizeMobile(rec.Mobile) != NormalizeMobile(params.Mobile) {
			continue
		}
		if params.Name != "" && !strings.Contains(strings.ToLower(rec.Name), strings.ToLower(params.Name)) {
			continue
		}
		matched = append(matched, rec)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Date != matched[j].Date {
			return matched[i].Date < matched[j].Date
		}
		return matched[i].Time < matched[j].Time
	})

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return matched[offset:end], total, nil
}
