package prescription

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/domain/booking"
	"github.com/clinicdesk/clinicdesk/internal/platform/attachments"
	"github.com/clinicdesk/clinicdesk/internal/platform/notify"
)

var testClinic = ClinicInfo{Name: "Sunrise Clinic", Address: "12 MG Road, Pune"}

func validPrescription() *Prescription {
	return &Prescription{
		Diagnosis:      "Viral fever",
		Investigations: "CBC, dengue NS1",
		Medicines: []MedicineLine{
			{Name: "Paracetamol 500mg", Dosage: "1-0-1 after food", Duration: "5 days"},
			{Name: "Cetirizine 10mg", Dosage: "0-0-1", Duration: "3 days"},
		},
		Advice:       "Plenty of fluids, rest",
		FollowUpDate: "2026-09-22",
	}
}

func TestRenderPDF(t *testing.T) {
	p := validPrescription()
	p.AppointmentID = 7
	p.PatientID = "P0001"
	p.PatientName = "Asha Rao"
	p.Age = "34"
	p.Gender = "F"
	p.Doctor = "Dr. Mehta"
	p.Date = "2026-09-15"

	data, err := RenderPDF(testClinic, p)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output is not a PDF, starts with %q", data[:8])
	}

	// The investigations block is optional; skipping it still renders.
	p.Investigations = ""
	if _, err := RenderPDF(testClinic, p); err != nil {
		t.Errorf("render without investigations: %v", err)
	}
}

func newTestSetup(t *testing.T) (*Service, *booking.Service, attachments.Store, int) {
	t.Helper()
	store := attachments.NewMemStore()
	appts := booking.NewService(booking.NewRepoSheet(t.TempDir()+"/book.xlsx"),
		store, notify.NewTemplateEngine(), booking.DefaultPolicy(), testClinic.Name)

	result, err := appts.Book(context.Background(), &booking.AppointmentRecord{
		Name: "Asha Rao", Mobile: "9876543210", Date: "2026-09-15",
		Time: "10:30", Doctor: "Dr. Mehta",
	})
	if err != nil {
		t.Fatal(err)
	}

	svc := NewService(appts, store, testClinic)
	svc.now = func() time.Time {
		return time.Date(2026, 9, 15, 11, 0, 0, 0, time.UTC)
	}
	return svc, appts, store, result.Record.ID
}

func TestIssue(t *testing.T) {
	svc, appts, store, id := newTestSetup(t)

	rec, file, err := svc.Issue(context.Background(), id, validPrescription())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	want := "P0001_1_20260915T110000.pdf"
	if file != want {
		t.Errorf("expected file %s, got %s", want, file)
	}
	if rec.Status != booking.StatusSeen {
		t.Errorf("expected Seen, got %s", rec.Status)
	}
	if rec.Diagnosis != "Viral fever" || rec.FollowUpDate != "2026-09-22" {
		t.Errorf("visit fields not set: %+v", rec)
	}
	if len(rec.PrescriptionFiles) != 1 || rec.PrescriptionFiles[0] != want {
		t.Errorf("file reference missing: %v", rec.PrescriptionFiles)
	}

	// The stored bytes are a real PDF.
	rc, err := store.Open(context.Background(), want)
	if err != nil {
		t.Fatalf("open stored pdf: %v", err)
	}
	defer rc.Close()
	head := make([]byte, 4)
	io.ReadFull(rc, head)
	if string(head) != "%PDF" {
		t.Errorf("stored file is not a PDF: %q", head)
	}

	// The record persisted, not just the returned copy.
	got, _ := appts.Get(context.Background(), id)
	if got.Status != booking.StatusSeen {
		t.Errorf("status not persisted: %s", got.Status)
	}
}

func TestIssue_Validation(t *testing.T) {
	svc, _, _, id := newTestSetup(t)

	p := validPrescription()
	p.Diagnosis = ""
	if _, _, err := svc.Issue(context.Background(), id, p); !errors.Is(err, booking.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}

	p = validPrescription()
	p.Medicines = nil
	if _, _, err := svc.Issue(context.Background(), id, p); !errors.Is(err, booking.ErrValidation) {
		t.Errorf("expected ErrValidation for empty medicines, got %v", err)
	}
}

func TestIssue_TerminalAppointment(t *testing.T) {
	svc, appts, _, id := newTestSetup(t)

	if _, _, err := svc.Issue(context.Background(), id, validPrescription()); err != nil {
		t.Fatal(err)
	}
	// Already seen: a second prescription is rejected.
	if _, _, err := svc.Issue(context.Background(), id, validPrescription()); !errors.Is(err, booking.ErrTransition) {
		t.Errorf("expected ErrTransition, got %v", err)
	}

	cancelled, err := appts.Book(context.Background(), &booking.AppointmentRecord{
		Name: "Vikram Iyer", Mobile: "9876500000", Date: "2026-09-16",
		Time: "10:30", Doctor: "Dr. Mehta",
	})
	if err != nil {
		t.Fatal(err)
	}
	appts.Cancel(context.Background(), cancelled.Record.ID)
	if _, _, err := svc.Issue(context.Background(), cancelled.Record.ID, validPrescription()); !errors.Is(err, booking.ErrTransition) {
		t.Errorf("expected ErrTransition for cancelled appointment, got %v", err)
	}
}

func TestIssue_MissingAppointment(t *testing.T) {
	svc, _, _, _ := newTestSetup(t)
	if _, _, err := svc.Issue(context.Background(), 999, validPrescription()); !errors.Is(err, booking.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
