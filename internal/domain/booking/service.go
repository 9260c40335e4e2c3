package booking

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/platform/attachments"
	"github.com/clinicdesk/clinicdesk/internal/platform/notify"
)

// Service implements the front-desk appointment operations on top of a
// repository, the attachment store and the message templates.
type Service struct {
	repo      AppointmentRepository
	files     attachments.Store
	templates *notify.TemplateEngine
	policy    Policy
	clinic    string

	// mu serializes id assignment within this process; runTx wraps the
	// read-check-insert sequence in a storage transaction when the backend
	// supports one.
	mu    sync.Mutex
	runTx TxRunner

	now func() time.Time
}

// TxRunner executes fn inside a storage transaction. The context passed to
// fn carries the transaction for the repository to pick up.
type TxRunner func(ctx context.Context, fn func(context.Context) error) error

func NewService(repo AppointmentRepository, files attachments.Store, templates *notify.TemplateEngine, policy Policy, clinicName string) *Service {
	return &Service{
		repo:      repo,
		files:     files,
		templates: templates,
		policy:    policy,
		clinic:    clinicName,
		runTx: func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
		now: time.Now,
	}
}

// UseTxRunner installs a transaction wrapper around the booking mutations.
// The server wires this to the database pool; the spreadsheet backend does
// its own whole-file locking and leaves the default passthrough in place.
func (s *Service) UseTxRunner(run TxRunner) {
	s.runTx = run
}

// BookResult is what the front desk gets back after a booking attempt.
type BookResult struct {
	Record       *AppointmentRecord `json:"record"`
	Warnings     []string           `json:"warnings,omitempty"`
	WhatsAppLink string             `json:"whatsapp_link"`
}

// Book validates a new appointment, runs the conflict and duplicate rules,
// assigns ids and persists the record.
func (s *Service) Book(ctx context.Context, rec *AppointmentRecord) (*BookResult, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var warnings []string
	err := s.runTx(ctx, func(ctx context.Context) error {
		if err := s.lockBook(ctx); err != nil {
			return fmt.Errorf("lock appointment book: %w", err)
		}

		existing, err := s.repo.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("load appointment book: %w", err)
		}

		warnings, err = s.policy.Check(existing, rec)
		if err != nil {
			return err
		}

		rec.ID = NextAppointmentID(existing)
		if rec.PatientID == "" {
			rec.PatientID = s.resolvePatientID(existing, rec.Mobile)
		}
		rec.Status = StatusBooked
		rec.BookedOn = s.now()

		if err := s.repo.Insert(ctx, rec); err != nil {
			return fmt.Errorf("insert appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &BookResult{
		Record:       rec,
		Warnings:     warnings,
		WhatsAppLink: s.confirmationLink(rec),
	}, nil
}

// lockBook takes the backend's book-wide lock when it offers one. The lock
// is released with the surrounding transaction.
func (s *Service) lockBook(ctx context.Context) error {
	if l, ok := s.repo.(BookLocker); ok {
		return l.LockBook(ctx)
	}
	return nil
}

// resolvePatientID reuses the patient id of an earlier booking with the
// same mobile, otherwise mints the next one.
func (s *Service) resolvePatientID(existing []*AppointmentRecord, mobile string) string {
	want := NormalizeMobile(mobile)
	for _, r := range existing {
		if r.PatientID != "" && NormalizeMobile(r.Mobile) == want {
			return r.PatientID
		}
	}
	return NextPatientID(existing)
}

func (s *Service) confirmationLink(rec *AppointmentRecord) string {
	msg, err := s.templates.Render("booking-confirmation", map[string]string{
		"patient_name":   rec.Name,
		"doctor":         rec.Doctor,
		"clinic":         s.clinic,
		"date":           rec.Date,
		"time":           rec.Time,
		"appointment_id": fmt.Sprintf("%d", rec.ID),
	})
	if err != nil {
		return ""
	}
	return notify.WhatsAppLink(NormalizeMobile(rec.Mobile), msg)
}

func (s *Service) Get(ctx context.Context, id int) (*AppointmentRecord, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Search(ctx context.Context, params SearchParams, limit, offset int) ([]*AppointmentRecord, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}

// Today lists today's appointments, cancelled ones excluded. Seen visits
// stay on the list so the desk can tell who already came through.
func (s *Service) Today(ctx context.Context) ([]*AppointmentRecord, error) {
	today := s.now().Format("2006-01-02")
	items, _, err := s.repo.Search(ctx, SearchParams{Date: today}, 0, 0)
	if err != nil {
		return nil, err
	}
	kept := items[:0]
	for _, r := range items {
		if r.Status != StatusCancelled {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

// CalendarEvent feeds the booking calendar widget.
type CalendarEvent struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Start string `json:"start"`
}

// Calendar returns one event per non-cancelled appointment.
func (s *Service) Calendar(ctx context.Context) ([]CalendarEvent, error) {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	events := make([]CalendarEvent, 0, len(records))
	for _, r := range records {
		if r.Status == StatusCancelled {
			continue
		}
		events = append(events, CalendarEvent{
			ID:    r.ID,
			Title: fmt.Sprintf("%s (%s)", r.Name, r.Doctor),
			Start: fmt.Sprintf("%sT%s", r.Date, r.Time),
		})
	}
	return events, nil
}

// Reschedule moves an appointment to a new slot in place. The id and
// patient id never change; the new slot passes the same rules as a fresh
// booking, and any non-blocking warnings travel back to the caller.
func (s *Service) Reschedule(ctx context.Context, id int, date, timeOfDay string) (*AppointmentRecord, []string, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !CanTransition(rec.Status, StatusRescheduled) {
		return nil, nil, fmt.Errorf("%w: %s appointment cannot be rescheduled", ErrTransition, rec.Status)
	}

	moved := *rec
	moved.Date = date
	moved.Time = timeOfDay
	if err := moved.Validate(); err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var warnings []string
	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.lockBook(ctx); err != nil {
			return fmt.Errorf("lock appointment book: %w", err)
		}

		existing, err := s.repo.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("load appointment book: %w", err)
		}
		others := make([]*AppointmentRecord, 0, len(existing))
		for _, r := range existing {
			if r.ID != id {
				others = append(others, r)
			}
		}
		warnings, err = s.policy.Check(others, &moved)
		if err != nil {
			return err
		}

		rec.Date = date
		rec.Time = timeOfDay
		rec.Status = StatusRescheduled
		if err := s.repo.Update(ctx, rec); err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return rec, warnings, nil
}

// Cancel releases the slot. The record stays in the book.
func (s *Service) Cancel(ctx context.Context, id int) (*AppointmentRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(rec.Status, StatusCancelled) {
		return nil, fmt.Errorf("%w: %s appointment cannot be cancelled", ErrTransition, rec.Status)
	}
	rec.Status = StatusCancelled
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	return rec, nil
}

// MarkSeen completes a visit: diagnosis, optional follow-up date, and the
// prescription file reference written by the prescription service.
func (s *Service) MarkSeen(ctx context.Context, id int, diagnosis, followUpDate, prescriptionFile string) (*AppointmentRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(rec.Status, StatusSeen) {
		return nil, fmt.Errorf("%w: %s appointment cannot be marked seen", ErrTransition, rec.Status)
	}
	rec.Status = StatusSeen
	rec.Diagnosis = diagnosis
	rec.FollowUpDate = followUpDate
	if prescriptionFile != "" {
		rec.PrescriptionFiles = append(rec.PrescriptionFiles, prescriptionFile)
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	return rec, nil
}

// Delete removes the record for good, bypassing the status lifecycle.
func (s *Service) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// AttachReport stores the uploaded file first, then appends its reference
// to the record. If the table update fails the stored file is orphaned, not
// the other way round; a dangling reference never appears.
func (s *Service) AttachReport(ctx context.Context, id int, fileName string, content io.Reader) (*AppointmentRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := attachments.ValidateFileName(fileName); err != nil {
		return nil, err
	}
	stored := fmt.Sprintf("%s_%d_%s", rec.PatientID, rec.ID, fileName)
	if err := s.files.Put(ctx, stored, content); err != nil {
		return nil, fmt.Errorf("store report: %w", err)
	}

	rec.ReportFiles = append(rec.ReportFiles, stored)
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	return rec, nil
}
