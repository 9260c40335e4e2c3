package prescription

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/domain/booking"
	"github.com/clinicdesk/clinicdesk/internal/platform/attachments"
)

// Service renders prescriptions and completes the visit they belong to.
type Service struct {
	appointments *booking.Service
	files        attachments.Store
	clinic       ClinicInfo

	now func() time.Time
}

func NewService(appointments *booking.Service, files attachments.Store, clinic ClinicInfo) *Service {
	return &Service{
		appointments: appointments,
		files:        files,
		clinic:       clinic,
		now:          time.Now,
	}
}

// Issue renders the prescription PDF, stores it, and marks the appointment
// seen with the file reference attached. The PDF is stored before the table
// row changes so a failure can orphan a file but never dangle a reference.
func (s *Service) Issue(ctx context.Context, appointmentID int, p *Prescription) (*booking.AppointmentRecord, string, error) {
	if err := p.Validate(); err != nil {
		return nil, "", fmt.Errorf("%w: %s", booking.ErrValidation, err)
	}

	rec, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, "", err
	}
	if !booking.CanTransition(rec.Status, booking.StatusSeen) {
		return nil, "", fmt.Errorf("%w: %s appointment cannot receive a prescription",
			booking.ErrTransition, rec.Status)
	}

	p.AppointmentID = rec.ID
	p.PatientID = rec.PatientID
	p.PatientName = rec.Name
	p.Age = rec.Age
	p.Gender = rec.Gender
	p.Doctor = rec.Doctor
	p.Date = s.now().Format("2006-01-02")

	pdfBytes, err := RenderPDF(s.clinic, p)
	if err != nil {
		return nil, "", err
	}

	fileName := fmt.Sprintf("%s_%d_%s.pdf", rec.PatientID, rec.ID, s.now().Format("20060102T150405"))
	if err := s.files.Put(ctx, fileName, bytes.NewReader(pdfBytes)); err != nil {
		return nil, "", fmt.Errorf("store prescription: %w", err)
	}

	updated, err := s.appointments.MarkSeen(ctx, rec.ID, p.Diagnosis, p.FollowUpDate, fileName)
	if err != nil {
		return nil, "", err
	}
	return updated, fileName, nil
}
