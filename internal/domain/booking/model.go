// Package booking holds the appointment book: one record per booking
// attempt, carried through its whole lifecycle. Records reference report and
// prescription files stored in the attachment store; they never own bytes.
package booking

import (
	"errors"
	"fmt"
	"time"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusBooked      Status = "Booked"
	StatusSeen        Status = "Seen"
	StatusCancelled   Status = "Cancelled"
	StatusRescheduled Status = "Rescheduled"
)

var (
	ErrNotFound   = errors.New("appointment not found")
	ErrConflict   = errors.New("doctor already booked at this slot")
	ErrDuplicate  = errors.New("patient already booked at this slot")
	ErrTransition = errors.New("invalid status transition")
	ErrValidation = errors.New("validation failed")
)

// ValidStatus reports whether s is one of the four lifecycle states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusBooked, StatusSeen, StatusCancelled, StatusRescheduled:
		return true
	}
	return false
}

// CanTransition reports whether an appointment may move from one status to
// another. Seen and Cancelled are terminal.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusBooked, StatusRescheduled:
		return to == StatusSeen || to == StatusCancelled || to == StatusRescheduled
	default:
		return false
	}
}

// AppointmentRecord is one row of the appointment book.
type AppointmentRecord struct {
	ID                int       `json:"id"`
	PatientID         string    `json:"patient_id"`
	Name              string    `json:"name"`
	Age               string    `json:"age"`
	Gender            string    `json:"gender"`
	Height            string    `json:"height"`
	Weight            string    `json:"weight"`
	Mobile            string    `json:"mobile"`
	Date              string    `json:"date"` // 2006-01-02
	Time              string    `json:"time"` // 15:04
	Doctor            string    `json:"doctor"`
	Notes             string    `json:"notes"`
	Status            Status    `json:"status"`
	BookedOn          time.Time `json:"booked_on"`
	ReportFiles       []string  `json:"report_files,omitempty"`
	PrescriptionFiles []string  `json:"prescription_files,omitempty"`
	FollowUpDate      string    `json:"follow_up_date,omitempty"`
	Diagnosis         string    `json:"diagnosis,omitempty"`
}

// Validate checks the fields a booking cannot do without.
func (a *AppointmentRecord) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if a.Doctor == "" {
		return fmt.Errorf("%w: doctor is required", ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", a.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	if _, err := time.Parse("15:04", a.Time); err != nil {
		return fmt.Errorf("%w: time must be HH:MM", ErrValidation)
	}
	if err := ValidateMobile(a.Mobile); err != nil {
		return err
	}
	return nil
}
