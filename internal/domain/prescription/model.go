// Package prescription turns a completed visit into a prescription PDF and
// closes out the appointment.
package prescription

import "fmt"

// MedicineLine is one row of the prescription table.
type MedicineLine struct {
	Name     string `json:"name"`
	Dosage   string `json:"dosage"`
	Duration string `json:"duration"`
}

// Prescription is everything the doctor writes at the end of a visit.
type Prescription struct {
	AppointmentID  int            `json:"appointment_id"`
	PatientID      string         `json:"patient_id"`
	PatientName    string         `json:"patient_name"`
	Age            string         `json:"age"`
	Gender         string         `json:"gender"`
	Doctor         string         `json:"doctor"`
	Date           string         `json:"date"`
	Diagnosis      string         `json:"diagnosis"`
	Investigations string         `json:"investigations,omitempty"`
	Medicines      []MedicineLine `json:"medicines"`
	Advice         string         `json:"advice,omitempty"`
	FollowUpDate   string         `json:"follow_up_date,omitempty"`
}

// Validate checks the fields the PDF cannot be rendered without.
func (p *Prescription) Validate() error {
	if p.Diagnosis == "" {
		return fmt.Errorf("diagnosis is required")
	}
	if len(p.Medicines) == 0 {
		return fmt.Errorf("at least one medicine line is required")
	}
	for i, m := range p.Medicines {
		if m.Name == "" {
			return fmt.Errorf("medicine %d: name is required", i+1)
		}
	}
	return nil
}
