package booking

import "testing"

func TestNextAppointmentID(t *testing.T) {
	if got := NextAppointmentID(nil); got != 1 {
		t.Errorf("empty book: expected 1, got %d", got)
	}

	records := []*AppointmentRecord{{ID: 3}, {ID: 7}, {ID: 5}}
	if got := NextAppointmentID(records); got != 8 {
		t.Errorf("expected 8, got %d", got)
	}

	// Zero ids (rows that never got one) are ignored.
	records = append(records, &AppointmentRecord{ID: 0})
	if got := NextAppointmentID(records); got != 8 {
		t.Errorf("expected 8 with zero-id row, got %d", got)
	}
}

func TestNextPatientID(t *testing.T) {
	if got := NextPatientID(nil); got != "P0001" {
		t.Errorf("empty book: expected P0001, got %s", got)
	}

	records := []*AppointmentRecord{
		{PatientID: "P0002"},
		{PatientID: "P0009"},
		{PatientID: "P0004"},
	}
	if got := NextPatientID(records); got != "P0010" {
		t.Errorf("expected P0010, got %s", got)
	}
}

func TestNextPatientID_GlobalMaxNotLastRow(t *testing.T) {
	// The highest token wins regardless of row order.
	records := []*AppointmentRecord{
		{PatientID: "P0042"},
		{PatientID: "P0003"},
	}
	if got := NextPatientID(records); got != "P0043" {
		t.Errorf("expected P0043, got %s", got)
	}
}

func TestNextPatientID_SkipsMalformed(t *testing.T) {
	records := []*AppointmentRecord{
		{PatientID: "P0005"},
		{PatientID: "walk-in"},
		{PatientID: ""},
		{PatientID: "P12"},
	}
	if got := NextPatientID(records); got != "P0006" {
		t.Errorf("expected P0006, got %s", got)
	}
}

func TestNextPatientID_GrowsPastFourDigits(t *testing.T) {
	records := []*AppointmentRecord{{PatientID: "P10041"}}
	if got := NextPatientID(records); got != "P10042" {
		t.Errorf("expected P10042, got %s", got)
	}
}
