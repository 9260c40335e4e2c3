package booking

import (
	"errors"
	"testing"
)

func TestValidateMobile(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"9876543210", true},
		{"919876543210", true},
		{"98765 43210", true},
		{"98765-43210", true},
		{"987654321", false},
		{"98765432101", false},
		{"98765abcde", false},
		{"", false},
	}
	for _, tc := range cases {
		err := ValidateMobile(tc.in)
		if tc.ok && err != nil {
			t.Errorf("%q: unexpected error %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%q: expected rejection", tc.in)
		}
	}
}

func TestNormalizeMobile(t *testing.T) {
	cases := map[string]string{
		"9876543210":   "919876543210",
		"919876543210": "919876543210",
		"98765 43210":  "919876543210",
		"98765-43210":  "919876543210",
	}
	for in, want := range cases {
		if got := NormalizeMobile(in); got != want {
			t.Errorf("NormalizeMobile(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRightDigits(t *testing.T) {
	if got := rightDigits("919876543210", 10); got != "9876543210" {
		t.Errorf("expected bare number, got %q", got)
	}
	if got := rightDigits("98765", 10); got != "98765" {
		t.Errorf("short input should pass through, got %q", got)
	}
}

func slot(id int, doctor, mobile, date, timeOfDay string, status Status) *AppointmentRecord {
	return &AppointmentRecord{
		ID: id, Doctor: doctor, Mobile: mobile,
		Date: date, Time: timeOfDay, Status: status,
	}
}

func TestFindConflict(t *testing.T) {
	book := []*AppointmentRecord{
		slot(1, "Dr. Mehta", "9876543210", "2026-09-15", "10:30", StatusBooked),
		slot(2, "Dr. Mehta", "9876543211", "2026-09-15", "11:00", StatusCancelled),
		slot(3, "Dr. Mehta", "9876543212", "2026-09-15", "11:30", StatusRescheduled),
		slot(4, "Dr. Mehta", "9876543213", "2026-09-15", "12:00", StatusSeen),
	}

	if c := FindConflict(book, "Dr. Mehta", "2026-09-15", "10:30"); c == nil || c.ID != 1 {
		t.Errorf("expected conflict with appointment 1, got %v", c)
	}
	// Only Booked records hold a slot.
	if c := FindConflict(book, "Dr. Mehta", "2026-09-15", "11:00"); c != nil {
		t.Errorf("cancelled slot should not conflict, got %v", c)
	}
	if c := FindConflict(book, "Dr. Mehta", "2026-09-15", "11:30"); c != nil {
		t.Errorf("rescheduled slot should not conflict, got %v", c)
	}
	if c := FindConflict(book, "Dr. Mehta", "2026-09-15", "12:00"); c != nil {
		t.Errorf("seen slot should not conflict, got %v", c)
	}
	// Different doctor, same slot.
	if c := FindConflict(book, "Dr. Shah", "2026-09-15", "10:30"); c != nil {
		t.Errorf("different doctor should not conflict, got %v", c)
	}
	// Same doctor, different time.
	if c := FindConflict(book, "Dr. Mehta", "2026-09-15", "10:45"); c != nil {
		t.Errorf("no buffer window expected, got %v", c)
	}
}

func TestFindDuplicate(t *testing.T) {
	book := []*AppointmentRecord{
		slot(1, "Dr. Mehta", "9876543210", "2026-09-15", "10:30", StatusBooked),
	}

	// Same patient, same slot, another doctor: still a duplicate.
	if d := FindDuplicate(book, "919876543210", "2026-09-15", "10:30"); d == nil {
		t.Error("expected duplicate across country-code forms")
	}
	if d := FindDuplicate(book, "9876543210", "2026-09-15", "11:00"); d != nil {
		t.Errorf("different time should not be a duplicate, got %v", d)
	}
}

func TestFindDuplicate_IgnoresNonBooked(t *testing.T) {
	book := []*AppointmentRecord{
		slot(1, "Dr. Mehta", "9876543210", "2026-09-15", "10:30", StatusRescheduled),
		slot(2, "Dr. Shah", "9876543210", "2026-09-15", "11:00", StatusCancelled),
	}

	if d := FindDuplicate(book, "9876543210", "2026-09-15", "10:30"); d != nil {
		t.Errorf("rescheduled record should not count as a duplicate, got %v", d)
	}
	if d := FindDuplicate(book, "9876543210", "2026-09-15", "11:00"); d != nil {
		t.Errorf("cancelled record should not count as a duplicate, got %v", d)
	}
}

func TestPolicyCheck_ConflictBlocks(t *testing.T) {
	book := []*AppointmentRecord{
		slot(1, "Dr. Mehta", "9876543210", "2026-09-15", "10:30", StatusBooked),
	}
	rec := slot(0, "Dr. Mehta", "9876543299", "2026-09-15", "10:30", "")

	_, err := DefaultPolicy().Check(book, rec)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestPolicyCheck_DuplicateWarnsByDefault(t *testing.T) {
	book := []*AppointmentRecord{
		slot(1, "Dr. Mehta", "9876543210", "2026-09-15", "10:30", StatusBooked),
	}
	rec := slot(0, "Dr. Shah", "9876543210", "2026-09-15", "10:30", "")

	warnings, err := DefaultPolicy().Check(book, rec)
	if err != nil {
		t.Fatalf("default policy should warn, not block: %v", err)
	}
	if len(warnings) != 1 {
		t.Errorf("expected one warning, got %v", warnings)
	}
}

func TestPolicyCheck_DuplicateBlocksWhenConfigured(t *testing.T) {
	book := []*AppointmentRecord{
		slot(1, "Dr. Mehta", "9876543210", "2026-09-15", "10:30", StatusBooked),
	}
	rec := slot(0, "Dr. Shah", "9876543210", "2026-09-15", "10:30", "")

	p := Policy{BlockConflicts: true, BlockDuplicates: true}
	_, err := p.Check(book, rec)
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestPolicyCheck_CleanSlot(t *testing.T) {
	book := []*AppointmentRecord{
		slot(1, "Dr. Mehta", "9876543210", "2026-09-15", "10:30", StatusBooked),
	}
	rec := slot(0, "Dr. Mehta", "9876543299", "2026-09-16", "10:30", "")

	warnings, err := DefaultPolicy().Check(book, rec)
	if err != nil || len(warnings) != 0 {
		t.Errorf("clean slot: expected no error/warnings, got %v %v", err, warnings)
	}
}
