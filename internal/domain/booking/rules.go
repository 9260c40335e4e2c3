package booking

import (
	"fmt"
	"strings"
)

// Policy controls how the booking rules apply. A rule that does not block
// still surfaces as a warning on the booking result.
type Policy struct {
	BlockConflicts  bool
	BlockDuplicates bool
}

// DefaultPolicy blocks double-booked doctors and warns on duplicate patient
// bookings.
func DefaultPolicy() Policy {
	return Policy{BlockConflicts: true, BlockDuplicates: false}
}

func stripMobile(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, "-", "")
}

// ValidateMobile accepts a mobile number of exactly 10 digits, or 12 with
// the country code. Spaces and hyphens are ignored.
func ValidateMobile(s string) error {
	s = stripMobile(s)
	if len(s) != 10 && len(s) != 12 {
		return fmt.Errorf("%w: mobile must be 10 or 12 digits", ErrValidation)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: mobile must contain only digits", ErrValidation)
		}
	}
	return nil
}

// NormalizeMobile strips separators and prefixes the default country code
// when the number is bare 10 digits.
func NormalizeMobile(s string) string {
	s = stripMobile(s)
	if len(s) == 10 {
		return "91" + s
	}
	return s
}

// rightDigits returns the trailing n characters of a stripped mobile, the
// whole string when shorter.
func rightDigits(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// FindConflict returns the record that already holds the doctor's slot, or
// nil. Only Booked records hold a slot; Seen, Cancelled and Rescheduled
// records leave it free. Equality is exact, there is no buffer window.
func FindConflict(records []*AppointmentRecord, doctor, date, timeOfDay string) *AppointmentRecord {
	for _, r := range records {
		if r.Status == StatusBooked && r.Doctor == doctor && r.Date == date && r.Time == timeOfDay {
			return r
		}
	}
	return nil
}

// FindDuplicate returns an existing Booked record for the same patient
// mobile at the identical slot, regardless of doctor.
func FindDuplicate(records []*AppointmentRecord, mobile, date, timeOfDay string) *AppointmentRecord {
	want := NormalizeMobile(mobile)
	for _, r := range records {
		if r.Status == StatusBooked && NormalizeMobile(r.Mobile) == want && r.Date == date && r.Time == timeOfDay {
			return r
		}
	}
	return nil
}

// Check runs both rules for a prospective booking. It returns a blocking
// error per the policy, plus non-blocking warnings.
func (p Policy) Check(records []*AppointmentRecord, rec *AppointmentRecord) ([]string, error) {
	var warnings []string

	if c := FindConflict(records, rec.Doctor, rec.Date, rec.Time); c != nil {
		if p.BlockConflicts {
			return nil, fmt.Errorf("%w: %s at %s %s (appointment %d)",
				ErrConflict, c.Doctor, c.Date, c.Time, c.ID)
		}
		warnings = append(warnings, fmt.Sprintf("doctor %s already has appointment %d at this slot", c.Doctor, c.ID))
	}

	if d := FindDuplicate(records, rec.Mobile, rec.Date, rec.Time); d != nil {
		if p.BlockDuplicates {
			return nil, fmt.Errorf("%w: mobile %s already booked at %s %s (appointment %d)",
				ErrDuplicate, rec.Mobile, d.Date, d.Time, d.ID)
		}
		warnings = append(warnings, fmt.Sprintf("patient already has appointment %d at this slot", d.ID))
	}

	return warnings, nil
}
