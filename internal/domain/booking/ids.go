package booking

import (
	"fmt"
	"regexp"
	"strconv"
)

var patientIDPattern = regexp.MustCompile(`^P(\d{4,})$`)

// NextAppointmentID returns one past the largest id in records, or 1 when
// no record carries a usable id.
func NextAppointmentID(records []*AppointmentRecord) int {
	max := 0
	for _, r := range records {
		if r.ID > max {
			max = r.ID
		}
	}
	return max + 1
}

// NextPatientID scans every patient id token in records and returns the
// next one, zero-padded to four digits. The scan covers the whole table so
// the result does not depend on row order; malformed tokens are skipped.
func NextPatientID(records []*AppointmentRecord) string {
	max := 0
	for _, r := range records {
		m := patientIDPattern.FindStringSubmatch(r.PatientID)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("P%04d", max+1)
}
