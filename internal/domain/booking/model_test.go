package booking

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusBooked, StatusSeen, true},
		{StatusBooked, StatusCancelled, true},
		{StatusBooked, StatusRescheduled, true},
		{StatusRescheduled, StatusSeen, true},
		{StatusRescheduled, StatusCancelled, true},
		{StatusRescheduled, StatusRescheduled, true},
		{StatusSeen, StatusCancelled, false},
		{StatusSeen, StatusRescheduled, false},
		{StatusCancelled, StatusBooked, false},
		{StatusCancelled, StatusRescheduled, false},
		{StatusBooked, StatusBooked, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.ok {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}

func validRecord() *AppointmentRecord {
	return &AppointmentRecord{
		Name:   "Asha Rao",
		Mobile: "9876543210",
		Date:   "2026-09-15",
		Time:   "10:30",
		Doctor: "Dr. Mehta",
	}
}

func TestValidate(t *testing.T) {
	if err := validRecord().Validate(); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*AppointmentRecord)
	}{
		{"missing name", func(a *AppointmentRecord) { a.Name = "" }},
		{"missing doctor", func(a *AppointmentRecord) { a.Doctor = "" }},
		{"bad date", func(a *AppointmentRecord) { a.Date = "15/09/2026" }},
		{"bad time", func(a *AppointmentRecord) { a.Time = "10.30 am" }},
		{"bad mobile", func(a *AppointmentRecord) { a.Mobile = "12345" }},
	}
	for _, tc := range cases {
		rec := validRecord()
		tc.mutate(rec)
		if err := rec.Validate(); err == nil {
			t.Errorf("%s: expected rejection", tc.name)
		}
	}
}
