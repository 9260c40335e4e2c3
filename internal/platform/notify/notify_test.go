package notify

import (
	"strings"
	"testing"
)

func TestRender_BookingConfirmation(t *testing.T) {
	e := NewTemplateEngine()
	body, err := e.Render("booking-confirmation", map[string]string{
		"patient_name":   "Asha Rao",
		"doctor":         "Dr. Mehta",
		"clinic":         "Sunrise Clinic",
		"date":           "2026-09-15",
		"time":           "10:30",
		"appointment_id": "42",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Asha Rao", "Dr. Mehta", "Sunrise Clinic", "2026-09-15", "10:30", "42"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q: %s", want, body)
		}
	}
	if strings.Contains(body, "{{") {
		t.Errorf("unreplaced placeholder in body: %s", body)
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	e := NewTemplateEngine()
	if _, err := e.Render("no-such-template", nil); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestRegisterTemplate_Overrides(t *testing.T) {
	e := NewTemplateEngine()
	e.RegisterTemplate(Template{ID: "booking-confirmation", Name: "Custom", Body: "Hi {{patient_name}}"})
	body, err := e.Render("booking-confirmation", map[string]string{"patient_name": "Asha"})
	if err != nil {
		t.Fatal(err)
	}
	if body != "Hi Asha" {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestWhatsAppLink(t *testing.T) {
	link := WhatsAppLink("919876543210", "See you at 10:30 tomorrow")
	if !strings.HasPrefix(link, "https://wa.me/919876543210?text=") {
		t.Errorf("unexpected link prefix: %s", link)
	}
	if strings.Contains(link, " ") {
		t.Errorf("message must be URL-encoded: %s", link)
	}
}
