// Package notify builds WhatsApp confirmation messages for booked
// appointments. Delivery is a deep link the front desk opens in the browser;
// nothing is sent server-side.
package notify

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Template is a reusable message template with {{placeholder}} slots.
type Template struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Body string `json:"body"`
}

// TemplateEngine manages message templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in templates
// pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*Template)}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:   "booking-confirmation",
			Name: "Booking Confirmation",
			Body: "Dear {{patient_name}}, your appointment with {{doctor}} at {{clinic}} is confirmed for {{date}} at {{time}}. Appointment no. {{appointment_id}}.",
		},
		{
			ID:   "reschedule-notice",
			Name: "Reschedule Notice",
			Body: "Dear {{patient_name}}, your appointment with {{doctor}} has been moved to {{date}} at {{time}}.",
		},
		{
			ID:   "cancellation-notice",
			Name: "Cancellation Notice",
			Body: "Dear {{patient_name}}, your appointment with {{doctor}} on {{date}} at {{time}} has been cancelled.",
		},
	}
	for i := range builtIn {
		e.templates[builtIn[i].ID] = &builtIn[i]
	}
}

// RegisterTemplate adds or replaces a template.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render fills a template's {{placeholder}} slots from data.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (string, error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("template %q not found", templateID)
	}

	body := t.Body
	for k, v := range data {
		body = strings.ReplaceAll(body, "{{"+k+"}}", v)
	}
	return body, nil
}

// WhatsAppLink builds a wa.me deep link that opens a chat with the given
// MSISDN and the message pre-filled. The msisdn must already be normalized
// to digits with country code.
func WhatsAppLink(msisdn, message string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", msisdn, url.QueryEscape(message))
}
