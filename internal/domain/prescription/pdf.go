package prescription

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// ClinicInfo is the letterhead printed on every prescription.
type ClinicInfo struct {
	Name    string
	Address string
}

// RenderPDF lays out a single-page A4 prescription. The layout is fixed;
// long medicine lists flow onto following pages via the cell writer.
func RenderPDF(clinic ClinicInfo, p *Prescription) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	// Letterhead
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 8, clinic.Name, "", 1, "C", false, 0, "")
	if clinic.Address != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 5, clinic.Address, "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)
	pdf.SetDrawColor(0, 0, 0)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(4)

	// Patient block
	pdf.SetFont("Helvetica", "", 10)
	left := fmt.Sprintf("Patient: %s (%s)", p.PatientName, p.PatientID)
	right := fmt.Sprintf("Date: %s", p.Date)
	pdf.CellFormat(120, 6, left, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, right, "", 1, "R", false, 0, "")

	demo := fmt.Sprintf("Age: %s    Gender: %s", p.Age, p.Gender)
	pdf.CellFormat(120, 6, demo, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Appt no. %d", p.AppointmentID), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Consulting doctor: %s", p.Doctor), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	// Diagnosis
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Diagnosis", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, p.Diagnosis, "", "L", false)
	pdf.Ln(2)

	if p.Investigations != "" {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, "Investigations", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, p.Investigations, "", "L", false)
		pdf.Ln(2)
	}

	// Medicines table
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Rx", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(10, 6, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(80, 6, "Medicine", "1", 0, "L", true, 0, "")
	pdf.CellFormat(50, 6, "Dosage", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 6, "Duration", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for i, m := range p.Medicines {
		pdf.CellFormat(10, 6, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(80, 6, m.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, m.Dosage, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, m.Duration, "1", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	if p.Advice != "" {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, "Advice", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, p.Advice, "", "L", false)
		pdf.Ln(2)
	}

	if p.FollowUpDate != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, fmt.Sprintf("Follow-up on: %s", p.FollowUpDate), "", 1, "L", false, 0, "")
	}

	// Signature
	pdf.Ln(15)
	pdf.CellFormat(120, 6, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, p.Doctor, "T", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render prescription pdf: %w", err)
	}
	return buf.Bytes(), nil
}
