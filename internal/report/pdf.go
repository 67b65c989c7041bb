package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/signintech/gopdf"

	"rural-health-assistant/internal/history"
	"rural-health-assistant/internal/patient"
)

// Font candidates for Spanish text with accents. Covers the usual Alpine
// and Debian install locations.
var fontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

const (
	pageTextWidth = 500
	pageBottomY   = 780
)

type pdfWriter struct {
	pdf gopdf.GoPdf
}

func newPDFWriter() (*pdfWriter, error) {
	w := &pdfWriter{}
	w.pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeLetter})
	w.pdf.AddPage()

	var fontErr error
	fontLoaded := false
	for _, path := range fontPaths {
		if err := w.pdf.AddTTFFont("DejaVu", path); err == nil {
			fontLoaded = true
			break
		} else {
			fontErr = err
		}
	}
	if !fontLoaded {
		return nil, fmt.Errorf("failed to load a TTF font for the PDF report (install ttf-dejavu): %w", fontErr)
	}
	return w, nil
}

func (w *pdfWriter) setFont(size float64) error {
	return w.pdf.SetFont("DejaVu", "", size)
}

// text writes wrapped lines, breaking to a new page near the bottom.
func (w *pdfWriter) text(content string, lineHeight float64) {
	for _, paragraph := range strings.Split(content, "\n") {
		if paragraph == "" {
			w.pdf.Br(lineHeight)
			continue
		}
		lines, err := w.pdf.SplitText(paragraph, pageTextWidth)
		if err != nil {
			lines = []string{paragraph}
		}
		for _, line := range lines {
			if w.pdf.GetY() > pageBottomY {
				w.pdf.AddPage()
			}
			w.pdf.Cell(nil, line)
			w.pdf.Br(lineHeight)
		}
	}
}

func (w *pdfWriter) heading(title string) error {
	if err := w.setFont(14); err != nil {
		return err
	}
	if w.pdf.GetY() > pageBottomY-30 {
		w.pdf.AddPage()
	}
	w.pdf.Cell(nil, title)
	w.pdf.Br(18)
	return w.setFont(11)
}

func renderPDF(path string, profile *patient.Profile, sorted []history.Entry, cfg Config, aiSummary string) error {
	w, err := newPDFWriter()
	if err != nil {
		return err
	}

	// Title
	if err := w.setFont(18); err != nil {
		return err
	}
	w.pdf.Cell(nil, "REPORTE MÉDICO - ASISTENTE DE SALUD RURAL")
	w.pdf.Br(22)
	if aiSummary != "" {
		if err := w.setFont(10); err != nil {
			return err
		}
		w.pdf.Cell(nil, "Incluye Análisis Médico con Inteligencia Artificial")
		w.pdf.Br(18)
	}
	w.pdf.Br(8)

	// Patient information
	if err := w.heading("INFORMACIÓN DEL PACIENTE"); err != nil {
		return err
	}
	orDefault := func(v string) string {
		if v == "" {
			return "No especificado"
		}
		return v
	}
	now := time.Now()
	for _, row := range [][2]string{
		{"Nombre", orDefault(profile.Name)},
		{"Edad", orDefault(profile.Age)},
		{"Ubicación", orDefault(profile.Location)},
		{"Teléfono", orDefault(profile.Phone)},
		{"Contacto de emergencia", orDefault(profile.EmergencyContact)},
		{"Período del reporte", periodLabel(cfg.Period)},
		{"Fecha de generación", now.Format("02/01/2006 15:04")},
	} {
		w.text(fmt.Sprintf("%s: %s", row[0], row[1]), 14)
	}
	w.pdf.Br(10)

	// AI summary block
	if aiSummary != "" {
		if err := w.heading("ANÁLISIS MÉDICO CON INTELIGENCIA ARTIFICIAL"); err != nil {
			return err
		}
		if err := w.setFont(10); err != nil {
			return err
		}
		w.text(aiSummary, 12)
		w.pdf.Br(10)
	}

	// Chronic conditions, allergies, medications
	if len(profile.ChronicConditions) > 0 || len(profile.Allergies) > 0 || len(profile.CurrentMedications) > 0 {
		if err := w.heading("CONDICIONES MÉDICAS"); err != nil {
			return err
		}
		if len(profile.ChronicConditions) > 0 {
			w.text("Condiciones crónicas: "+strings.Join(profile.ChronicConditions, ", "), 14)
		}
		if len(profile.Allergies) > 0 {
			w.text("Alergias: "+strings.Join(profile.Allergies, ", "), 14)
		}
		if len(profile.CurrentMedications) > 0 {
			w.text("Medicamentos actuales: "+strings.Join(profile.CurrentMedications, ", "), 14)
		}
		w.pdf.Br(10)
	}

	// Aggregate statistics
	if err := w.heading("RESUMEN DE CONSULTAS"); err != nil {
		return err
	}
	stats := history.ComputeStats(sorted, now)
	aiIncluded := "No"
	if aiSummary != "" {
		aiIncluded = "Sí"
	}
	for _, row := range [][2]string{
		{"Total de consultas", fmt.Sprint(stats.Total)},
		{"Evaluaciones médicas", fmt.Sprint(stats.ByType[history.TypeMedicalEvaluation])},
		{"Evaluaciones de emergencia", fmt.Sprint(stats.EmergencyCount)},
		{"Check-ins diarios", fmt.Sprint(stats.ByType[history.TypeDailyCheckin])},
		{"Análisis IA incluido", aiIncluded},
	} {
		w.text(fmt.Sprintf("%s: %s", row[0], row[1]), 14)
	}
	w.pdf.Br(10)

	// Per-consultation details, newest first. Capped when the AI summary
	// already condenses the history.
	if err := w.heading("DETALLE DE CONSULTAS"); err != nil {
		return err
	}
	maxDetails := len(sorted)
	if aiSummary != "" && maxDetails > summaryDetailCap {
		maxDetails = summaryDetailCap
	}

	for i, entry := range sorted[:maxDetails] {
		if err := w.setFont(12); err != nil {
			return err
		}
		w.text(fmt.Sprintf("Consulta %d - %s", i+1, entry.Timestamp.Format("02/01/2006 15:04")), 16)
		if err := w.setFont(10); err != nil {
			return err
		}
		w.text("Tipo: "+typeLabel(entry.Type), 12)
		if entry.AssessmentLevel != "" {
			w.text("Nivel de urgencia: "+entry.AssessmentLevel, 12)
		}
		userInput, aiResponse := entry.UserInput, entry.AIResponse
		if aiSummary != "" {
			userInput = truncate(userInput, 200)
			aiResponse = truncate(aiResponse, 200)
		}
		w.text("Síntomas/Consulta: "+userInput, 12)
		w.text("Evaluación y recomendaciones: "+aiResponse, 12)
		w.pdf.Br(8)
	}

	if omitted := len(sorted) - maxDetails; omitted > 0 {
		w.text(fmt.Sprintf("... y %d consultas adicionales (ver historial completo para más detalles)", omitted), 12)
	}

	if err := w.pdf.WritePdf(path); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func periodLabel(p history.Period) string {
	switch p {
	case history.PeriodWeek:
		return "Última semana"
	case history.PeriodMonth:
		return "Último mes"
	case history.PeriodQuarter:
		return "Últimos 3 meses"
	default:
		return "Todo el historial"
	}
}

func typeLabel(t history.Type) string {
	switch t {
	case history.TypeMedicalEvaluation:
		return "Evaluación Médica"
	case history.TypeDailyCheckin:
		return "Check-in Diario"
	case history.TypeEmergency:
		return "Emergencia"
	case history.TypeHerbal:
		return "Consulta Herbal"
	default:
		return "General"
	}
}
