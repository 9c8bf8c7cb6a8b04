// Package report renders completed analyses as downloadable PDF documents.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/speechpath/speechpath-server/internal/domain"
)

// PDFRenderer turns a completed analysis into a PDF. Rendering is a pure
// function of its inputs; it touches no storage.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

type pdfEvent struct {
	Timestamp float64 `json:"timestamp"`
	Type      string  `json:"type"`
	Word      string  `json:"word"`
	Duration  float64 `json:"duration"`
}

type pdfData struct {
	StutteringEvents []pdfEvent `json:"stuttering_events"`
	ConfidenceScore  float64    `json:"confidence_score"`
	ProcessingMethod string     `json:"processing_method"`
}

func (r *PDFRenderer) Render(analysis *domain.SpeechAnalysis, audio *domain.AudioFile, user *domain.User) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Speech Analysis Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 12, "Speech Analysis Report")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 11)
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		name = user.Email
	}
	r.row(pdf, "Patient", name)
	r.row(pdf, "Recording", audio.OriginalName)
	if audio.Duration != nil {
		r.row(pdf, "Duration", fmt.Sprintf("%.1f s", *audio.Duration))
	}
	if analysis.ProcessedAt != nil {
		r.row(pdf, "Analyzed", analysis.ProcessedAt.Format(time.RFC1123))
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 10, "Results")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	r.row(pdf, "Fluency score", fmt.Sprintf("%.1f / 10", analysis.FluencyScore))
	r.row(pdf, "Speech rate", fmt.Sprintf("%.1f words/min", analysis.SpeechRate))
	r.row(pdf, "Total words", fmt.Sprintf("%d", analysis.TotalWords))
	r.row(pdf, "Stuttered words", fmt.Sprintf("%d", analysis.StutteredWords))
	r.row(pdf, "Stuttering", fmt.Sprintf("%.1f%%", analysis.StutteringPercentage))
	r.row(pdf, "Average pause", fmt.Sprintf("%.2f s", analysis.AveragePauseDuration))
	pdf.Ln(6)

	var data pdfData
	if len(analysis.AnalysisData) > 0 {
		_ = json.Unmarshal(analysis.AnalysisData, &data)
	}
	if len(data.StutteringEvents) > 0 {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 10, "Detected Events")
		pdf.Ln(10)
		pdf.SetFont("Helvetica", "", 10)
		for _, ev := range data.StutteringEvents {
			line := fmt.Sprintf("%.1fs  %s", ev.Timestamp, ev.Type)
			if ev.Word != "" {
				line += fmt.Sprintf("  (%q)", ev.Word)
			}
			line += fmt.Sprintf("  %.2fs", ev.Duration)
			pdf.Cell(0, 6, line)
			pdf.Ln(6)
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "This report was generated automatically and is intended "+
		"for review together with a speech-language pathologist.", "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *PDFRenderer) row(pdf *fpdf.Fpdf, label, value string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(45, 7, label)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, value)
	pdf.Ln(7)
}
