package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jung-kurt/gofpdf"

	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/providers"
	"github.com/zatekoja/specialistfinder/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/specialistfinder/backend/pkg/errors"
)

const summaryTitle = "Dermatology Patient Summary"

// PatientSummary is a summary ready to show or print.
type PatientSummary struct {
	Text      string
	Generated bool
}

// PatientSummaryService summarises intake forms.
type PatientSummaryService struct {
	generator providers.SummaryGenerator
	validate  *validator.Validate
}

// NewPatientSummaryService creates the service. A nil generator always uses
// the template summary.
func NewPatientSummaryService(generator providers.SummaryGenerator) *PatientSummaryService {
	return &PatientSummaryService{
		generator: generator,
		validate:  validator.New(),
	}
}

// Summarize validates the form and returns a summary. The language model is
// tried first; its failures fall back to the template.
func (s *PatientSummaryService) Summarize(ctx context.Context, intake *entities.PatientIntake) (*PatientSummary, error) {
	if intake == nil {
		return nil, apperrors.NewValidationError("Patient details are required")
	}
	if err := s.validate.Struct(intake); err != nil {
		return nil, apperrors.NewValidationError(intakeValidationMessage(err))
	}

	if s.generator != nil {
		text, err := s.generator.GeneratePatientSummary(ctx, intake)
		if err == nil && strings.TrimSpace(text) != "" {
			return &PatientSummary{Text: text, Generated: true}, nil
		}
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Summary generator failed, using template")
	}
	return &PatientSummary{Text: TemplateSummary(intake)}, nil
}

// TemplateSummary lays the answered questions out section by section.
func TemplateSummary(intake *entities.PatientIntake) string {
	var b strings.Builder
	b.WriteString(summaryTitle)
	b.WriteString("\n")
	for _, section := range intake.Sections() {
		fmt.Fprintf(&b, "\n%s\n", section.Title)
		for _, field := range section.Fields {
			fmt.Fprintf(&b, "- %s: %s\n", field.Label, field.Value)
		}
	}
	return b.String()
}

// RenderPDF prints summary text to a single-column A4 document.
func (s *PatientSummaryService) RenderPDF(summary *PatientSummary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(summaryTitle, true)
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	lines := strings.Split(strings.TrimRight(summary.Text, "\n"), "\n")
	for i, line := range lines {
		switch {
		case i == 0 && line == summaryTitle:
			pdf.SetFont("Helvetica", "B", 16)
			pdf.MultiCell(0, 9, tr(line), "", "L", false)
			pdf.Ln(2)
		case line != "" && !strings.HasPrefix(line, "- ") && !summary.Generated:
			pdf.SetFont("Helvetica", "B", 12)
			pdf.MultiCell(0, 7, tr(line), "", "L", false)
		default:
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 6, tr(line), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, apperrors.NewInternalError("Failed to render summary PDF", err)
	}
	return buf.Bytes(), nil
}

func intakeValidationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "Invalid patient details"
	}
	switch f := verrs[0]; f.Field() {
	case "Name":
		return "Patient name is required"
	case "Email":
		return "Email address is invalid"
	case "PrimarySkinIssue":
		return "Primary skin issue is required"
	default:
		return fmt.Sprintf("Invalid value for %s", f.Field())
	}
}
