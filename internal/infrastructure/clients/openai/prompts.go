package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/providers"
)

const symptomSystemPrompt = `You help patients find the right kind of doctor. You receive a list of symptoms typed by a patient, possibly misspelled, and a list of allowed specialist names. Return ONLY valid JSON with this schema:
{
  "corrected_symptoms": string[] (the same symptoms, in the same order, with spelling fixed),
  "specialties": string[] (0-5 names copied exactly from the allowed list, most relevant first)
}
Never invent specialist names that are not in the allowed list. Return an empty specialties array when nothing fits. Do not include medical advice or diagnosis.`

const summarySystemPrompt = `You are a dermatology clinic intake assistant. Write a concise summary of the patient intake form for the treating dermatologist. Use plain text with short headed paragraphs: Patient, Relevant History, Current Routine, Family History, Presenting Complaint. Only use facts present in the form. Do not add diagnoses or treatment advice.`

func buildSymptomUserPrompt(symptoms, allowedSpecialties []string) string {
	return fmt.Sprintf(
		"Symptoms:\n- %s\n\nAllowed specialists:\n%s\n",
		strings.Join(symptoms, "\n- "),
		strings.Join(allowedSpecialties, ", "),
	)
}

func buildSummaryUserPrompt(intake *entities.PatientIntake) string {
	var b strings.Builder
	for _, section := range intake.Sections() {
		fmt.Fprintf(&b, "%s:\n", section.Title)
		for _, field := range section.Fields {
			fmt.Fprintf(&b, "  %s: %s\n", field.Label, field.Value)
		}
	}
	return b.String()
}

func parseSymptomInterpretation(text string) (*providers.SymptomInterpretation, error) {
	var payload providers.SymptomInterpretation
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse symptom payload: %w", err)
	}
	return &payload, nil
}
