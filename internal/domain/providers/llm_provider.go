package providers

import (
	"context"

	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
)

// SymptomInterpretation is what a language model returns for a list of symptoms.
type SymptomInterpretation struct {
	CorrectedSymptoms []string `json:"corrected_symptoms"`
	Specialties       []string `json:"specialties"`
}

// SymptomInterpreter asks a language model which specialties fit the symptoms.
// The model must pick from allowedSpecialties.
type SymptomInterpreter interface {
	InterpretSymptoms(ctx context.Context, symptoms []string, allowedSpecialties []string) (*SymptomInterpretation, error)
}

// SummaryGenerator writes a clinician-facing summary of an intake form.
type SummaryGenerator interface {
	GeneratePatientSummary(ctx context.Context, intake *entities.PatientIntake) (string, error)
}
