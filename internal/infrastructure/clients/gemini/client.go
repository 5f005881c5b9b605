// Package gemini implements the language model providers on Google's Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/providers"
	"github.com/zatekoja/specialistfinder/backend/internal/infrastructure/observability"
	"github.com/zatekoja/specialistfinder/backend/pkg/config"
)

const defaultModel = "gemini-2.0-flash"

// Client generates content with a Gemini model.
type Client struct {
	client  *genai.Client
	model   string
	metrics *observability.Metrics
}

var (
	_ providers.SymptomInterpreter = (*Client)(nil)
	_ providers.SummaryGenerator   = (*Client)(nil)
)

// NewClient creates a Gemini client. baseURL overrides the API endpoint and
// is only set in tests.
func NewClient(ctx context.Context, cfg *config.GeminiConfig, metrics *observability.Metrics, baseURL string) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{client: client, model: model, metrics: metrics}, nil
}

// InterpretSymptoms asks the model for corrected symptoms and matching
// specialties. The response is constrained to JSON.
func (c *Client) InterpretSymptoms(ctx context.Context, symptoms []string, allowedSpecialties []string) (*providers.SymptomInterpretation, error) {
	if len(symptoms) == 0 {
		return &providers.SymptomInterpretation{}, nil
	}

	prompt := fmt.Sprintf(
		"Symptoms:\n- %s\n\nAllowed specialists:\n%s\n",
		strings.Join(symptoms, "\n- "),
		strings.Join(allowedSpecialties, ", "),
	)
	text, err := c.generate(ctx, "interpret_symptoms", symptomInstruction, prompt, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		MaxOutputTokens:  400,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, err
	}

	var out providers.SymptomInterpretation
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("failed to parse gemini response: %w", err)
	}
	return &out, nil
}

// GeneratePatientSummary writes a clinician-facing summary of the intake form.
func (c *Client) GeneratePatientSummary(ctx context.Context, intake *entities.PatientIntake) (string, error) {
	if intake == nil {
		return "", errors.New("intake is required")
	}

	var b strings.Builder
	for _, section := range intake.Sections() {
		fmt.Fprintf(&b, "%s:\n", section.Title)
		for _, field := range section.Fields {
			fmt.Fprintf(&b, "  %s: %s\n", field.Label, field.Value)
		}
	}

	text, err := c.generate(ctx, "patient_summary", summaryInstruction, b.String(), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.3),
		MaxOutputTokens: 800,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (c *Client) generate(ctx context.Context, operation, instruction, prompt string, genCfg *genai.GenerateContentConfig) (string, error) {
	ctx, span := observability.StartSpan(ctx, "gemini."+operation)
	defer span.End()

	genCfg.SystemInstruction = genai.NewContentFromText(instruction, genai.RoleUser)

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), genCfg)
	observability.RecordUpstreamMetric(ctx, c.metrics, "gemini", operation, err, time.Since(start))
	if err != nil {
		observability.RecordError(span, err)
		return "", fmt.Errorf("gemini %s failed: %w", operation, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini response missing text")
	}
	return text, nil
}

const symptomInstruction = `You help patients find the right kind of doctor. You receive symptoms typed by a patient, possibly misspelled, and a list of allowed specialist names. Reply with JSON {"corrected_symptoms": string[], "specialties": string[]}. corrected_symptoms keeps the input order with spelling fixed. specialties holds 0-5 names copied exactly from the allowed list, most relevant first. Never invent names and never give medical advice.`

const summaryInstruction = `You are a dermatology clinic intake assistant. Summarise the patient intake form for the treating dermatologist in plain text with short headed paragraphs: Patient, Relevant History, Current Routine, Family History, Presenting Complaint. Only use facts present in the form. Do not add diagnoses or treatment advice.`
