package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
	"github.com/zatekoja/specialistfinder/backend/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&config.OpenAIConfig{
		APIKey:       "test-key",
		Model:        "gpt-test",
		BaseURL:      server.URL,
		RateLimitRPM: -1,
	})
	require.NoError(t, err)
	return client
}

func writeOutput(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"output": []map[string]interface{}{
			{"content": []map[string]string{{"type": "output_text", "text": text}}},
		},
	})
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(&config.OpenAIConfig{})
	assert.Error(t, err)
	_, err = NewClient(nil)
	assert.Error(t, err)
}

func TestInterpretSymptoms(t *testing.T) {
	var captured map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/responses", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		writeOutput(w, "```json\n{\"corrected_symptoms\":[\"chest pain\"],\"specialties\":[\"Cardiologist\"]}\n```")
	})

	out, err := client.InterpretSymptoms(context.Background(), []string{"chest pian"}, []string{"Cardiologist", "Neurologist"})
	require.NoError(t, err)
	assert.Equal(t, []string{"chest pain"}, out.CorrectedSymptoms)
	assert.Equal(t, []string{"Cardiologist"}, out.Specialties)

	assert.Equal(t, "gpt-test", captured["model"])
	input := captured["input"].([]interface{})
	user := input[1].(map[string]interface{})
	assert.Contains(t, user["content"], "chest pian")
	assert.Contains(t, user["content"], "Cardiologist, Neurologist")
}

func TestInterpretSymptoms_EmptyInputSkipsRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	})
	out, err := client.InterpretSymptoms(context.Background(), nil, []string{"Cardiologist"})
	require.NoError(t, err)
	assert.Empty(t, out.Specialties)
}

func TestInterpretSymptoms_Errors(t *testing.T) {
	unauthorized := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	_, err := unauthorized.InterpretSymptoms(context.Background(), []string{"fever"}, []string{"General Physician"})
	assert.True(t, errors.Is(err, ErrUnauthorized))

	garbage := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeOutput(w, "not json")
	})
	_, err = garbage.InterpretSymptoms(context.Background(), []string{"fever"}, []string{"General Physician"})
	assert.Error(t, err)

	empty := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":[]}`))
	})
	_, err = empty.InterpretSymptoms(context.Background(), []string{"fever"}, []string{"General Physician"})
	assert.ErrorContains(t, err, "missing output text")
}

func TestGeneratePatientSummary(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		user := body["input"].([]interface{})[1].(map[string]interface{})
		assert.Contains(t, user["content"], "Name: Ada")
		assert.Contains(t, user["content"], "Current Skin Issue:")
		writeOutput(w, "  Patient: Ada, persistent rash.  ")
	})

	text, err := client.GeneratePatientSummary(context.Background(), &entities.PatientIntake{
		Name:             "Ada",
		PrimarySkinIssue: "Rash",
	})
	require.NoError(t, err)
	assert.Equal(t, "Patient: Ada, persistent rash.", text)

	_, err = client.GeneratePatientSummary(context.Background(), nil)
	assert.Error(t, err)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(` {"a":1} `))
}
