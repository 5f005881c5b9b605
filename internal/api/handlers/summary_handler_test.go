package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/specialistfinder/backend/internal/api/handlers"
	"github.com/zatekoja/specialistfinder/backend/internal/application/services"
)

var intake = map[string]string{
	"name":             "Ada Obi",
	"email":            "ada@example.com",
	"primarySkinIssue": "Itchy rash on forearms",
	"issueDuration":    "3 weeks",
}

func TestSummaryHandler_TemplateFallback(t *testing.T) {
	h := handlers.NewSummaryHandler(services.NewPatientSummaryService(stubGenerator{err: errUpstream}))

	w := httptest.NewRecorder()
	h.GenerateSummary(w, jsonRequest(t, http.MethodPost, "/api/generate-summary", intake))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, false, body["generated"])
	assert.Contains(t, body["text"], "Ada Obi")
	assert.Contains(t, body["text"], "Itchy rash on forearms")
}

func TestSummaryHandler_Generated(t *testing.T) {
	h := handlers.NewSummaryHandler(services.NewPatientSummaryService(stubGenerator{text: "Ada presents with a rash."}))

	w := httptest.NewRecorder()
	h.GenerateSummary(w, jsonRequest(t, http.MethodPost, "/api/generate-summary", intake))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["generated"])
	assert.Equal(t, "Ada presents with a rash.", body["text"])
}

func TestSummaryHandler_PDF(t *testing.T) {
	h := handlers.NewSummaryHandler(services.NewPatientSummaryService(nil))

	w := httptest.NewRecorder()
	h.GenerateSummary(w, jsonRequest(t, http.MethodPost, "/api/generate-summary?format=pdf", intake))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestSummaryHandler_Validation(t *testing.T) {
	h := handlers.NewSummaryHandler(services.NewPatientSummaryService(nil))

	w := httptest.NewRecorder()
	h.GenerateSummary(w, jsonRequest(t, http.MethodPost, "/api/generate-summary", map[string]string{"primarySkinIssue": "Acne"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Patient name is required", decodeBody(t, w)["error"])

	w = httptest.NewRecorder()
	h.GenerateSummary(w, jsonRequest(t, http.MethodPost, "/api/generate-summary", `not json`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
