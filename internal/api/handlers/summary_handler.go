package handlers

import (
	"net/http"
	"strconv"

	"github.com/zatekoja/specialistfinder/backend/internal/application/services"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
)

// SummaryHandler turns intake forms into patient summaries.
type SummaryHandler struct {
	summaries *services.PatientSummaryService
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(summaries *services.PatientSummaryService) *SummaryHandler {
	return &SummaryHandler{summaries: summaries}
}

// GenerateSummary handles POST /api/generate-summary[?format=pdf]
func (h *SummaryHandler) GenerateSummary(w http.ResponseWriter, r *http.Request) {
	var intake entities.PatientIntake
	if err := decodeJSON(w, r, &intake); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	summary, err := h.summaries.Summarize(r.Context(), &intake)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") != "pdf" {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"text":      summary.Text,
			"generated": summary.Generated,
		})
		return
	}

	doc, err := h.summaries.RenderPDF(summary)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="patient-summary.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}
