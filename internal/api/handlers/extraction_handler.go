package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/zatekoja/specialistfinder/backend/internal/application/services"
)

var uploadFields = []string{"pdf", "file"}

// ExtractionHandler accepts PDF uploads and returns highlighted diseases.
type ExtractionHandler struct {
	extractor      *services.DiseaseExtractionService
	maxUploadBytes int64
}

// NewExtractionHandler creates a new extraction handler
func NewExtractionHandler(extractor *services.DiseaseExtractionService, maxUploadBytes int64) *ExtractionHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &ExtractionHandler{extractor: extractor, maxUploadBytes: maxUploadBytes}
}

// Extract handles POST /extract and POST /
func (h *ExtractionHandler) Extract(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxUploadBytes {
		respondWithError(w, http.StatusRequestEntityTooLarge, "Uploaded file is too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "Uploaded file is too large")
			return
		}
		respondWithError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	fileName, data, err := readUpload(r)
	if err != nil || len(data) == 0 {
		respondWithError(w, http.StatusBadRequest, "No file uploaded")
		return
	}

	extraction, err := h.extractor.Extract(r.Context(), fileName, data)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"id":               extraction.ID,
		"diseases":         nonNilStrings(extraction.Diseases),
		"highlighted_text": extraction.HighlightedText,
		"text":             extraction.Text,
	})
}

func readUpload(r *http.Request) (string, []byte, error) {
	for _, field := range uploadFields {
		file, header, err := r.FormFile(field)
		if err != nil {
			continue
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return "", nil, err
		}
		return header.Filename, data, nil
	}
	return "", nil, http.ErrMissingFile
}
