package handlers

import (
	"errors"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/zatekoja/specialistfinder/backend/internal/domain/providers"
)

// StaticHandler serves rendered maps out of the map store.
type StaticHandler struct {
	store providers.MapStore
}

// NewStaticHandler creates a new static handler
func NewStaticHandler(store providers.MapStore) *StaticHandler {
	return &StaticHandler{store: store}
}

// Serve handles GET /static/{path...}
func (h *StaticHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(path.Clean("/"+r.PathValue("path")), "/")
	if key == "" || key == "." {
		respondWithError(w, http.StatusNotFound, "Not found")
		return
	}

	content, err := h.store.Get(r.Context(), key)
	if errors.Is(err, providers.ErrObjectNotFound) {
		respondWithError(w, http.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = http.DetectContentType(content)
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}
