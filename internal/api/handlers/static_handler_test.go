package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/specialistfinder/backend/internal/adapters/storage"
	"github.com/zatekoja/specialistfinder/backend/internal/api/handlers"
)

func serveStatic(h *handlers.StaticHandler, path string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /static/{path...}", h.Serve)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestStaticHandler_Serve(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), "maps/abc.html", []byte("<html>map</html>"), "text/html"))

	h := handlers.NewStaticHandler(store)

	w := serveStatic(h, "/static/maps/abc.html")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, "<html>map</html>", w.Body.String())

	w = serveStatic(h, "/static/maps/missing.html")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHome(t *testing.T) {
	w := httptest.NewRecorder()
	handlers.Home(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Welcome to the Doctor Finder API", body["message"])
	assert.Contains(t, body["endpoints"], "/map")
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	handlers.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}
