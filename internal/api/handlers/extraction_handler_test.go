package handlers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/specialistfinder/backend/internal/api/handlers"
	"github.com/zatekoja/specialistfinder/backend/internal/application/services"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
	"github.com/zatekoja/specialistfinder/backend/pkg/textproc"
)

func uploadRequest(t *testing.T, target, field string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		part, err := mw.CreateFormFile(field, "report.pdf")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file here"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var diabetesEntities = []entities.NEREntity{
	{EntityGroup: "LABEL_1", Word: "dia"},
	{EntityGroup: "LABEL_2", Word: "##betes"},
	{EntityGroup: "LABEL_1", Word: "Diabetes"},
}

func TestExtractionHandler_Extract(t *testing.T) {
	svc := newExtractionService("Patient has   diabetes\nand <b>fever</b>.", diabetesEntities)
	h := handlers.NewExtractionHandler(svc, 1<<20)

	for _, field := range []string{"pdf", "file"} {
		t.Run(field, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.Extract(w, uploadRequest(t, "/extract", field, []byte("%PDF-1.4 fake")))

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			body := decodeBody(t, w)
			assert.Equal(t, []interface{}{"diabetes"}, body["diseases"])
			assert.Equal(t, `Patient has <span class="highlight">diabetes</span> and &lt;b&gt;fever&lt;/b&gt;.`, body["highlighted_text"])
			assert.Equal(t, "Patient has diabetes and <b>fever</b>.", body["text"])
		})
	}
}

func TestExtractionHandler_NoFile(t *testing.T) {
	h := handlers.NewExtractionHandler(newExtractionService("text", nil), 1<<20)

	w := httptest.NewRecorder()
	h.Extract(w, uploadRequest(t, "/extract", "", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No file uploaded", decodeBody(t, w)["error"])

	w = httptest.NewRecorder()
	h.Extract(w, jsonRequest(t, http.MethodPost, "/extract", map[string]string{"pdf": "nope"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No file uploaded", decodeBody(t, w)["error"])
}

func TestExtractionHandler_TooLarge(t *testing.T) {
	h := handlers.NewExtractionHandler(newExtractionService("text", nil), 512)

	w := httptest.NewRecorder()
	h.Extract(w, uploadRequest(t, "/extract", "pdf", bytes.Repeat([]byte("x"), 4096)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestExtractionHandler_EmptyText(t *testing.T) {
	h := handlers.NewExtractionHandler(newExtractionService("   ", nil), 1<<20)

	w := httptest.NewRecorder()
	h.Extract(w, uploadRequest(t, "/extract", "pdf", []byte("%PDF")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No text could be extracted from the PDF", decodeBody(t, w)["error"])
}

func TestExtractionHandler_RecognizerDown(t *testing.T) {
	svc := services.NewDiseaseExtractionService(stubExtractor{text: "fever"}, stubRecognizer{err: errUpstream}, textproc.DefaultLabels)
	h := handlers.NewExtractionHandler(svc, 1<<20)

	w := httptest.NewRecorder()
	h.Extract(w, uploadRequest(t, "/", "file", []byte("%PDF")))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Disease recognition failed", decodeBody(t, w)["error"])
}
