package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zatekoja/specialistfinder/backend/internal/adapters/database"
	"github.com/zatekoja/specialistfinder/backend/internal/adapters/events"
	"github.com/zatekoja/specialistfinder/backend/internal/adapters/providers/places"
	"github.com/zatekoja/specialistfinder/backend/internal/adapters/search"
	"github.com/zatekoja/specialistfinder/backend/internal/adapters/storage"
	"github.com/zatekoja/specialistfinder/backend/internal/application/services"
	"github.com/zatekoja/specialistfinder/backend/internal/catalog"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
	"github.com/zatekoja/specialistfinder/backend/pkg/textproc"
)

type fixture struct {
	finder *services.HospitalFinderService
	index  *search.MemoryHospitalIndex
	store  *storage.LocalStore
	bus    *events.MemoryEventBus
}

func newFinderFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	finder := services.NewHospitalFinderService(
		services.NewFuzzyClassifier(catalog.Default(), services.DefaultFuzzyThreshold),
		places.NewMockProvider(),
		services.NewMapRenderer(store),
		database.NewMemorySearchHistory(50),
		services.HospitalFinderConfig{},
	)
	index := search.NewMemoryHospitalIndex()
	bus := events.NewMemoryEventBus()
	finder.SetIndex(index)
	finder.SetEventBus(bus)
	t.Cleanup(func() { _ = bus.Close() })

	return &fixture{finder: finder, index: index, store: store, bus: bus}
}

type stubExtractor struct {
	text string
	err  error
}

func (s stubExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	return s.text, s.err
}

type stubRecognizer struct {
	entities []entities.NEREntity
	err      error
}

func (s stubRecognizer) Recognize(ctx context.Context, text string) ([]entities.NEREntity, error) {
	return s.entities, s.err
}

type stubGenerator struct {
	text string
	err  error
}

func (s stubGenerator) GeneratePatientSummary(ctx context.Context, intake *entities.PatientIntake) (string, error) {
	return s.text, s.err
}

var errUpstream = errors.New("upstream unavailable")

func newExtractionService(text string, recognized []entities.NEREntity) *services.DiseaseExtractionService {
	return services.NewDiseaseExtractionService(stubExtractor{text: text}, stubRecognizer{entities: recognized}, textproc.DefaultLabels)
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}
