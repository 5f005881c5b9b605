package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/specialistfinder/backend/internal/adapters/search"
	"github.com/zatekoja/specialistfinder/backend/internal/adapters/storage"
	"github.com/zatekoja/specialistfinder/backend/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server:     config.ServerConfig{Env: "test", MaxUploadMB: 1},
		Places:     config.PlacesConfig{Provider: "mock", RadiusMeters: 5000, ResultLimit: 10},
		Classifier: config.ClassifierConfig{Mode: "fuzzy", FuzzyThreshold: 0.8},
		LLM:        config.LLMConfig{Provider: "openai"},
		NER:        config.NERConfig{APIURL: "http://127.0.0.1:1", Model: "test", BeginLabel: "LABEL_1", InsideLabel: "LABEL_2"},
		Storage:    config.StorageConfig{Backend: "local", LocalPath: t.TempDir()},
		CORS:       config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

func TestNew_InProcessFallbacks(t *testing.T) {
	c, err := New(context.Background(), testConfig(t), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.IsType(t, &storage.LocalStore{}, c.MapStore)
	assert.IsType(t, &search.MemoryHospitalIndex{}, c.Index)
	assert.NotNil(t, c.EventBus)
	assert.NotNil(t, c.Cache)
	assert.NotNil(t, c.History)
}

func TestNew_LLMModeWithoutKeyUsesFuzzy(t *testing.T) {
	cfg := testConfig(t)
	cfg.Classifier.Mode = "llm"

	c, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	classification, err := c.Finder.Classify(context.Background(), []string{"Chest pain"})
	require.NoError(t, err)
	assert.Equal(t, "fuzzy", string(classification.Method))
}

func TestNew_UnknownLLMProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLM.Provider = "bard"

	_, err := New(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "LLM_PROVIDER")
}

func TestContainer_Handler(t *testing.T) {
	c, err := New(context.Background(), testConfig(t), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}
