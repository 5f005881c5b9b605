package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CLASSIFIER_MODE", "")
	t.Setenv("SERVER_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5002, cfg.Server.Port)
	assert.Equal(t, "fuzzy", cfg.Classifier.Mode)
	assert.InDelta(t, 0.8, cfg.Classifier.FuzzyThreshold, 1e-9)
	assert.Equal(t, 5000, cfg.Places.RadiusMeters)
	assert.Equal(t, 10, cfg.Places.ResultLimit)
	assert.Equal(t, "LABEL_1", cfg.NER.BeginLabel)
	assert.Equal(t, "LABEL_2", cfg.NER.InsideLabel)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("CLASSIFIER_MODE", "llm")
	t.Setenv("FUZZY_THRESHOLD", "0.75")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:5173, https://finder.example.com ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "llm", cfg.Classifier.Mode)
	assert.InDelta(t, 0.75, cfg.Classifier.FuzzyThreshold, 1e-9)
	assert.Equal(t, []string{"http://localhost:5173", "https://finder.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unknown classifier mode", key: "CLASSIFIER_MODE", val: "magic"},
		{name: "threshold above one", key: "FUZZY_THRESHOLD", val: "1.5"},
		{name: "unknown storage backend", key: "STORAGE_BACKEND", val: "ftp"},
		{name: "s3 without bucket", key: "STORAGE_BACKEND", val: "s3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestMaxUploadBytes(t *testing.T) {
	cfg := ServerConfig{MaxUploadMB: 2}
	assert.Equal(t, int64(2*1024*1024), cfg.MaxUploadBytes())
}
