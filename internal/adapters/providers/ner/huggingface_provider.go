// Package ner calls a hosted token-classification model to find disease
// mentions in free text.
package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zatekoja/specialistfinder/backend/internal/adapters/cache"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/providers"
	"github.com/zatekoja/specialistfinder/backend/internal/infrastructure/observability"
	"github.com/zatekoja/specialistfinder/backend/pkg/retry"
)

const (
	// DefaultAPIURL is the Hugging Face serverless inference endpoint.
	DefaultAPIURL = "https://api-inference.huggingface.co/models"
	// DefaultModel is the biomedical NER model the extraction pipeline was tuned for.
	DefaultModel = "Ishan0612/biobert_medical_ner"

	maxChunkBytes      = 1500
	nerCacheTTL        = 24 * time.Hour
	defaultHTTPTimeout = 60 * time.Second
)

// HuggingFaceProvider implements EntityRecognizer over the Inference API.
type HuggingFaceProvider struct {
	apiURL     string
	model      string
	token      string
	httpClient *http.Client
	cache      *cache.JSONCache
	metrics    *observability.Metrics
	retryCfg   retry.Config
	chunkBytes int
}

// Option customises a HuggingFaceProvider.
type Option func(*HuggingFaceProvider)

// WithHTTPClient overrides the HTTP client (used for tests).
func WithHTTPClient(c *http.Client) Option {
	return func(p *HuggingFaceProvider) { p.httpClient = c }
}

// WithCache caches results by text hash.
func WithCache(c providers.CacheProvider) Option {
	return func(p *HuggingFaceProvider) { p.cache = cache.NewJSONCache(c) }
}

// WithMetrics records upstream call metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *HuggingFaceProvider) { p.metrics = m }
}

// WithRetry overrides the retry policy.
func WithRetry(cfg retry.Config) Option {
	return func(p *HuggingFaceProvider) { p.retryCfg = cfg }
}

// WithChunkBytes overrides the maximum request size.
func WithChunkBytes(n int) Option {
	return func(p *HuggingFaceProvider) { p.chunkBytes = n }
}

// NewHuggingFaceProvider creates a new NER provider.
func NewHuggingFaceProvider(apiURL, model, token string, opts ...Option) *HuggingFaceProvider {
	if strings.TrimSpace(apiURL) == "" {
		apiURL = DefaultAPIURL
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	retryCfg := retry.UpstreamConfig()
	// Cold models can take tens of seconds to load.
	retryCfg.MaxAttempts = 5
	retryCfg.MaxDelay = 10 * time.Second
	retryCfg.MaxTotalTimeout = 2 * time.Minute

	p := &HuggingFaceProvider{
		apiURL:     strings.TrimRight(apiURL, "/"),
		model:      model,
		token:      token,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		cache:      cache.NewJSONCache(nil),
		retryCfg:   retryCfg,
		chunkBytes: maxChunkBytes,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ providers.EntityRecognizer = (*HuggingFaceProvider)(nil)

// Recognize returns the aggregated entities for text. Start and End are rune
// offsets into text.
func (p *HuggingFaceProvider) Recognize(ctx context.Context, text string) ([]entities.NEREntity, error) {
	if strings.TrimSpace(text) == "" {
		return []entities.NEREntity{}, nil
	}

	cacheKey := providers.CacheKey("ner:v1:"+p.model, text)
	var cached []entities.NEREntity
	if hit, _ := p.cache.Get(ctx, cacheKey, &cached); hit {
		observability.RecordCacheHit(ctx, p.metrics, "ner")
		return cached, nil
	}
	observability.RecordCacheMiss(ctx, p.metrics, "ner")

	ctx, span := observability.StartSpan(ctx, "ner.recognize")
	defer span.End()

	chunks := splitText(text, p.chunkBytes)
	result := make([]entities.NEREntity, 0)
	for _, c := range chunks {
		found, err := p.recognizeChunk(ctx, c.text)
		if err != nil {
			observability.RecordError(span, err)
			return nil, err
		}
		for _, e := range found {
			e.Start += c.runeOffset
			e.End += c.runeOffset
			result = append(result, e)
		}
	}

	if err := p.cache.Set(ctx, cacheKey, result, nerCacheTTL); err != nil {
		observability.LoggerFromContext(ctx).Debug().Err(err).Msg("failed to cache ner result")
	}
	return result, nil
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
	Options    inferenceOptions    `json:"options"`
}

type inferenceParameters struct {
	AggregationStrategy string `json:"aggregation_strategy"`
}

type inferenceOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type inferenceError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

func (p *HuggingFaceProvider) recognizeChunk(ctx context.Context, text string) ([]entities.NEREntity, error) {
	body, err := json.Marshal(inferenceRequest{
		Inputs:     text,
		Parameters: inferenceParameters{AggregationStrategy: "simple"},
		Options:    inferenceOptions{WaitForModel: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode ner request: %w", err)
	}

	var out []entities.NEREntity
	start := time.Now()
	err = retry.DoWithLog(ctx, p.retryCfg, "ner", func() error {
		var err error
		out, err = p.post(ctx, body)
		return err
	}, func(attempt int, err error, nextDelay time.Duration) {
		observability.LoggerFromContext(ctx).Warn().Err(err).Int("attempt", attempt).Dur("next_delay", nextDelay).Msg("ner request failed, retrying")
	})
	observability.RecordUpstreamMetric(ctx, p.metrics, "ner", p.model, err, time.Since(start))
	return out, err
}

func (p *HuggingFaceProvider) post(ctx context.Context, body []byte) ([]entities.NEREntity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL+"/"+p.model, bytes.NewReader(body))
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to build ner request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ner request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read ner response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable:
		var apiErr inferenceError
		_ = json.Unmarshal(data, &apiErr)
		return nil, fmt.Errorf("%w: %s", providers.ErrNERModelLoading, apiErr.Error)
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("ner api returned status %d", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		var apiErr inferenceError
		_ = json.Unmarshal(data, &apiErr)
		return nil, retry.Permanent(fmt.Errorf("ner api returned status %d: %s", resp.StatusCode, apiErr.Error))
	}

	var found []entities.NEREntity
	if err := json.Unmarshal(data, &found); err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to decode ner response: %w", err))
	}
	return found, nil
}
