// Package app wires configuration into clients, adapters and services. Both
// the HTTP server and the operator CLI build their dependencies here.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/specialistfinder/backend/internal/adapters/cache"
	"github.com/zatekoja/specialistfinder/backend/internal/adapters/database"
	"github.com/zatekoja/specialistfinder/backend/internal/adapters/events"
	"github.com/zatekoja/specialistfinder/backend/internal/adapters/providers/document"
	"github.com/zatekoja/specialistfinder/backend/internal/adapters/providers/ner"
	"github.com/zatekoja/specialistfinder/backend/internal/adapters/providers/places"
	"github.com/zatekoja/specialistfinder/backend/internal/adapters/search"
	"github.com/zatekoja/specialistfinder/backend/internal/adapters/storage"
	"github.com/zatekoja/specialistfinder/backend/internal/api/handlers"
	"github.com/zatekoja/specialistfinder/backend/internal/api/middleware"
	"github.com/zatekoja/specialistfinder/backend/internal/api/routes"
	"github.com/zatekoja/specialistfinder/backend/internal/application/services"
	"github.com/zatekoja/specialistfinder/backend/internal/catalog"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/providers"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/repositories"
	"github.com/zatekoja/specialistfinder/backend/internal/infrastructure/clients/gemini"
	"github.com/zatekoja/specialistfinder/backend/internal/infrastructure/clients/openai"
	"github.com/zatekoja/specialistfinder/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/specialistfinder/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/specialistfinder/backend/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/specialistfinder/backend/internal/infrastructure/observability"
	"github.com/zatekoja/specialistfinder/backend/pkg/config"
	"github.com/zatekoja/specialistfinder/backend/pkg/retry"
	"github.com/zatekoja/specialistfinder/backend/pkg/textproc"
)

const memoryHistoryCapacity = 500

// Container holds the long-lived dependencies of one process.
type Container struct {
	Config  *config.Config
	Metrics *observability.Metrics
	Catalog *catalog.Catalog

	Cache    providers.CacheProvider
	EventBus providers.EventBus
	MapStore providers.MapStore
	History  repositories.SearchHistoryRepository
	Index    repositories.HospitalIndex

	Finder     *services.HospitalFinderService
	Extraction *services.DiseaseExtractionService
	Summaries  *services.PatientSummaryService

	closers []func() error
}

// New builds every dependency from cfg. Optional backends (PostgreSQL,
// Redis, Typesense, language models) that are disabled or unreachable are
// replaced by in-process equivalents and logged.
func New(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (*Container, error) {
	c := &Container{Config: cfg, Metrics: metrics}

	cat, err := catalog.Load(cfg.Classifier.CatalogPath)
	if err != nil {
		return nil, err
	}
	c.Catalog = cat

	c.connectRedis(ctx)
	c.connectHistory(ctx)
	c.connectIndex(ctx)

	if c.MapStore, err = newMapStore(cfg.Storage); err != nil {
		_ = c.Close()
		return nil, err
	}

	interpreter, generator, err := c.newLanguageModel(ctx)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	c.Finder = services.NewHospitalFinderService(
		c.newClassifier(interpreter),
		c.newPlacesProvider(),
		services.NewMapRenderer(c.MapStore),
		c.History,
		services.HospitalFinderConfig{
			RadiusMeters: cfg.Places.RadiusMeters,
			ResultLimit:  cfg.Places.ResultLimit,
		},
	)
	c.Finder.SetIndex(c.Index)
	c.Finder.SetEventBus(c.EventBus)

	recognizer := ner.NewHuggingFaceProvider(cfg.NER.APIURL, cfg.NER.Model, cfg.NER.APIToken,
		ner.WithCache(c.Cache),
		ner.WithMetrics(metrics),
		ner.WithRetry(retry.UpstreamConfig()),
	)
	c.Extraction = services.NewDiseaseExtractionService(document.NewTextExtractor(), recognizer, textproc.Labels{
		Begin:  cfg.NER.BeginLabel,
		Inside: cfg.NER.InsideLabel,
	})
	c.Extraction.SetEventBus(c.EventBus)

	c.Summaries = services.NewPatientSummaryService(generator)

	invalidation := services.NewCacheInvalidationService(c.Cache, c.EventBus)
	if err := invalidation.Start(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	c.closers = append(c.closers, invalidation.Stop)
	return c, nil
}

// Handler returns the HTTP API with its middleware chain.
func (c *Container) Handler() http.Handler {
	router := routes.NewRouter(
		handlers.NewHospitalHandler(c.Finder),
		handlers.NewExtractionHandler(c.Extraction, c.Config.Server.MaxUploadBytes()),
		handlers.NewSummaryHandler(c.Summaries),
		handlers.NewStaticHandler(c.MapStore),
		handlers.NewSSEHandler(c.EventBus),
		middleware.NewCacheMiddleware(c.Cache, c.Metrics),
		c.Config.CORS.AllowedOrigins,
		c.Metrics,
	)
	return router.SetupRoutes()
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

func (c *Container) connectRedis(ctx context.Context) {
	if c.Config.Redis.Enabled {
		client, err := redis.NewClient(ctx, &c.Config.Redis)
		if err == nil {
			c.Cache = cache.NewRedisAdapter(client)
			c.EventBus = events.NewRedisEventBus(client)
			c.closers = append(c.closers, client.Close, c.EventBus.Close)
			log.Info().Str("addr", c.Config.Redis.RedisAddr()).Msg("Redis cache and event bus enabled")
			return
		}
		log.Warn().Err(err).Msg("Redis unavailable, using in-memory cache and event bus")
	}
	c.Cache = cache.NewMemoryAdapter()
	bus := events.NewMemoryEventBus()
	c.EventBus = bus
	c.closers = append(c.closers, bus.Close)
}

func (c *Container) connectHistory(ctx context.Context) {
	if c.Config.Database.Enabled {
		client, err := postgres.NewClient(ctx, &c.Config.Database)
		if err == nil {
			adapter := database.NewSearchHistoryAdapter(client)
			if err = adapter.InitSchema(ctx); err == nil {
				c.History = adapter
				c.closers = append(c.closers, client.Close)
				log.Info().Str("host", c.Config.Database.Host).Msg("PostgreSQL search history enabled")
				return
			}
			_ = client.Close()
		}
		log.Warn().Err(err).Msg("PostgreSQL unavailable, keeping search history in memory")
	}
	c.History = database.NewMemorySearchHistory(memoryHistoryCapacity)
}

func (c *Container) connectIndex(ctx context.Context) {
	if c.Config.Typesense.Enabled {
		client, err := typesense.NewClient(ctx, &c.Config.Typesense)
		if err == nil {
			adapter := search.NewHospitalIndexAdapter(client)
			if err = adapter.InitSchema(ctx); err == nil {
				c.Index = adapter
				log.Info().Str("url", c.Config.Typesense.URL).Msg("Typesense hospital index enabled")
				return
			}
		}
		log.Warn().Err(err).Msg("Typesense unavailable, indexing hospitals in memory")
	}
	c.Index = search.NewMemoryHospitalIndex()
}

func newMapStore(cfg config.StorageConfig) (providers.MapStore, error) {
	switch cfg.Backend {
	case "s3":
		sess, err := storage.NewS3Session(cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		log.Info().Str("bucket", cfg.S3Bucket).Str("prefix", cfg.S3Prefix).Msg("Storing maps in S3")
		return storage.NewS3Store(sess, cfg.S3Bucket, cfg.S3Prefix), nil
	default:
		store, err := storage.NewLocalStore(cfg.LocalPath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", store.Root()).Msg("Storing maps on local disk")
		return store, nil
	}
}

func (c *Container) newPlacesProvider() providers.PlacesProvider {
	cfg := c.Config.Places
	if cfg.Provider == "mock" {
		return places.NewMockProvider()
	}
	if cfg.APIKey == "" {
		log.Warn().Msg("PLACES_API_KEY is not set; using mock places provider")
		return places.NewMockProvider()
	}
	return places.NewGoMapsProvider(cfg.APIKey, cfg.BaseURL,
		places.WithCache(c.Cache),
		places.WithMetrics(c.Metrics),
		places.WithRetry(retry.UpstreamConfig()),
	)
}

// newLanguageModel returns nil clients when no key is configured for the
// selected provider.
func (c *Container) newLanguageModel(ctx context.Context) (providers.SymptomInterpreter, providers.SummaryGenerator, error) {
	switch c.Config.LLM.Provider {
	case "gemini":
		if c.Config.Gemini.APIKey == "" {
			log.Warn().Msg("GEMINI_API_KEY is not set; language model features disabled")
			return nil, nil, nil
		}
		client, err := gemini.NewClient(ctx, &c.Config.Gemini, c.Metrics, "")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return client, client, nil
	case "openai", "":
		if c.Config.OpenAI.APIKey == "" {
			log.Warn().Msg("OPENAI_API_KEY is not set; language model features disabled")
			return nil, nil, nil
		}
		client, err := openai.NewClient(&c.Config.OpenAI)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		return client, client, nil
	default:
		return nil, nil, fmt.Errorf("invalid LLM_PROVIDER %q (want openai or gemini)", c.Config.LLM.Provider)
	}
}

func (c *Container) newClassifier(interpreter providers.SymptomInterpreter) services.SymptomClassifier {
	fuzzy := services.NewFuzzyClassifier(c.Catalog, c.Config.Classifier.FuzzyThreshold)
	if c.Config.Classifier.Mode != "llm" {
		return fuzzy
	}
	if interpreter == nil {
		log.Warn().Msg("CLASSIFIER_MODE=llm without a language model; using fuzzy matching")
		return fuzzy
	}
	classifier := services.NewLLMClassifier(interpreter, c.Catalog, fuzzy)
	classifier.SetCache(c.Cache)
	return classifier
}
