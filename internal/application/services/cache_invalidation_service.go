package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/providers"
	"github.com/zatekoja/specialistfinder/backend/internal/infrastructure/observability"
)

// CacheInvalidationService retires cached indexed-search responses whenever
// a completed search adds hospitals to the index.
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	return &CacheInvalidationService{cache: cache, eventBus: eventBus}
}

// Start subscribes to search events. It returns once the subscription is in
// place; events are handled in the background until Stop.
func (s *CacheInvalidationService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	eventChan, err := s.eventBus.Subscribe(ctx, providers.EventChannelSearches)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to search events: %w", err)
	}

	s.cancel = cancel
	s.done = make(chan struct{})
	go s.processEvents(ctx, eventChan, s.done)
	observability.LoggerFromContext(ctx).Info().Msg("Cache invalidation service started")
	return nil
}

// Stop ends the subscription and waits for the event loop to exit.
func (s *CacheInvalidationService) Stop() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

func (s *CacheInvalidationService) processEvents(ctx context.Context, eventChan <-chan *entities.SearchEvent, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil || event.Type != entities.SearchEventTypeSearchCompleted {
				continue
			}
			s.handleEvent(event)
		}
	}
}

// handleEvent bumps the indexed-search generation. Searches that found
// nothing leave the index untouched and are skipped.
func (s *CacheInvalidationService) handleEvent(event *entities.SearchEvent) {
	if count, ok := event.Payload["result_count"]; ok && isZero(count) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger := observability.LoggerFromContext(ctx)
	if err := s.cache.Set(ctx, providers.IndexedSearchGenerationKey, []byte(event.ID), 0); err != nil {
		logger.Warn().Err(err).Str("search_id", event.SearchID).Msg("Failed to invalidate indexed search cache")
		return
	}
	logger.Debug().Str("search_id", event.SearchID).Msg("Invalidated indexed search cache")
}

// isZero handles counts published in-process (int) and decoded from Redis (float64).
func isZero(v interface{}) bool {
	switch n := v.(type) {
	case int:
		return n == 0
	case float64:
		return n == 0
	default:
		return false
	}
}
