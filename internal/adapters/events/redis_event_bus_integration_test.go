//go:build integration

package events

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/providers"
	"github.com/zatekoja/specialistfinder/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/specialistfinder/backend/pkg/config"
)

func TestRedisEventBusFanoutIntegration(t *testing.T) {
	host := os.Getenv("TEST_REDIS_HOST")
	if host == "" {
		t.Skip("Skipping integration test: TEST_REDIS_HOST not set")
	}
	port, _ := strconv.Atoi(os.Getenv("TEST_REDIS_PORT"))
	if port == 0 {
		port = 6379
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := redis.NewClient(ctx, &config.RedisConfig{Host: host, Port: port})
	require.NoError(t, err)
	defer client.Close()

	bus := NewRedisEventBus(client)
	defer bus.Close()

	sub1, err := bus.Subscribe(ctx, providers.EventChannelSearches)
	require.NoError(t, err)
	sub2, err := bus.Subscribe(ctx, providers.EventChannelSearches)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	event := entities.NewSearchEvent(entities.SearchEventTypeSearchCompleted, "search-redis-1", map[string]interface{}{"kind": "city"})
	require.NoError(t, bus.Publish(ctx, providers.EventChannelSearches, event))

	for _, sub := range []<-chan *entities.SearchEvent{sub1, sub2} {
		select {
		case got := <-sub:
			assert.Equal(t, event.ID, got.ID)
			assert.Equal(t, entities.SearchEventTypeSearchCompleted, got.Type)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}
