package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSlidingWindow(t *testing.T) {
	s := newMemoryStore(2, time.Minute)
	defer s.Stop()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := s.allow(ctx, "ip-1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := s.allow(ctx, "ip-1")
	assert.False(t, ok, "third hit inside the window")

	ok, _ = s.allow(ctx, "ip-2")
	assert.True(t, ok, "other clients are counted separately")

	now = now.Add(61 * time.Second)
	ok, _ = s.allow(ctx, "ip-1")
	assert.True(t, ok, "window has slid past the first hits")

	now = now.Add(10 * time.Minute)
	s.cleanup()
	s.mu.RLock()
	assert.Empty(t, s.clients)
	s.mu.RUnlock()
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter("test", 1, time.Minute, nil)
	defer rl.Stop()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, send("10.0.0.1:1111"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:2222"), "port is ignored")
	assert.Equal(t, http.StatusNoContent, send("10.0.0.2:1111"))
}

type failingStore struct{}

func (failingStore) allow(context.Context, string) (bool, error) {
	return false, assert.AnError
}

func TestRateLimiterFailsOpen(t *testing.T) {
	rl := NewRateLimiter("test", 1, time.Minute, nil)
	rl.Stop()
	rl.store = failingStore{}

	rec := httptest.NewRecorder()
	rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

// TestRedisStore runs against REDIS_TEST_URL and is skipped without it.
func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: redis not reachable: %v", err)
	}

	key := "ratelimit:test:" + uuid.NewString()
	t.Cleanup(func() {
		client.Del(ctx, key)
		client.Close()
	})

	s := &redisStore{client: client, limit: 2, window: time.Minute}
	for i := 0; i < 2; i++ {
		ok, err := s.allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := s.allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	ttl, err := client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
