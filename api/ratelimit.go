package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cosminvladulescu/bcon-site/errs"
)

// limiterStore counts hits per key inside a window.
type limiterStore interface {
	allow(ctx context.Context, key string) (bool, error)
}

// RateLimiter limits requests per client IP on the routes it wraps. Counters
// live in Redis when a client is given, otherwise in process memory.
type RateLimiter struct {
	name      string
	store     limiterStore
	logger    zerolog.Logger
	responder Responder
	stop      func()
}

func NewRateLimiter(name string, limit int, window time.Duration, client *redis.Client) *RateLimiter {
	logger := log.With().Str("handlerName", "rateLimiter").Str("limiter", name).Logger()
	rl := &RateLimiter{
		name:      name,
		logger:    logger,
		responder: NewResponder(logger),
		stop:      func() {},
	}

	if client != nil {
		rl.store = &redisStore{client: client, limit: int64(limit), window: window}
	} else {
		mem := newMemoryStore(limit, window)
		rl.store = mem
		rl.stop = mem.Stop
	}
	return rl
}

// Stop releases the background cleanup of the in-memory store.
func (rl *RateLimiter) Stop() {
	rl.stop()
}

// Middleware rejects requests over the limit with 429. A failing store lets the
// request through.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := fmt.Sprintf("ratelimit:%s:%s", rl.name, clientIP(r))
		allowed, err := rl.store.allow(r.Context(), key)
		if err != nil {
			rl.logger.Warn().Err(err).Msg("rate limit store unavailable, allowing request")
		} else if !allowed {
			rl.responder.WriteError(w, errs.NewRateLimitError())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr. RemoteAddr only reflects
// X-Forwarded-For when TRUST_PROXY_HEADERS enables chi's RealIP middleware.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// redisStore is a fixed window counter shared by every instance of the server.
type redisStore struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func (s *redisStore) allow(ctx context.Context, key string) (bool, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("increment %s: %w", key, err)
	}

	// Set expiry on first hit
	if count == 1 {
		if err := s.client.Expire(ctx, key, s.window).Err(); err != nil {
			return false, fmt.Errorf("expire %s: %w", key, err)
		}
	}

	return count <= s.limit, nil
}

// limiterEntry tracks request timestamps for a single client.
type limiterEntry struct {
	mu         sync.Mutex
	timestamps []time.Time
}

// memoryStore is a per-process sliding window.
type memoryStore struct {
	mu      sync.RWMutex
	clients map[string]*limiterEntry
	limit   int
	window  time.Duration
	now     func() time.Time
	stopCh  chan struct{}
	once    sync.Once
}

func newMemoryStore(limit int, window time.Duration) *memoryStore {
	s := &memoryStore{
		clients: make(map[string]*limiterEntry),
		limit:   limit,
		window:  window,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.cleanup()
			case <-s.stopCh:
				return
			}
		}
	}()

	return s
}

func (s *memoryStore) Stop() {
	s.once.Do(func() { close(s.stopCh) })
}

func (s *memoryStore) allow(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	entry, exists := s.clients[key]
	s.mu.RUnlock()

	if !exists {
		s.mu.Lock()
		entry, exists = s.clients[key]
		if !exists {
			entry = &limiterEntry{}
			s.clients[key] = entry
		}
		s.mu.Unlock()
	}

	now := s.now()
	cutoff := now.Add(-s.window)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	valid := entry.timestamps[:0]
	for _, ts := range entry.timestamps {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}
	entry.timestamps = valid

	if len(entry.timestamps) >= s.limit {
		return false, nil
	}

	entry.timestamps = append(entry.timestamps, now)
	return true, nil
}

// cleanup removes entries with no recent activity.
func (s *memoryStore) cleanup() {
	cutoff := s.now().Add(-s.window)

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.clients {
		entry.mu.Lock()
		hasRecent := false
		for _, ts := range entry.timestamps {
			if ts.After(cutoff) {
				hasRecent = true
				break
			}
		}
		entry.mu.Unlock()

		if !hasRecent {
			delete(s.clients, key)
		}
	}
}
