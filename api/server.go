package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/cosminvladulescu/bcon-site/auth"
	"github.com/cosminvladulescu/bcon-site/config"
	"github.com/cosminvladulescu/bcon-site/database"
	"github.com/cosminvladulescu/bcon-site/errs"
	"github.com/cosminvladulescu/bcon-site/services"
)

type Server struct {
	*http.Server
	startupTime time.Time
	redis       *redis.Client
}

// NewServer wires the router from configuration: JWT_SECRET and TOKEN_TTL for
// tokens, REDIS_URL for shared rate limits, and the notification settings
// read by services.NotifiersFromConfig.
func NewServer(c map[string]string, db database.Database) (Server, error) {
	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port)

	startupTime := time.Now()

	tokens, err := auth.NewTokenManager(
		config.GetString(c, "JWT_SECRET", ""),
		config.GetDuration(c, "TOKEN_TTL", auth.DefaultTokenTTL),
	)
	if err != nil {
		return Server{}, err
	}

	redisClient, err := connectRedis(config.GetString(c, "REDIS_URL", ""))
	if err != nil {
		return Server{}, err
	}

	router := newRouter(db, tokens,
		withConfig(c),
		withNotifier(services.NotifiersFromConfig(c)),
		withRedis(redisClient),
	)

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  seconds(c, "READ_TIMEOUT_SECONDS", 30),
		WriteTimeout: seconds(c, "WRITE_TIMEOUT_SECONDS", 30),
		IdleTimeout:  seconds(c, "IDLE_TIMEOUT_SECONDS", 120),
	}

	return Server{server, startupTime, redisClient}, nil
}

func seconds(c map[string]string, key string, defaultValue int) time.Duration {
	return time.Duration(config.GetInt(c, key, defaultValue)) * time.Second
}

// connectRedis returns nil when url is empty.
func connectRedis(url string) (*redis.Client, error) {
	if url == "" {
		log.Info().Msg("REDIS_URL not set, rate limits are kept in memory")
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errs.NewInvalidConfigError("REDIS_URL", err.Error())
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errs.NewConfigError("REDIS_URL", fmt.Errorf("redis ping: %w", err))
	}

	log.Info().Str("addr", opts.Addr).Msg("Redis connected")
	return client, nil
}

type router struct {
	config   map[string]string
	notifier contactNotifier
	redis    *redis.Client
}

func withConfig(c map[string]string) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withNotifier(n contactNotifier) func(*router) {
	return func(r *router) {
		r.notifier = n
	}
}

func withRedis(client *redis.Client) func(*router) {
	return func(r *router) {
		r.redis = client
	}
}

func newRouter(db database.Database, tokens *auth.TokenManager, opts ...func(*router)) *chi.Mux {
	var router router
	for _, opt := range opts {
		opt(&router)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	// Forwarded headers are client controlled unless a proxy overwrites them.
	if config.GetBool(router.config, "TRUST_PROXY_HEADERS", false) {
		chiRouter.Use(middleware.RealIP)
	}
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(HTTPLoggingMiddleware)

	acceptedOrigins := config.GetStrings(router.config, "ACCEPTED_ORIGINS")
	if len(acceptedOrigins) == 0 {
		acceptedOrigins = []string{"http://localhost:3000"}
	}
	chiRouter.Use(CORSCheckMiddleware(acceptedOrigins))
	chiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   acceptedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	handlers := initializeHandlers(db, tokens, router.notifier,
		config.GetBool(router.config, "ALLOW_ADMIN_REGISTRATION", false))
	authMiddleware := newAuthMiddleware(tokens, db.AdminUserRepo())

	limit := config.GetInt(router.config, "RATE_LIMIT_REQUESTS", 10)
	window := config.GetDuration(router.config, "RATE_LIMIT_WINDOW", time.Minute)
	authLimiter := NewRateLimiter("auth", limit, window, router.redis)
	contactLimiter := NewRateLimiter("contact", limit, window, router.redis)

	responder := NewResponder(log.Logger)
	chiRouter.NotFound(func(w http.ResponseWriter, r *http.Request) {
		responder.WriteError(w, errs.NewNotFound("route"))
	})
	chiRouter.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		responder.WriteError(w, errs.NewApiErr(http.StatusMethodNotAllowed, "method not allowed"))
	})

	chiRouter.Route("/api", func(r chi.Router) {
		setupPublicRoutes(r, handlers, contactLimiter)
		r.Route("/admin", func(r chi.Router) {
			setupAdminRoutes(r, handlers, authMiddleware, authLimiter)
		})
	})

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Dur("uptime", time.Since(s.startupTime)).Msg("Gracefully shutting down...")

	gracefulCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefulCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing redis client")
		}
	}
}
