package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shortlink/internal/config"
	"shortlink/internal/geoip"
	apphttp "shortlink/internal/handler/http"
	"shortlink/internal/ratelimit"
	"shortlink/internal/repository"
	"shortlink/internal/repository/memory"
	"shortlink/internal/repository/postgres"
	redisrepo "shortlink/internal/repository/redis"
	"shortlink/internal/service"
	"shortlink/internal/shortcode"
	"shortlink/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.LogLevel)
	log.Info("starting server",
		"environment", cfg.App.Environment,
		"storage", cfg.App.Storage,
		"port", cfg.Server.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		urlRepo   repository.URLRepository
		clickRepo repository.ClickRepository
	)

	switch cfg.App.Storage {
	case "postgres":
		if err := postgres.Migrate(cfg.Database.MigrateURL()); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		pool, err := postgres.InitDB(ctx, cfg.Database.DSN(),
			cfg.Database.MaxOpenConns, cfg.Database.MinIdleConns, cfg.Database.ConnMaxLifetime)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		urlRepo = postgres.NewURLRepository(pool)
		clickRepo = postgres.NewClickRepository(pool)
		log.Info("connected to postgres", "host", cfg.Database.Host)
	default:
		store := memory.NewStore()
		urlRepo = store
		clickRepo = store
		log.Info("using in-memory storage")
	}

	var rateLimiter *ratelimit.Limiter
	if cfg.App.CacheEnabled || cfg.App.RateLimitEnabled {
		client, err := redisrepo.InitRedis(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		log.Info("connected to redis", "addr", cfg.Redis.Addr())

		if cfg.App.CacheEnabled {
			cache := redisrepo.NewCache(client, cfg.Redis.CacheTTL)
			urlRepo = redisrepo.NewCachedURLRepository(urlRepo, cache)
		}
		if cfg.App.RateLimitEnabled {
			rateLimiter = ratelimit.New(client, cfg.App.RateLimitPerMinute, time.Minute)
		}
	}

	gen := shortcode.NewGenerator(cfg.App.ShortCodeLength)
	registry := service.NewRegistry(urlRepo, gen, cfg.App.ShortCodeMaxAttempts)
	recorder := service.NewClickRecorder(
		clickRepo,
		geoip.StubLocator{},
		geoip.UAClassifier{},
		cfg.App.EnrichTimeout,
		log.Logger,
	)
	stats := service.NewStatsAggregator(urlRepo, clickRepo)
	redirector := service.NewRedirector(registry, recorder, log.Logger)

	handler := apphttp.NewHandler(registry, redirector, stats, recorder, log.Logger, cfg.Server.BaseURL)

	router := chi.NewRouter()
	router.Use(apphttp.Recovery(log.Logger))
	router.Use(apphttp.RequestID)
	router.Use(apphttp.Logging(log.Logger))
	router.Use(apphttp.CORS)
	router.Use(apphttp.Metrics)
	if rateLimiter != nil {
		router.Use(apphttp.RateLimit(rateLimiter, log.Logger))
	}
	router.Handle("/metrics", promhttp.Handler())
	router.Mount("/", handler.Routes())

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Error("server failed", "error", err)
		os.Exit(1)
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
