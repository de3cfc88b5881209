// Package main is the entry point for the coach marketplace API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/fitversal/coachmarket/internal/api"
	"github.com/fitversal/coachmarket/internal/auth"
	"github.com/fitversal/coachmarket/internal/coach"
	"github.com/fitversal/coachmarket/internal/config"
	"github.com/fitversal/coachmarket/internal/db"
	"github.com/fitversal/coachmarket/internal/health"
	"github.com/fitversal/coachmarket/internal/middleware"
	"github.com/fitversal/coachmarket/internal/ranking"
	"github.com/fitversal/coachmarket/internal/search"
	"github.com/fitversal/coachmarket/internal/sponsorship"
	"github.com/fitversal/coachmarket/internal/tracing"
)

const serviceName = "coachmarket-api"

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	help := flag.Bool("help", false, "display help message")
	flag.Parse()

	if *help {
		fmt.Println("Coachmarket API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configPath)
	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	if len(errs) > 0 {
		for _, err := range errs {
			logger.Error("configuration error", "error", err)
		}
		os.Exit(1)
	}

	logger.Info("configuration loaded", "summary", cfg.LogSummary())

	// Tracing
	provider, err := tracing.NewProvider(tracing.Config{
		ServiceName:  serviceName,
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		ExporterType: cfg.TracingExporterType,
		OTLPEndpoint: cfg.TracingOTLPEndpoint,
		SamplingRate: cfg.TracingSamplingRate,
		InsecureMode: cfg.Env != "production",
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	// Database
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	database, err := db.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	repo := coach.NewPostgresRepository(database, logger)

	// Redis is optional: without it search runs uncached.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	// Sponsorship: Stripe-backed when configured, otherwise nothing is sponsored.
	var sponsors sponsorship.Store
	if cfg.StripeAPIKey != "" {
		sponsors = sponsorship.NewStripeStore(cfg.StripeAPIKey, cfg.SponsorshipPriceID, logger)
		logger.Info("sponsorship lookups enabled", "price_id", cfg.SponsorshipPriceID)
	} else {
		sponsors = sponsorship.NewStaticStore()
	}

	// Ranking calibration
	// LoadCalibration falls back to defaults on any error, so a bad
	// calibration file degrades rather than blocking startup.
	weights, err := ranking.LoadCalibration(cfg.RankingCalibrationPath)
	if err != nil {
		logger.Warn("using default ranking weights", "path", cfg.RankingCalibrationPath, "error", err)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	httpMetrics := middleware.NewMetrics()
	if err := httpMetrics.Register(registry); err != nil {
		logger.Error("failed to register HTTP metrics", "error", err)
		os.Exit(1)
	}
	rankingMetrics := ranking.NewMetrics()
	if err := rankingMetrics.Register(registry); err != nil {
		logger.Error("failed to register ranking metrics", "error", err)
		os.Exit(1)
	}

	// Search service
	searchOpts := []search.Option{
		search.WithWeights(weights),
		search.WithMetrics(rankingMetrics),
	}
	if redisClient != nil {
		ttl := time.Duration(cfg.SearchCacheTTLSecs) * time.Second
		searchOpts = append(searchOpts, search.WithCache(search.NewRedisCache(redisClient, ttl, logger)))
	}
	searchSvc := search.NewService(repo, sponsors, logger, searchOpts...)

	// Auth
	jwtSvc := auth.NewJWTServiceWithRotation(cfg.JWTSecret, cfg.JWTPreviousSecret)

	// Handlers
	searchHandlers := api.NewSearchHandlers(searchSvc)
	coachHandlers := api.NewCoachHandlers(repo)
	healthCfg := api.HealthHandlersConfig{
		DBChecker:      health.NewDBChecker(database),
		MetricsEnabled: true,
	}
	if redisClient != nil {
		healthCfg.RedisChecker = health.NewRedisChecker(redisClient)
	}
	healthHandlers := api.NewHealthHandlers(healthCfg)

	// Rate limiting: a global per-IP limit on everything, a tighter per-user
	// limit on search.
	rlStore := middleware.NewInMemoryRateLimitStore()
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			rlStore.Cleanup()
		}
	}()
	globalLimit := middleware.RateLimiter(rlStore, middleware.DefaultGlobalLimit(), middleware.IPKeyFunc())
	searchLimit := middleware.RateLimiter(rlStore, middleware.DefaultSearchLimit(), middleware.UserKeyFunc())

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandlers.Health)
	mux.HandleFunc("/ready", healthHandlers.Ready)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/search/coaches", searchLimit(http.HandlerFunc(searchHandlers.SearchCoaches)))
	mux.HandleFunc("/coaches/", func(w http.ResponseWriter, r *http.Request) {
		if _, rest, ok := coachPath(r.URL.Path); ok && rest == "engagement" {
			coachHandlers.GetCoachEngagement(w, r)
			return
		}
		coachHandlers.GetCoach(w, r)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			ctx := middleware.SetErrorCode(r.Context(), api.ErrCodeNotFound)
			api.WriteError(w, ctx, http.StatusNotFound, api.ErrCodeNotFound, "The requested resource was not found")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"service":"coachmarket-api","version":"0.1.0"}`)); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	// Middleware chain, outermost first:
	// RequestID -> Tracing -> Logging -> HTTPMetrics -> CORS -> Auth -> RateLimiter
	var handler http.Handler = mux
	handler = globalLimit(handler)
	handler = auth.Middleware(jwtSvc)(handler)
	handler = middleware.CORS(middleware.CORSConfig{AllowedOrigins: cfg.CORSAllowedOrigins})(handler)
	handler = middleware.HTTPMetrics(httpMetrics)(handler)
	handler = middleware.Logging(logger)(handler)
	if provider.IsEnabled() {
		handler = middleware.Tracing(serviceName)(handler)
	}
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := provider.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down tracing", "error", err)
	}

	logger.Info("server stopped")
}

// coachPath splits a /coaches/{id}[/sub] URL into its ID and sub-path.
func coachPath(path string) (id, rest string, ok bool) {
	p := path[len("/coaches/"):]
	if p == "" {
		return "", "", false
	}
	for i := 0; i < len(p); i++ {
		if p[i] == '/' {
			return p[:i], p[i+1:], true
		}
	}
	return p, "", true
}
