// Package main is the entry point for the API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/onnwee/featrank/internal/api"
	"github.com/onnwee/featrank/internal/battle"
	"github.com/onnwee/featrank/internal/config"
	"github.com/onnwee/featrank/internal/health"
	"github.com/onnwee/featrank/internal/middleware"
)

func main() {
	configFile := flag.String("config", "", "path to optional YAML config file")
	help := flag.Bool("help", false, "display help message")
	flag.Parse()

	if *help {
		fmt.Println("Featrank API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configFile)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		}
		os.Exit(1)
	}

	// Initialize logger
	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	logger.Info("configuration loaded", "config", cfg.LogSummary())

	// Pick the battle store backend. Redis keeps battles shareable across
	// restarts and replicas; without it everything lives in process memory.
	var repo battle.Repository
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		redisClient = redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis not reachable at startup, continuing anyway", "error", err)
		}
		cancel()

		repo = battle.NewRedisRepository(redisClient)
		logger.Info("using redis battle store")
	} else {
		repo = battle.NewInMemoryRepository()
		logger.Info("using in-memory battle store, battles will not survive restarts")
	}

	// Set up Prometheus metrics
	registry := prometheus.NewRegistry()
	httpMetrics := middleware.NewMetrics()
	if err := httpMetrics.Register(registry); err != nil {
		logger.Error("failed to register http metrics", "error", err)
		os.Exit(1)
	}
	battleMetrics := battle.NewMetrics()
	if err := battleMetrics.Register(registry); err != nil {
		logger.Error("failed to register battle metrics", "error", err)
		os.Exit(1)
	}

	healthConfig := api.HealthHandlersConfig{}
	if redisClient != nil {
		healthConfig.RedisChecker = health.NewRedisChecker(redisClient)
	}

	// Apply middleware: RequestID -> Logging -> HTTPMetrics
	router := newRouter(repo, battleMetrics, healthConfig, registry)
	handler := middleware.RequestID(middleware.Logging(logger)(middleware.HTTPMetrics(httpMetrics)(router)))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("failed to close redis client", "error", err)
		}
	}

	logger.Info("server stopped")
}

// newRouter wires all HTTP routes onto a mux.
func newRouter(repo battle.Repository, battleMetrics *battle.Metrics, healthConfig api.HealthHandlersConfig, registry *prometheus.Registry) http.Handler {
	battleHandlers := api.NewBattleHandlers(repo, battleMetrics)
	healthHandlers := api.NewHealthHandlers(healthConfig)

	mux := http.NewServeMux()

	// Battle endpoints
	mux.HandleFunc("POST /battles", battleHandlers.CreateBattle)
	mux.HandleFunc("GET /battles", battleHandlers.GetBattleByQuery)
	mux.HandleFunc("GET /battles/{id}", battleHandlers.GetBattle)
	mux.HandleFunc("PUT /battles/{id}", battleHandlers.UpdateBattle)
	mux.HandleFunc("DELETE /battles/{id}", battleHandlers.DeleteBattle)
	mux.HandleFunc("POST /battles/{id}/vote", battleHandlers.Vote)
	mux.HandleFunc("POST /battles/{id}/visitor", battleHandlers.Visitor)
	mux.HandleFunc("GET /battles/{id}/results", battleHandlers.Results)

	// Probes and metrics
	mux.HandleFunc("GET /health", healthHandlers.Health)
	mux.HandleFunc("GET /ready", healthHandlers.Ready)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Root endpoint; everything unmatched returns a structured 404
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			ctx := middleware.SetErrorCode(r.Context(), api.ErrCodeNotFound)
			api.WriteError(w, ctx, http.StatusNotFound, api.ErrCodeNotFound, "The requested resource was not found")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"service":"featrank-api","version":"0.1.0"}`)); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	return mux
}
