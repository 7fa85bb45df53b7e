package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"tftcrawler/ingestion/internal/cache"
	"tftcrawler/ingestion/internal/client"
	"tftcrawler/ingestion/internal/collector"
	"tftcrawler/ingestion/internal/config"
	"tftcrawler/ingestion/internal/metrics"
	"tftcrawler/ingestion/internal/repository"
	"tftcrawler/ingestion/internal/scheduler"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	setupLogger()

	log.Info().Msg("Starting TFT match crawler")

	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("platform", cfg.Platform).
		Str("region", cfg.Region()).
		Strs("leagues", cfg.Leagues).
		Msg("Configuration loaded")

	// An operator interrupt cancels the context; every commit boundary is
	// a safe stopping point, so already-stored data survives.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, finishing current commit and stopping...")
		cancel()
	}()

	riotClient := client.NewClient(cfg)
	log.Info().Msg("Riot API client initialized")

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database schema")
	}
	log.Info().Msg("Database ready")

	// Redis is a fast-path only; the crawler runs fine without it.
	var idCache collector.IDCache
	matchCache, err := cache.NewMatchIDCache(cache.Config{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
	} else {
		defer matchCache.Close()
		if known, err := db.GetKnownMatchIDs(ctx); err == nil {
			matchCache.Warm(ctx, known)
		}
		idCache = matchCache
	}

	if cfg.EnableMetrics {
		go startMetricsServer(cfg.MetricsPort)
		go trackUptime(ctx)
	}

	col := collector.New(cfg, db, riotClient, idCache)

	// One-shot run at startup; the cron schedule, when enabled, repeats it.
	if err := col.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info().Msg("Interrupted, committed data preserved")
			return
		}
		log.Fatal().Err(err).Msg("Collection run failed")
	}

	if !cfg.EnableScheduler {
		return
	}

	sched := scheduler.NewScheduler(cfg, col)
	if err := sched.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	<-ctx.Done()

	log.Info().Msg("Shutting down scheduler...")
	sched.Stop()
	log.Info().Msg("Crawler shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port int) {
	http.Handle("/metrics", promhttp.Handler())

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	addr := fmt.Sprintf(":%d", port)
	log.Info().Int("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}

func trackUptime(ctx context.Context) {
	startTime := time.Now()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			metrics.SystemUptime.Set(time.Since(startTime).Seconds())
		case <-ctx.Done():
			return
		}
	}
}
