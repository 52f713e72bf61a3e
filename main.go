package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sjsage522/promowatch/config"
	"sjsage522/promowatch/internal/promo"
	"sjsage522/promowatch/internal/scraper"
	"sjsage522/promowatch/logger"
	"sjsage522/promowatch/services/admin"
	"sjsage522/promowatch/services/cache"
	"sjsage522/promowatch/services/notifier"
	"sjsage522/promowatch/services/store"
	"sjsage522/promowatch/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Dur("check_interval", cfg.CheckInterval).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	cacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
	logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)

	stateStore := store.NewRedisStore(cfg.RedisAddr, cfg.RedisDB, cfg.RedisKeyPrefix, cfg.HistoryMaxLength)
	defer stateStore.Close()
	logger.Info("Connected to Redis at %s (DB: %d, prefix: %s)", cfg.RedisAddr, cfg.RedisDB, cfg.RedisKeyPrefix)

	var notif notifier.Notifier
	if cfg.SlackWebhookURL != "" {
		notif = notifier.NewSlackNotifier(cfg.SlackWebhookURL)
	} else {
		log.Warn().Msg("No Slack webhook configured, changes will only be logged")
		notif = notifier.NewLogNotifier()
	}

	// Build the change-detection engine
	norm := promo.NewNormalizer(promo.DefaultConfig())
	detector := promo.NewDetector(norm)
	filter := promo.NewFilter(norm, promo.Thresholds{
		TextRatio:         cfg.TextSimilarityRatio,
		PriceTolerance:    cfg.PriceTolerance,
		DateToleranceDays: cfg.DateToleranceDays,
	})

	// Create scrapers
	scrapers := scraper.CreateScrapers(cfg, cacheService, norm)
	if len(scrapers) == 0 {
		log.Fatal().Msg("No scrapers were created")
	}

	log.Info().
		Int("scraper_count", len(scrapers)).
		Msg("Created scrapers")

	// Create the worker
	w := worker.NewWorker(
		ctx,
		scrapers,
		stateStore,
		notif,
		detector,
		filter,
		cfg.CheckInterval,
	)

	// Start the admin API
	targets := make([]string, len(scrapers))
	for i, s := range scrapers {
		targets[i] = s.GetName()
	}
	adminServer := admin.NewServer(stateStore, targets, cfg.AdminToken, w)
	httpServer := &http.Server{
		Addr:    cfg.AdminAddr,
		Handler: adminServer.Router(),
	}
	go func() {
		log.Info().Str("addr", cfg.AdminAddr).Msg("Starting admin API")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Admin API exited with error")
		}
	}()

	// Start worker in a goroutine
	workerDone := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting promotion watcher")
		workerDone <- w.Start()
	}()

	// Wait for shutdown signal or worker error
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		<-workerDone
	case err := <-workerDone:
		if err != nil {
			log.Error().Err(err).Msg("Worker exited with error")
		} else {
			log.Info().Msg("Worker exited normally")
		}
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)

	log.Info().Msg("Shutting down gracefully...")
}
