package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soulkill3r/pythia/internal/classifier"
	"github.com/soulkill3r/pythia/internal/config"
	"github.com/soulkill3r/pythia/internal/forwarder"
	"github.com/soulkill3r/pythia/internal/handlers"
	"github.com/soulkill3r/pythia/internal/hub"
	"github.com/soulkill3r/pythia/internal/llm"
	"github.com/soulkill3r/pythia/internal/logging"
	"github.com/soulkill3r/pythia/internal/pipeline"
	"github.com/soulkill3r/pythia/internal/ratelimit"
	"github.com/soulkill3r/pythia/internal/scheduler"
	"github.com/soulkill3r/pythia/internal/server"
	"github.com/soulkill3r/pythia/internal/source"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	sourcesPath := flag.String("sources", "sources.yaml", "path to sources file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(slog.String("service", "pythia"))
	logging.SetDefault(logger)

	slog.Info("Starting pythia",
		slog.Int("port", cfg.Server.Port),
		slog.String("model", cfg.LLM.Model),
		slog.String("language", cfg.Pipeline.Language),
		slog.Float64("criticality_threshold", cfg.Pipeline.CriticalityThreshold),
	)

	sourceConfigs, err := config.LoadSources(*sourcesPath)
	if err != nil {
		log.Fatalf("Failed to load sources: %v", err)
	}

	var pullSources []source.Source
	var webhookConfigs []config.SourceConfig
	for _, sc := range sourceConfigs {
		if sc.Type == "webhook" {
			webhookConfigs = append(webhookConfigs, sc)
			continue
		}
		src, err := source.New(sc)
		if err != nil {
			log.Fatalf("Invalid source configuration: %v", err)
		}
		pullSources = append(pullSources, src)
	}

	eventHub := hub.New(logger.Logger)

	llmClient := llm.New(cfg.LLM.URL, cfg.LLM.Timeout)
	eventClassifier := classifier.New(llmClient, classifier.Options{
		Model:     cfg.LLM.Model,
		Language:  cfg.Pipeline.Language,
		MaxTokens: cfg.LLM.MaxTokens,
		NumCtx:    cfg.LLM.NumCtx,
	}, logger.Logger)

	var fwd pipeline.Forwarder
	if cfg.NATS.Enabled {
		natsForwarder, err := forwarder.Connect(cfg.NATS.URL, cfg.NATS.Subject, "pythia")
		if err != nil {
			slog.Warn("NATS unavailable, event forwarding disabled", logging.Error(err))
		} else {
			fwd = natsForwarder
			defer natsForwarder.Close()
			slog.Info("Event forwarding enabled",
				slog.String("url", cfg.NATS.URL),
				slog.String("subject", cfg.NATS.Subject),
			)
		}
	}

	eventPipeline := pipeline.New(eventClassifier, eventHub, fwd, pipeline.Config{
		CriticalityThreshold: cfg.Pipeline.CriticalityThreshold,
		ClassifyRetries:      cfg.Pipeline.ClassifyRetries,
	}, logger.Logger)

	var limiter ratelimit.RateLimiter = &ratelimit.NoOpRateLimiter{}
	if cfg.Redis.Enabled && cfg.RateLimit.Enabled {
		redisLimiter, err := ratelimit.NewRedisRateLimiter(
			cfg.Redis.URL,
			cfg.RateLimit.Requests,
			cfg.RateLimit.Window,
		)
		if err != nil {
			slog.Warn("Redis unavailable, rate limiting disabled", logging.Error(err))
		} else {
			limiter = redisLimiter
			slog.Info("Rate limiting enabled",
				slog.Int("requests", cfg.RateLimit.Requests),
				slog.Duration("window", cfg.RateLimit.Window),
			)
		}
	}
	defer limiter.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(eventPipeline, pullSources, logger.Logger)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	handlerSet := handlers.New(eventHub, eventPipeline, limiter, logger.Logger)
	router := server.NewRouter(handlerSet, webhookConfigs)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", slog.String("addr", httpServer.Addr))
		serverErr <- httpServer.ListenAndServe()
	}()

	slog.Info("pythia started",
		slog.Int("pull_sources", len(pullSources)),
		slog.Int("webhooks", len(webhookConfigs)),
	)

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", logging.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", logging.Error(err))
	}

	if err := sched.Stop(); err != nil {
		slog.Error("Scheduler stop failed", logging.Error(err))
	}

	slog.Info("pythia stopped")
}
