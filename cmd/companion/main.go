// Package main runs the conversation analytics worker.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/easeaico/companion-house/internal/analytics"
	"github.com/easeaico/companion-house/internal/config"
	"github.com/easeaico/companion-house/internal/dynamics"
	"github.com/easeaico/companion-house/internal/memory"
	"github.com/easeaico/companion-house/internal/models"
	"github.com/easeaico/companion-house/internal/storage"
	"github.com/easeaico/companion-house/internal/utils"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("companion worker failed: %v", err)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	store, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	memoryLLM, err := models.New(ctx, cfg.LLMProvider, cfg.MemoryModel, cfg.APIKey())
	if err != nil {
		return err
	}
	summaryLLM, err := models.New(ctx, cfg.LLMProvider, cfg.ChatModel, cfg.APIKey())
	if err != nil {
		return err
	}

	// Memory and relationship writes share one lock per character.
	locks := utils.NewKeyedMutex()
	memories := memory.NewService(store.Characters, models.NewGenerator(memoryLLM, 0.3, 1024), cfg.MemoryCapacity, cfg.MemoryContextLimit).WithLocks(locks)
	if cfg.EmbeddingsEnabled() {
		embedder, err := memory.NewGenAIEmbedder(ctx, cfg.GoogleAPIKey, cfg.EmbeddingModel)
		if err != nil {
			return err
		}
		memories = memories.WithVectorIndex(embedder, store.MemoryIndex, cfg.SimilarityThreshold)
		slog.Info("vector memory index enabled", "model", cfg.EmbeddingModel)
	}

	summarizer, err := analytics.NewLLMSummarizer(models.NewGenerator(summaryLLM, 0.5, 1024))
	if err != nil {
		return err
	}

	processor := analytics.NewConversationProcessor(
		store.Sessions,
		store.Characters,
		store.Summaries,
		summarizer,
		memories,
		dynamics.NewEngine(store.Characters).WithLocks(locks),
	)

	var processed analytics.ProcessedSet = analytics.NewMemoryProcessedSet()
	if cfg.RedisURL != "" {
		redisSet, err := analytics.NewRedisProcessedSet(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := redisSet.Close(); closeErr != nil {
				slog.Warn("failed to close redis client", "error", closeErr.Error())
			}
		}()
		processed = redisSet
	}

	scheduler := analytics.NewScheduler(processor, store.Sessions, processed, analytics.SchedulerConfig{
		Timeout:      cfg.AnalyticsTimeout,
		MinMessages:  cfg.AnalyticsMinMessages,
		PollInterval: cfg.AnalyticsPollInterval,
	})

	slog.Info("companion worker started",
		"provider", cfg.LLMProvider,
		"timeout", cfg.AnalyticsTimeout.String(),
		"poll_interval", cfg.AnalyticsPollInterval.String(),
	)
	if err := scheduler.Run(ctx); err != nil {
		return err
	}
	slog.Info("companion worker stopped")
	return nil
}
