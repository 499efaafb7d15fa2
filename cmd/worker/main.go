package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/talentpool/resume-indexer/internal/cache"
	"github.com/talentpool/resume-indexer/internal/candidate"
	"github.com/talentpool/resume-indexer/internal/config"
	"github.com/talentpool/resume-indexer/internal/database"
	"github.com/talentpool/resume-indexer/internal/extraction"
	"github.com/talentpool/resume-indexer/internal/indexer"
	"github.com/talentpool/resume-indexer/internal/queue"
	"github.com/talentpool/resume-indexer/internal/queue/workers"
	"github.com/talentpool/resume-indexer/internal/runs"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	store := candidate.NewPostgresStore(db)
	extractor, err := extraction.New(cfg.Extraction)
	if err != nil {
		slog.Error("failed to build extractor", "error", err)
		os.Exit(1)
	}
	ix := indexer.New(store, extractor)
	orch := indexer.NewOrchestrator(store, ix, cfg.Indexing.BatchSize,
		indexer.WithEligibility(indexer.NeedsIndexing(cfg.Indexing.StaleAfter)),
	)
	runsSvc := runs.NewService(db)
	cacheSvc := cache.NewCache(rdb)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: cfg.Indexing.BatchSize,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	registry := queue.NewHandlersRegistry()

	resumeWorker := workers.NewResumeWorker(store, ix, orch, runsSvc, cacheSvc, cfg.Indexing.LockTTL)
	registry.Register(queue.TypeResumeIndex, asynq.HandlerFunc(resumeWorker.ProcessIndexTask))
	registry.Register(queue.TypeResumeReindex, asynq.HandlerFunc(resumeWorker.ProcessReindexTask))

	slog.Info("starting worker", "concurrency", cfg.Indexing.BatchSize)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
