// Command indexer rebuilds the vector collections from corpus artifacts.
// Each run writes a fresh generation and promotes it atomically; the live
// alias keeps serving the previous generation until the swap.
package main

import (
	"context"
	"flag"
	"os"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kjhmoon/ielts-chat-bot/internal/config"
	"github.com/kjhmoon/ielts-chat-bot/internal/corpus"
	dbRedis "github.com/kjhmoon/ielts-chat-bot/internal/db/redis"
	"github.com/kjhmoon/ielts-chat-bot/internal/domain"
	"github.com/kjhmoon/ielts-chat-bot/internal/index"
	logpkg "github.com/kjhmoon/ielts-chat-bot/internal/logger"
	collectionrepo "github.com/kjhmoon/ielts-chat-bot/internal/repository/collection"
	documentrepo "github.com/kjhmoon/ielts-chat-bot/internal/repository/document"
	openaiProv "github.com/kjhmoon/ielts-chat-bot/internal/transport/openai"
	"github.com/kjhmoon/ielts-chat-bot/internal/version"
)

func main() {
	collectionFlag := flag.String("collection", "",
		"rebuild a single collection (faq, review, timetable); empty rebuilds all")
	dataDir := flag.String("data", "", "corpus directory (overrides config)")
	flag.Parse()

	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	if *collectionFlag != "" && !slices.Contains(domain.Collections(), *collectionFlag) {
		logger.Fatal("Unknown collection", zap.String("collection", *collectionFlag))
	}
	if *dataDir != "" {
		cfg.Corpus.DataDir = *dataDir
	}

	logger.Info("Starting index rebuild",
		zap.String("version", version.Version),
		zap.String("env", env),
		zap.String("data_dir", cfg.Corpus.DataDir),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}

	// Index-time embedder carries the document-task instruction. No cache:
	// corpus texts are embedded once per rebuild.
	var docEmbedder domain.BatchEmbedder = openaiProv.NewEmbedder(&openaiProv.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		TimeoutSec: cfg.Embedding.TimeoutSec,
		Logger:     logger,
	})
	if cfg.Embedding.DocumentInstruction != "" {
		docEmbedder = domain.NewInstructionEmbedder(
			docEmbedder.(domain.Embedder), cfg.Embedding.DocumentInstruction)
	}

	collRepo := collectionrepo.New(store, cfg.Index.VectorDim).
		WithFlat(collectionrepo.FlatConfig{BlockSize: cfg.Index.FlatBlockSize})
	docRepo := documentrepo.New(store, cfg.Index.VectorDim)
	src := corpus.NewFileSource(cfg.Corpus.DataDir)

	builder := index.NewBuilder(src, collRepo, docRepo, docEmbedder, logger)

	start := time.Now()
	var stats []index.Stats
	if *collectionFlag != "" {
		var s index.Stats
		s, err = builder.Rebuild(ctx, *collectionFlag)
		stats = append(stats, s)
	} else {
		stats, err = builder.RebuildAll(ctx)
	}

	for _, s := range stats {
		logger.Info("Collection rebuilt",
			zap.String("collection", s.Collection),
			zap.String("generation", s.Generation),
			zap.Int("indexed", s.Indexed),
			zap.Int("skipped", s.Skipped),
			zap.Int("failed_batches", s.FailedBatches),
			zap.Bool("reused_vectors", s.Reused),
		)
	}

	if err != nil {
		logger.Error("Index rebuild finished with errors",
			zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Index rebuild complete", zap.Duration("elapsed", time.Since(start)))
}
