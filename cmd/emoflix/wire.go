package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/4RCAN3/EmoFlix/internal/config"
	"github.com/4RCAN3/EmoFlix/internal/db"
	dbValkey "github.com/4RCAN3/EmoFlix/internal/db/valkey"
	"github.com/4RCAN3/EmoFlix/internal/domain"
	"github.com/4RCAN3/EmoFlix/internal/metrics"
	"github.com/4RCAN3/EmoFlix/internal/repository/artifact"
	corpusrepo "github.com/4RCAN3/EmoFlix/internal/repository/corpus"
	"github.com/4RCAN3/EmoFlix/internal/repository/embcache"
	"github.com/4RCAN3/EmoFlix/internal/repository/metacache"
	openaiEmb "github.com/4RCAN3/EmoFlix/internal/transport/openai"
	"github.com/4RCAN3/EmoFlix/internal/transport/tmdb"
	catalogsvc "github.com/4RCAN3/EmoFlix/internal/usecase/catalog"
	embeddinguc "github.com/4RCAN3/EmoFlix/internal/usecase/embedding"
	healthuc "github.com/4RCAN3/EmoFlix/internal/usecase/health"
	recommenduc "github.com/4RCAN3/EmoFlix/internal/usecase/recommend"
)

// app is the composition root shared by serve, embed and recommend.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	store     db.Store // nil when the cache is disabled
	provider  *openaiEmb.Embedder
	embedder  domain.Embedder
	metadata  *tmdb.Client
	loader    *catalogsvc.Loader
	catalogs  *catalogsvc.Holder
	recommend *recommenduc.Service
	health    *healthuc.Service

	fatal     func(msg string, fields ...zap.Field)
	closeOnce sync.Once
}

// newApp connects the optional cache and assembles every service. The catalog
// is not loaded; call loadCatalog before serving requests.
func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	metrics.Register()

	a := &app{cfg: cfg, logger: logger, catalogs: catalogsvc.NewHolder(nil), fatal: logger.Fatal}

	if cfg.Cache.Enabled {
		store, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("create cache store: %w", err)
		}
		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			store.Close()
			return nil, fmt.Errorf("cache not ready: %w", err)
		}
		a.store = store
		logger.Info("Connected to cache", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	a.provider = openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Timeout:    cfg.Embedding.EmbeddingTimeout(),
		Logger:     logger,
	})
	a.embedder = buildEmbedder(cfg, a.provider, a.store, logger)

	a.metadata = tmdb.New(&tmdb.Config{
		APIKey:    cfg.Metadata.APIKey,
		BaseURL:   cfg.Metadata.BaseURL,
		Language:  cfg.Metadata.Language,
		CastLimit: cfg.Metadata.CastLimit,
		Timeout:   cfg.Metadata.LookupTimeout(),
		Logger:    logger,
	})
	var meta recommenduc.MetadataService = a.metadata
	if a.store != nil {
		meta = metacache.New(a.metadata, a.store, cfg.Cache.KeyPrefix+"meta:",
			time.Duration(cfg.Cache.MetadataTTLSec)*time.Second, logger)
	}

	a.loader = catalogsvc.NewLoader(
		corpusrepo.File{Path: cfg.Corpus.Path, Logger: logger},
		artifact.File{Path: cfg.Store.Path},
		a.embedder, cfg.Store.BuildBatchSize, logger,
	)

	enricher := recommenduc.NewEnricher(
		recommenduc.NewResolver(meta, cfg.Metadata.LookupTimeout()),
		cfg.Metadata.Concurrency, cfg.Metadata.ImageBaseURL,
	)
	a.recommend = recommenduc.New(
		a.catalogs,
		recommenduc.NewRanker(a.embedder),
		enricher,
		recommenduc.NewSampler(enricher, nil),
		recommenduc.Config{
			DefaultTopK:      cfg.Recommend.DefaultTopK,
			MaxTopK:          cfg.Recommend.MaxTopK,
			OverselectFactor: cfg.Recommend.OverselectFactor,
			HomepageCount:    cfg.Recommend.HomepageCount,
		},
	)

	// Pass nil interface (not typed nil pointer!) when the cache is disabled.
	var cachePinger healthuc.Pinger
	if a.store != nil {
		cachePinger = a.store
	}
	a.health = healthuc.New(a.catalogs, cachePinger, a.provider, a.metadata)

	return a, nil
}

// loadCatalog loads (or builds on first run) the catalog and installs it.
// force rebuilds the embeddings even when an artifact exists.
func (a *app) loadCatalog(ctx context.Context, force bool) error {
	load := a.loader.LoadOrBuild
	if force {
		load = a.loader.Rebuild
	}
	c, err := load(ctx)
	if err != nil {
		return err
	}
	a.catalogs.Swap(c)
	a.logger.Info("Catalog installed", zap.Int("items", c.Len()))
	return nil
}

// startCatalog installs the first catalog. A corpus mismatch is fatal; the
// cache client is closed beforehand since Fatal skips deferred calls.
func (a *app) startCatalog(ctx context.Context) error {
	err := a.loadCatalog(ctx, false)
	if errors.Is(err, domain.ErrCorpusMismatch) {
		a.Close()
		a.fatal("Embedding artifact does not match the corpus; run `emoflix embed --force`", zap.Error(err))
	}
	return err
}

// Close releases the cache client. Safe to call more than once.
func (a *app) Close() {
	a.closeOnce.Do(func() {
		if a.store != nil {
			a.store.Close()
		}
	})
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented.
func buildEmbedder(
	cfg config.Config, base domain.Embedder, store db.Store, logger *zap.Logger,
) domain.Embedder {
	embedder := base
	if store != nil {
		prefix := fmt.Sprintf("%semb:%s:%d:", cfg.Cache.KeyPrefix, cfg.Embedding.Model, cfg.Embedding.Dimensions)
		embedder = embcache.New(base, store, prefix,
			time.Duration(cfg.Cache.EmbeddingTTLSec)*time.Second, logger)
	}

	return embeddinguc.NewInstrumentedEmbedder(
		embedder, cfg.Embedding.Provider, cfg.Embedding.Model,
		cfg.Embedding.MaxBatchSize, logger,
	)
}
