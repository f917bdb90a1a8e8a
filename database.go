// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hydrive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/hydrive/ai"
	"github.com/poiesic/hydrive/ai/openai"
	"github.com/poiesic/hydrive/core"
	"github.com/poiesic/hydrive/ingestion"
	"github.com/poiesic/hydrive/precompute"
	"github.com/poiesic/hydrive/search"
	"github.com/poiesic/hydrive/storage"
	"github.com/poiesic/hydrive/storage/badger"
)

// Database ties persisted manuals and embedding caches to the ingestion,
// cache-building and search components that use them.
type Database struct {
	backend       *badger.Backend
	docRepo       storage.DocumentRepository
	embeddingRepo storage.EmbeddingRepository
	provider      ai.AIProvider
	pool          *ants.Pool
	searchConfig  search.Config
	monitor       search.SearchMonitor
	logger        *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig     *ai.Config
	provider     ai.AIProvider
	searchConfig *search.Config
	monitor      search.SearchMonitor
	logger       *slog.Logger
	inMemory     bool
}

// WithAIConfig sets the embedding and extraction endpoints.
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider uses an existing AI provider instead of building one from the
// AI config. The database takes ownership and closes it.
func WithProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithSearchConfig sets the scoring configuration for every engine.
func WithSearchConfig(cfg search.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.searchConfig = &cfg
	}
}

// WithMonitor installs a search monitor on every engine.
func WithMonitor(monitor search.SearchMonitor) DatabaseOption {
	return func(o *databaseOptions) {
		o.monitor = monitor
	}
}

func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// InMemory keeps all data in memory; filePath is ignored.
func InMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	searchConfig := search.DefaultConfig()
	if options.searchConfig != nil {
		searchConfig = *options.searchConfig
	}
	if err := searchConfig.Validate(); err != nil {
		return nil, err
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	docRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	embeddingRepo, err := badger.NewEmbeddingRepository(backend)
	if err != nil {
		docRepo.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			embeddingRepo.Close()
			docRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	poolSize := searchConfig.PoolSize
	if poolSize <= 0 {
		poolSize = runtime.NumCPU()
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		provider.Close()
		embeddingRepo.Close()
		docRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:       backend,
		docRepo:       docRepo,
		embeddingRepo: embeddingRepo,
		provider:      provider,
		pool:          pool,
		searchConfig:  searchConfig,
		monitor:       options.monitor,
		logger:        options.logger.With("component", "database"),
	}, nil
}

// Close releases the scoring pool, the AI provider and the storage backend.
// Engines created by the database must not be used afterwards.
func (db *Database) Close() error {
	db.pool.Release()

	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.embeddingRepo.Close(); err != nil {
		db.logger.Error("error closing embedding repository", "err", err)
		return err
	}
	if err := db.docRepo.Close(); err != nil {
		db.logger.Error("error closing document repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) DocumentRepository() storage.DocumentRepository {
	return db.docRepo
}

func (db *Database) EmbeddingRepository() storage.EmbeddingRepository {
	return db.embeddingRepo
}

// NewIngestionPipeline creates a pipeline. With extractKeywords set, sections
// without keywords are enriched by the provider's keyword extractor.
func (db *Database) NewIngestionPipeline(extractKeywords bool, opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	all := []ingestion.Option{ingestion.WithLogger(db.logger)}
	if extractKeywords {
		all = append(all, ingestion.WithExtractor(db.provider.KeywordExtractor()))
	}
	return ingestion.NewPipeline(append(all, opts...)...)
}

// ImportOptions controls ImportDocument.
type ImportOptions struct {
	ExtractKeywords bool
}

// ImportDocument ingests the manual at path and stores it, replacing any
// manual with the same ID. A stored embedding set that no longer matches the
// manual's sections is deleted.
func (db *Database) ImportDocument(ctx context.Context, path string, opts ImportOptions) (*core.Document, error) {
	pipeline, err := db.NewIngestionPipeline(opts.ExtractKeywords)
	if err != nil {
		return nil, err
	}
	defer pipeline.Release()

	doc, err := pipeline.IngestFile(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := db.docRepo.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("storing %s: %w", doc.ID, err)
	}
	if err := db.dropStaleCache(ctx, doc); err != nil {
		return nil, err
	}

	db.logger.Info("manual imported",
		"document", doc.ID, "vehicle", doc.Vehicle, "sections", doc.SectionCount())
	return doc, nil
}

func (db *Database) dropStaleCache(ctx context.Context, doc *core.Document) error {
	set, err := db.embeddingRepo.GetEmbeddings(ctx, doc.ID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil
	case err != nil:
		// An unreadable set is as useless as a stale one.
		db.logger.Warn("unreadable embedding cache", "document", doc.ID, "err", err)
	case cacheMatches(set, doc):
		return nil
	}
	db.logger.Info("dropping stale embedding cache", "document", doc.ID)
	return db.embeddingRepo.DeleteEmbeddings(ctx, doc.ID)
}

func cacheMatches(set *core.EmbeddingSet, doc *core.Document) bool {
	if len(set.Sections) != len(doc.Sections) {
		return false
	}
	for i := range doc.Sections {
		if set.Sections[i].Fingerprint != core.SectionFingerprint(&doc.Sections[i]) {
			return false
		}
	}
	return true
}

// ListDocuments returns every stored manual ordered by ID.
func (db *Database) ListDocuments(ctx context.Context) ([]*core.Document, error) {
	return db.docRepo.ListDocuments(ctx)
}

func (db *Database) NewBuilder(opts ...precompute.Option) (*precompute.Builder, error) {
	all := []precompute.Option{precompute.WithLogger(db.logger)}
	return precompute.NewBuilder(db.embeddingRepo, db.provider.Embedder(), append(all, opts...)...)
}

// BuildCache embeds the stored manual with the given ID and persists its
// embedding set.
func (db *Database) BuildCache(ctx context.Context, documentID string, opts ...precompute.Option) (*core.EmbeddingSet, error) {
	doc, err := db.docRepo.GetDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", documentID, err)
	}
	builder, err := db.NewBuilder(opts...)
	if err != nil {
		return nil, err
	}
	return builder.Build(ctx, doc)
}

// NewEngine creates an empty engine sharing the database's scoring pool,
// embedder and embedding store.
func (db *Database) NewEngine(opts ...search.Option) (*search.Engine, error) {
	all := []search.Option{
		search.WithConfig(db.searchConfig),
		search.WithLogger(db.logger),
		search.WithPool(db.pool),
		search.WithEmbedder(db.provider.Embedder()),
		search.WithLoader(db.embeddingRepo),
	}
	if db.monitor != nil {
		all = append(all, search.WithMonitor(db.monitor))
	}
	return search.NewEngine(append(all, opts...)...)
}

// LoadRegistry loads every stored manual into its own engine and registers
// it under RegistryKey. A manual that fails to load is logged and skipped.
func (db *Database) LoadRegistry(ctx context.Context) (*Registry, error) {
	docs, err := db.docRepo.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	registry := NewRegistry()
	for _, doc := range docs {
		engine, err := db.NewEngine()
		if err != nil {
			registry.Close()
			return nil, err
		}
		n, err := engine.Load(ctx, doc)
		if err != nil {
			engine.Close()
			db.logger.Warn("skipping manual", "document", doc.ID, "err", err)
			continue
		}
		key := RegistryKey(doc)
		if prev := registry.Register(key, engine); prev != nil {
			db.logger.Warn("duplicate manual for vehicle, keeping last", "vehicle", key, "document", doc.ID)
			prev.Close()
		}
		db.logger.Debug("manual loaded", "document", doc.ID, "vehicle", key, "sections", n)
	}
	return registry, nil
}
