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

package precompute

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/hydrive/ai"
	"github.com/poiesic/hydrive/core"
	"github.com/poiesic/hydrive/storage"
)

// Builder embeds the sections of a document and persists the resulting set.
type Builder struct {
	repo     storage.EmbeddingRepository
	embedder ai.Embedder
	config   Config
	progress io.Writer
	logger   *slog.Logger
}

type Option func(*Builder)

// WithConfig overrides DefaultConfig. Non-positive fields fall back to defaults.
func WithConfig(cfg *Config) Option {
	return func(b *Builder) {
		if cfg != nil {
			b.config = *cfg
		}
	}
}

// WithProgress directs progress lines to w (typically os.Stderr).
func WithProgress(w io.Writer) Option {
	return func(b *Builder) {
		b.progress = w
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder creates a builder that stores sets in repo.
func NewBuilder(repo storage.EmbeddingRepository, embedder ai.Embedder, opts ...Option) (*Builder, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	b := &Builder{
		repo:     repo,
		embedder: embedder,
		config:   *DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.config.normalize()
	b.logger = b.logger.With("component", "precompute")
	return b, nil
}

// Build embeds every top-level section of doc, stores the set and returns it.
// Vector i belongs to doc.Sections[i]. Sections without any text get a zero
// vector, which never scores above zero.
func (b *Builder) Build(ctx context.Context, doc *core.Document) (*core.EmbeddingSet, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}

	set, err := b.embed(ctx, doc)
	if err != nil {
		return nil, err
	}
	if err := b.repo.SaveEmbeddings(ctx, set); err != nil {
		return nil, fmt.Errorf("saving embeddings for %s: %w", doc.ID, err)
	}
	b.logger.Info("embedding cache built",
		"document", doc.ID, "sections", set.Len(), "dimension", set.Dimension, "model", set.Model)
	return set, nil
}

func (b *Builder) embed(ctx context.Context, doc *core.Document) (*core.EmbeddingSet, error) {
	n := len(doc.Sections)
	set := &core.EmbeddingSet{
		DocumentID: doc.ID,
		Model:      modelName(b.embedder),
		Vectors:    make([][]float32, n),
		Sections:   make([]core.SectionMeta, n),
		CreatedAt:  time.Now().UTC(),
	}

	// Only sections with text are sent to the embedder.
	var indexes []int
	var texts []string
	for i := range doc.Sections {
		set.Sections[i] = core.MetaFor(&doc.Sections[i])
		if text := core.EmbeddingText(&doc.Sections[i]); text != "" {
			indexes = append(indexes, i)
			texts = append(texts, text)
		}
	}
	if n == 0 {
		return set, nil
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNothingToEmbed, doc.ID)
	}

	tracker := NewProgressTracker(b.progress, doc.ID, len(texts), b.config.ReportInterval)
	tracker.Start()
	for start, end := range batches(len(texts), b.config.BatchSize) {
		vectors, err := b.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embedding sections %d-%d of %s: %w", start, end-1, doc.ID, err)
		}
		for j, v := range vectors {
			if set.Dimension == 0 {
				set.Dimension = len(v)
			}
			if len(v) != set.Dimension {
				return nil, fmt.Errorf("%w: got %d values, want %d",
					core.ErrDimensionMismatch, len(v), set.Dimension)
			}
			set.Vectors[indexes[start+j]] = NormalizeVector(v)
		}
		tracker.Add(end - start)
	}
	tracker.Finish()

	for i, v := range set.Vectors {
		if v == nil {
			set.Vectors[i] = make([]float32, set.Dimension)
		}
	}
	return set, nil
}

func (b *Builder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32
	err := RetryWithBackoff(ctx, b.logger, b.config.MaxRetries, b.config.RetryDelay, func(ctx context.Context) error {
		out, err := b.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return err
		}
		if len(out) != len(texts) {
			return fmt.Errorf("%w: got %d for %d texts", ErrEmbeddingCount, len(out), len(texts))
		}
		vectors = out
		return nil
	})
	return vectors, err
}

// modelName reports the embedder's model when it exposes one.
func modelName(e ai.Embedder) string {
	if m, ok := e.(interface{ Model() string }); ok {
		return m.Model()
	}
	return ""
}
