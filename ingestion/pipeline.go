package ingestion

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/hydrive/ai"
	"github.com/poiesic/hydrive/core"
)

// Pipeline parses, cleans and optionally enriches owner manuals.
type Pipeline struct {
	pool      *ants.Pool
	extractor ai.KeywordExtractor
	enrich    processor
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for keyword enrichment.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithExtractor enables keyword enrichment for sections that carry no keywords.
func WithExtractor(extractor ai.KeywordExtractor) Option {
	return func(p *Pipeline) error {
		if extractor == nil {
			return ErrExtractorRequired
		}
		p.extractor = extractor
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(opts ...Option) (*Pipeline, error) {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		pool:   pool,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	if p.extractor != nil {
		kp, err := newKeywordProcessor(p.extractor, p.pool, p.logger)
		if err != nil {
			p.Release()
			return nil, err
		}
		p.enrich = kp
	}
	return p, nil
}

// IngestFile reads a manual from disk and ingests it.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (*core.Document, error) {
	doc, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.process(ctx, doc)
}

// Ingest parses a manual payload and returns the normalized, validated document.
// Keyword enrichment errors are logged and do not fail the ingestion.
func (p *Pipeline) Ingest(ctx context.Context, data []byte, fileName string) (*core.Document, error) {
	doc, err := ParseDocument(data, fileName)
	if err != nil {
		return nil, err
	}
	return p.process(ctx, doc)
}

func (p *Pipeline) process(ctx context.Context, doc *core.Document) (*core.Document, error) {
	NormalizeDocument(doc)

	if p.enrich != nil {
		if err := p.enrich.process(ctx, flatten(doc.Sections)); err != nil {
			p.logger.Error("error enriching keywords", "document", doc.ID, "err", err)
		}
	}

	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}
	p.logger.Info("ingested manual", "document", doc.ID, "vehicle", doc.Vehicle, "sections", doc.SectionCount())
	return doc, nil
}

// flatten returns pointers to every section and subsection in document order.
func flatten(sections []core.Section) []*core.Section {
	var out []*core.Section
	for i := range sections {
		out = append(out, &sections[i])
		out = append(out, flatten(sections[i].Subsections)...)
	}
	return out
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
