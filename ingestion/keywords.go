package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/hydrive/ai"
	"github.com/poiesic/hydrive/core"
)

// keywordProcessor fills in keywords for sections that arrived without any.
type keywordProcessor struct {
	extractor ai.KeywordExtractor
	pool      *ants.Pool
	logger    *slog.Logger
}

var _ processor = (*keywordProcessor)(nil)

func newKeywordProcessor(extractor ai.KeywordExtractor, pool *ants.Pool, logger *slog.Logger) (*keywordProcessor, error) {
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if pool == nil {
		return nil, fmt.Errorf("worker pool required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &keywordProcessor{
		extractor: extractor,
		pool:      pool,
		logger:    logger.With("processor", "keywords"),
	}, nil
}

// process extracts keywords for every section whose keyword list is empty.
// Per-section failures are collected and returned joined; sections that
// succeeded keep their new keywords either way.
func (kp *keywordProcessor) process(ctx context.Context, sections []*core.Section) error {
	var pending []*core.Section
	for _, s := range sections {
		if len(s.Keywords) == 0 && core.EmbeddingText(s) != "" {
			pending = append(pending, s)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	kp.logger.Info("extracting keywords", "sections", len(pending))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, section := range pending {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			extracted, err := kp.extractor.ExtractKeywords(ctx, core.EmbeddingText(section))
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("section %q: %w", section.Title, err))
				mu.Unlock()
				return
			}
			section.Keywords = NormalizeKeywords(ai.Terms(extracted))
		}
		if err := kp.pool.Submit(task); err != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
