package search

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/hydrive/ai"
	"github.com/poiesic/hydrive/core"
	"github.com/poiesic/hydrive/embedcache"
)

// Engine ranks the sections of one loaded manual against free-text questions.
// It is safe for concurrent use: Load swaps in a new immutable snapshot, and
// each search works on the snapshot current when it started.
type Engine struct {
	cfg      Config
	embedder ai.Embedder
	loader   embedcache.Loader
	monitor  SearchMonitor
	pool     *ants.Pool
	ownsPool bool
	logger   *slog.Logger

	loadMu  sync.Mutex
	current atomic.Pointer[snapshot]
}

// Option configures an Engine.
type Option func(*Engine) error

// WithConfig replaces the default scoring configuration.
func WithConfig(cfg Config) Option {
	return func(e *Engine) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		e.cfg = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithEmbedder sets the embedder used to embed queries in semantic mode.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(e *Engine) error {
		e.embedder = embedder
		return nil
	}
}

// WithLoader sets where the embedding cache is loaded from on Load.
func WithLoader(loader embedcache.Loader) Option {
	return func(e *Engine) error {
		e.loader = loader
		return nil
	}
}

// WithMonitor installs a monitor that observes every search.
func WithMonitor(monitor SearchMonitor) Option {
	return func(e *Engine) error {
		e.monitor = monitor
		return nil
	}
}

// WithPool shares an existing worker pool. The engine does not release it.
func WithPool(pool *ants.Pool) Option {
	return func(e *Engine) error {
		e.pool = pool
		e.ownsPool = false
		return nil
	}
}

// NewEngine creates an engine holding an empty store.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg:    DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "search")

	if e.pool == nil {
		size := e.cfg.PoolSize
		if size == 0 {
			size = runtime.NumCPU()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return nil, err
		}
		e.pool = pool
		e.ownsPool = true
	}

	e.current.Store(newSnapshot(nil, embedcache.New(e.logger)))
	return e, nil
}

// Close releases the worker pool if the engine created it.
func (e *Engine) Close() {
	if e.ownsPool && e.pool != nil {
		e.pool.Release()
	}
}

// Config returns the engine's scoring configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Load replaces the engine's document and returns its top-level section count.
// The embedding cache for the document is loaded before the swap, so a search
// never sees the new sections paired with the old cache. An invalid document
// leaves the current store unchanged.
func (e *Engine) Load(ctx context.Context, doc *core.Document) (int, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return 0, err
	}

	e.loadMu.Lock()
	defer e.loadMu.Unlock()

	snap := newSnapshot(doc, e.loadCache(ctx, doc))
	e.current.Store(snap)
	e.logger.Info("document loaded", "document", doc.ID, "sections", snap.len(), "cache", snap.cache.State())
	return snap.len(), nil
}

// ReloadEmbeddings re-reads the embedding cache for the loaded document, for
// use after an offline rebuild. The sections are not reloaded.
func (e *Engine) ReloadEmbeddings(ctx context.Context) error {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()

	snap := e.current.Load()
	if snap.doc == nil {
		return ErrNoDocument
	}
	cache := e.loadCache(ctx, snap.doc)
	e.current.Store(snap.withCache(cache))
	return cache.Err()
}

func (e *Engine) loadCache(ctx context.Context, doc *core.Document) *embedcache.Cache {
	cache := embedcache.New(e.logger)
	if e.loader == nil {
		return cache
	}
	if err := cache.Load(ctx, e.loader, doc); err != nil {
		return cache
	}
	if m, ok := e.embedder.(interface{ Model() string }); ok && m.Model() != cache.Model() {
		e.logger.Warn("embedding model differs from cached vectors",
			"document", doc.ID, "embedder", m.Model(), "cache", cache.Model())
	}
	return cache
}

// SearchOptions tunes a single search.
type SearchOptions struct {
	// K is the maximum number of results; <= 0 uses Config.DefaultK.
	K int
	// Mode overrides Config.Mode when set.
	Mode core.Mode
	// Monitor observes this search in addition to the engine monitor.
	Monitor SearchMonitor
}

// Search returns up to k sections ranked by relevance to query using the
// configured mode. An empty result is not an error.
func (e *Engine) Search(ctx context.Context, query string, k int) ([]*core.SearchResult, error) {
	return e.SearchWithOptions(ctx, query, SearchOptions{K: k})
}

// SearchWithOptions is Search with a per-call mode, k and monitor.
func (e *Engine) SearchWithOptions(ctx context.Context, query string, opts SearchOptions) ([]*core.SearchResult, error) {
	snap := e.current.Load()
	monitor := combineMonitors(e.monitor, opts.Monitor)
	start := time.Now()

	requested := opts.Mode
	if requested == "" {
		requested = e.cfg.Mode
	}
	k := opts.K
	if k <= 0 {
		k = e.cfg.DefaultK
	}
	monitor.Start(query, requested)

	q := NewQuery(query)
	monitor.AfterTokenize(q.Tokens)

	if snap.len() == 0 || q.IsEmpty() {
		results := []*core.SearchResult{}
		monitor.Finish(results, time.Since(start))
		return results, nil
	}

	mode, sims, err := e.resolveContent(ctx, snap, q, requested, monitor)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	breakdowns := e.scoreAll(snap, q, mode, sims, monitor)
	weights := e.cfg.weightsFor(mode)

	results := make([]*core.SearchResult, len(breakdowns))
	for i, b := range breakdowns {
		results[i] = &core.SearchResult{
			Section:   &snap.sections[i],
			Score:     weights.Combine(b),
			Breakdown: b,
			Mode:      mode,
		}
	}
	ranked := Rank(results, e.cfg.Threshold, k)

	monitor.Finish(ranked, time.Since(start))
	e.logger.Debug("search complete", "query", query, "mode", mode, "results", len(ranked))
	return ranked, nil
}

// resolveContent picks the content scoring mode. Semantic mode fails closed
// with ErrNotReady; auto mode falls back to lexical.
func (e *Engine) resolveContent(ctx context.Context, snap *snapshot, q Query, requested core.Mode, monitor SearchMonitor) (core.Mode, []float64, error) {
	switch requested {
	case core.ModeLexical:
		monitor.ModeResolved(requested, core.ModeLexical, nil)
		return core.ModeLexical, nil, nil

	case core.ModeSemantic:
		sims, err := e.similarities(ctx, snap, q)
		if err != nil {
			return "", nil, err
		}
		monitor.ModeResolved(requested, core.ModeSemantic, nil)
		return core.ModeSemantic, sims, nil

	case core.ModeAuto:
		sims, err := e.similarities(ctx, snap, q)
		if err != nil {
			if snap.cache.State() == embedcache.StateReady && e.embedder != nil {
				e.logger.Warn("semantic scoring failed, using lexical", "err", err)
			}
			monitor.ModeResolved(requested, core.ModeLexical, err)
			return core.ModeLexical, nil, nil
		}
		monitor.ModeResolved(requested, core.ModeSemantic, nil)
		return core.ModeSemantic, sims, nil
	}
	return "", nil, fmt.Errorf("%w: %q", core.ErrInvalidMode, requested)
}

func (e *Engine) similarities(ctx context.Context, snap *snapshot, q Query) ([]float64, error) {
	if e.embedder == nil {
		return nil, fmt.Errorf("%w: no embedder configured", ErrNotReady)
	}
	if state := snap.cache.State(); state != embedcache.StateReady {
		return nil, fmt.Errorf("%w: cache is %s", ErrNotReady, state)
	}
	vector, err := e.embedder.EmbedText(ctx, q.Raw)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	sims, err := snap.cache.Similarities(vector)
	if err != nil {
		return nil, err
	}
	if len(sims) != snap.len() {
		return nil, fmt.Errorf("%w: %d similarities for %d sections", embedcache.ErrStaleCache, len(sims), snap.len())
	}
	return sims, nil
}

// scoreAll computes a breakdown for every section. Large documents are split
// into contiguous partitions scored on the worker pool; each worker writes only
// its own index range.
func (e *Engine) scoreAll(snap *snapshot, q Query, mode core.Mode, sims []float64, monitor SearchMonitor) []core.ScoreBreakdown {
	n := snap.len()
	out := make([]core.ScoreBreakdown, n)

	scoreRange := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out[i] = e.scoreSection(snap, i, q, mode, sims, monitor)
		}
	}

	workers := e.pool.Cap()
	if n < e.cfg.ParallelCutoff || workers <= 1 {
		scoreRange(0, n)
		return out
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		wg.Add(1)
		err := e.pool.Submit(func() {
			defer wg.Done()
			scoreRange(lo, hi)
		})
		if err != nil {
			// pool closed or saturated; score on the caller's goroutine
			wg.Done()
			scoreRange(lo, hi)
		}
	}
	wg.Wait()
	return out
}

// scoreSection scores one section. A panic degrades the section to a zero
// breakdown instead of aborting the search.
func (e *Engine) scoreSection(snap *snapshot, i int, q Query, mode core.Mode, sims []float64, monitor SearchMonitor) (b core.ScoreBreakdown) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("section scoring failed", "section", snap.sections[i].Title, "panic", r)
			monitor.SectionFailed(&snap.sections[i], r)
			b = core.ScoreBreakdown{}
		}
	}()

	st := snap.texts[i]
	b.Title = titleScore(q, st)
	b.Keyword = keywordScore(q, st)
	if mode == core.ModeSemantic {
		b.Content = clamp01(sims[i])
	} else {
		b.Content = lexicalContentScore(q, st)
	}
	b.Bonus = bonusScore(e.cfg.BonusRules, q, st, e.cfg.BonusBaseline)
	return b
}

// Stats describes the loaded document and its cache.
type Stats struct {
	DocumentID     string
	FileName       string
	Vehicle        core.Vehicle
	Sections       int
	CacheState     embedcache.State
	CachedSections int
	CacheModel     string
	Mode           core.Mode
}

// Stats reports on the current snapshot.
func (e *Engine) Stats() Stats {
	snap := e.current.Load()
	stats := Stats{
		Sections:       snap.len(),
		CacheState:     snap.cache.State(),
		CachedSections: snap.cache.Len(),
		CacheModel:     snap.cache.Model(),
		Mode:           e.cfg.Mode,
	}
	if snap.doc != nil {
		stats.DocumentID = snap.doc.ID
		stats.FileName = snap.doc.FileName
		stats.Vehicle = snap.doc.Vehicle
	}
	return stats
}
