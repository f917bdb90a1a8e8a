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

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/hydrive"
	"github.com/poiesic/hydrive/ai"
	"github.com/poiesic/hydrive/core"
	"github.com/poiesic/hydrive/metrics"
	"github.com/poiesic/hydrive/precompute"
	"github.com/poiesic/hydrive/search"
	"github.com/poiesic/hydrive/storage"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "hydrive",
		Usage: "Section search over vehicle owner manuals",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"HYDRIVE_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:     "db",
				Aliases:  []string{"d"},
				Usage:    "Path to BadgerDB database directory",
				EnvVars:  []string{"HYDRIVE_DB"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "embedding-host",
				Usage:   "Embedding service host URL",
				Value:   "http://localhost:11434/v1",
				EnvVars: []string{"HYDRIVE_EMBEDDING_HOST"},
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				Value:   "bge-m3",
				EnvVars: []string{"HYDRIVE_EMBEDDING_MODEL"},
			},
			&cli.StringFlag{
				Name:    "extractor-host",
				Usage:   "Keyword extraction service host URL (defaults to embedding-host)",
				EnvVars: []string{"HYDRIVE_EXTRACTOR_HOST"},
			},
			&cli.StringFlag{
				Name:    "extractor-model",
				Usage:   "Keyword extraction model name",
				Value:   "qwen2.5:3b",
				EnvVars: []string{"HYDRIVE_EXTRACTOR_MODEL"},
			},
			&cli.StringFlag{
				Name:    "api-token",
				Usage:   "Bearer token for the AI services",
				EnvVars: []string{"HYDRIVE_API_TOKEN"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Import manuals from JSON section files",
				ArgsUsage: "FILE...",
				Action:    importCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "extract-keywords",
						Usage: "Extract keywords with the LLM for sections that have none",
					},
				},
			},
			{
				Name:   "list",
				Usage:  "List imported manuals",
				Action: listCommand,
			},
			{
				Name:   "build-cache",
				Usage:  "Embed manual sections and store the embedding cache",
				Action: buildCacheCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "document",
						Usage: "Document ID to build (repeatable, default all)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of sections embedded per request",
						Value: 32,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N sections",
						Value: 32,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts per batch",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search a vehicle's manual",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "vehicle",
						Aliases:  []string{"v"},
						Usage:    "Vehicle code (SANTAFE), name (싼타페) or document ID",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "k",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   search.DefaultK,
					},
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Content scoring mode (auto, lexical, semantic)",
					},
					&cli.StringFlag{
						Name:    "config",
						Usage:   "YAML search configuration file",
						EnvVars: []string{"HYDRIVE_SEARCH_CONFIG"},
					},
					&cli.BoolFlag{
						Name:  "metrics",
						Usage: "Print search metrics after the results",
					},
				},
			},
		},
	}
}

func aiConfig(c *cli.Context) *ai.Config {
	extractorHost := c.String("extractor-host")
	if extractorHost == "" {
		extractorHost = c.String("embedding-host")
	}
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithExtractorHost(extractorHost),
		ai.WithExtractorModel(c.String("extractor-model")),
		ai.WithAPIToken(c.String("api-token")),
	)
}

func openDatabase(c *cli.Context, opts ...hydrive.DatabaseOption) (*hydrive.Database, error) {
	cfg := aiConfig(c)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	db, err := hydrive.NewDatabase(c.String("db"), append([]hydrive.DatabaseOption{hydrive.WithAIConfig(cfg)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func importCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one manual file is required")
	}
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := hydrive.ImportOptions{ExtractKeywords: c.Bool("extract-keywords")}
	for _, path := range c.Args().Slice() {
		doc, err := db.ImportDocument(c.Context, path, opts)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		fmt.Fprintf(c.App.Writer, "imported %s (%s): %d sections\n", doc.ID, doc.Vehicle, doc.SectionCount())
	}
	return nil
}

func listCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	docs, err := db.ListDocuments(c.Context)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVEHICLE\tSECTIONS\tCACHE")
	for _, doc := range docs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", doc.ID, doc.Vehicle, doc.SectionCount(), cacheStatus(c.Context, db, doc))
	}
	return w.Flush()
}

func cacheStatus(ctx context.Context, db *hydrive.Database, doc *core.Document) string {
	set, err := db.EmbeddingRepository().GetEmbeddings(ctx, doc.ID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return "none"
	case err != nil:
		return "error"
	}
	return fmt.Sprintf("%s (%d)", set.Model, set.Len())
}

func buildCacheCommand(c *cli.Context) error {
	cfg := &precompute.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if cfg.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if cfg.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if cfg.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ids := c.StringSlice("document")
	if len(ids) == 0 {
		docs, err := db.ListDocuments(c.Context)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			ids = append(ids, doc.ID)
		}
	}

	fmt.Fprintf(c.App.ErrWriter, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", c.String("embedding-model"))
	for _, id := range ids {
		set, err := db.BuildCache(c.Context, id, precompute.WithConfig(cfg), precompute.WithProgress(c.App.ErrWriter))
		if err != nil {
			return fmt.Errorf("build-cache %s: %w", id, err)
		}
		fmt.Fprintf(c.App.Writer, "cached %s: %d sections, dimension %d\n", id, set.Len(), set.Dimension)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a query is required")
	}

	searchConfig := search.DefaultConfig()
	if path := c.String("config"); path != "" {
		cfg, err := search.LoadConfig(path)
		if err != nil {
			return err
		}
		searchConfig = cfg
	}
	if c.IsSet("mode") {
		mode, err := core.ParseMode(c.String("mode"))
		if err != nil {
			return err
		}
		searchConfig.Mode = mode
	}

	opts := []hydrive.DatabaseOption{hydrive.WithSearchConfig(searchConfig)}
	var searchMetrics *metrics.SearchMetrics
	if c.Bool("metrics") {
		searchMetrics = metrics.NewSearchMetrics("hydrive")
		opts = append(opts, hydrive.WithMonitor(searchMetrics))
	}

	db, err := openDatabase(c, opts...)
	if err != nil {
		return err
	}
	defer db.Close()

	registry, err := db.LoadRegistry(c.Context)
	if err != nil {
		return err
	}
	defer registry.Close()

	results, err := registry.Search(c.Context, c.String("vehicle"), query, c.Int("k"))
	if err != nil {
		return err
	}
	printResults(c, results)

	if searchMetrics != nil {
		return searchMetrics.WriteText(c.App.ErrWriter)
	}
	return nil
}

func printResults(c *cli.Context, results []*core.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(c.App.Writer, "no matching sections")
		return
	}
	for i, r := range results {
		fmt.Fprintf(c.App.Writer, "%d. [%.3f] %s %s (%s)\n",
			i+1, r.Score, r.Section.SectionNumber, r.Section.Title, r.Section.Citation())
		fmt.Fprintf(c.App.Writer, "   title=%.2f keyword=%.2f content=%.2f bonus=%.2f mode=%s\n",
			r.Breakdown.Title, r.Breakdown.Keyword, r.Breakdown.Content, r.Breakdown.Bonus, r.Mode)
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
