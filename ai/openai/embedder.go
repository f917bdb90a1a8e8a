package openai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/poiesic/hydrive/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	// maxInputRunes keeps long manual sections inside typical embedding
	// model context windows.
	maxInputRunes = 6000

	// embedBatchSize is the number of texts sent per /embeddings request.
	embedBatchSize = 64
)

// Embedder embeds section text and queries through an OpenAI-compatible
// embeddings endpoint.
type Embedder struct {
	client embeddings.Embedder
	model  string
	logger *slog.Logger
}

func newEmbedder(config *ai.Config, httpClient *http.Client) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	llm, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(config.APIToken),
		openai.WithEmbeddingModel(config.EmbeddingModel),
		openai.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, err
	}

	client, err := embeddings.NewEmbedder(llm,
		embeddings.WithStripNewLines(true),
		embeddings.WithBatchSize(embedBatchSize),
	)
	if err != nil {
		return nil, err
	}

	return &Embedder{
		client: client,
		model:  config.EmbeddingModel,
		logger: slog.Default().With("component", "openai-embedder", "model", config.EmbeddingModel),
	}, nil
}

// NewEmbedder creates a standalone embedder with its own HTTP client.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config, newHTTPClient(config))
}

// Model reports the embedding model name recorded in cache artifacts.
func (e *Embedder) Model() string {
	return e.model
}

func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.client.EmbedQuery(ctx, truncateRunes(text, maxInputRunes))
	if err != nil {
		e.logger.Error("failed to embed query", "err", err)
		return nil, err
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("embedding service returned an empty vector")
	}
	return vector, nil
}

func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("embedding texts", "count", len(texts))

	inputs := make([]string, len(texts))
	for i, t := range texts {
		inputs[i] = truncateRunes(t, maxInputRunes)
	}

	vectors, err := e.client.EmbedDocuments(ctx, inputs)
	if err != nil {
		e.logger.Error("failed to embed texts", "count", len(texts), "err", err)
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding result mismatch. expected %d, received %d", len(texts), len(vectors))
	}
	return vectors, nil
}
