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

package openai

import (
	"log/slog"
	"net/http"

	"github.com/poiesic/hydrive/ai"
)

// Provider bundles the embedder and keyword extractor behind one HTTP client.
type Provider struct {
	httpClient *http.Client
	embedder   *Embedder
	extractor  *KeywordExtractor
	logger     *slog.Logger
}

var _ ai.AIProvider = (*Provider)(nil)

// NewProvider validates config and builds both services. No request is made
// until the services are used.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	httpClient := newHTTPClient(config)

	embedder, err := newEmbedder(config, httpClient)
	if err != nil {
		return nil, err
	}
	extractor, err := newKeywordExtractor(config, httpClient)
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("component", "openai-provider")
	logger.Debug("provider ready",
		"embeddingHost", config.EmbeddingHost, "embeddingModel", config.EmbeddingModel,
		"extractorHost", config.ExtractorHost, "extractorModel", config.ExtractorModel)

	return &Provider{
		httpClient: httpClient,
		embedder:   embedder,
		extractor:  extractor,
		logger:     logger,
	}, nil
}

func newHTTPClient(config *ai.Config) *http.Client {
	return &http.Client{Timeout: config.RequestTimeout}
}

func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

func (p *Provider) KeywordExtractor() ai.KeywordExtractor {
	return p.extractor
}

// Close drops idle keep-alive connections.
func (p *Provider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}
