package mock

import (
	"sync/atomic"

	"github.com/poiesic/hydrive/ai"
)

// MockProvider is a test double for ai.AIProvider holding a mock embedder and
// extractor. It records whether Close was called.
type MockProvider struct {
	embedder  *MockEmbedder
	extractor *MockKeywordExtractor
	closed    atomic.Bool
}

var _ ai.AIProvider = (*MockProvider)(nil)

// NewMockProvider creates a provider with default mock services.
func NewMockProvider() *MockProvider {
	return NewMockProviderWithServices(nil, nil)
}

// NewMockProviderWithServices creates a provider around the given mocks.
// A nil service is replaced by its default mock.
func NewMockProviderWithServices(embedder *MockEmbedder, extractor *MockKeywordExtractor) *MockProvider {
	if embedder == nil {
		embedder = NewMockEmbedder()
	}
	if extractor == nil {
		extractor = NewMockKeywordExtractor()
	}
	return &MockProvider{embedder: embedder, extractor: extractor}
}

func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

func (p *MockProvider) KeywordExtractor() ai.KeywordExtractor {
	return p.extractor
}

func (p *MockProvider) Close() error {
	p.closed.Store(true)
	return nil
}

// Closed reports whether Close has been called.
func (p *MockProvider) Closed() bool {
	return p.closed.Load()
}

func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

func (p *MockProvider) GetMockExtractor() *MockKeywordExtractor {
	return p.extractor
}
