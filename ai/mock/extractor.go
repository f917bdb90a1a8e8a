package mock

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/poiesic/hydrive/ai"
)

// MockKeywordExtractor is a test double for ai.KeywordExtractor.
type MockKeywordExtractor struct {
	// ExtractKeywordsFunc is called by ExtractKeywords if set.
	ExtractKeywordsFunc func(ctx context.Context, text string) ([]ai.ExtractedKeyword, error)

	mu        sync.Mutex
	callCount int
}

// NewMockKeywordExtractor creates a mock keyword extractor with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockExtractor().
func NewMockKeywordExtractor() *MockKeywordExtractor {
	return &MockKeywordExtractor{}
}

// ExtractKeywords returns simple mock keywords.
// Default behavior: the first five distinct words of at least two characters,
// with importance decreasing from 10.
func (m *MockKeywordExtractor) ExtractKeywords(ctx context.Context, text string) ([]ai.ExtractedKeyword, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.ExtractKeywordsFunc != nil {
		return m.ExtractKeywordsFunc(ctx, text)
	}

	keywords := make([]ai.ExtractedKeyword, 0, 5)
	seen := make(map[string]bool)
	importance := 10
	for _, word := range strings.Fields(text) {
		if len(keywords) >= 5 {
			break
		}

		word = strings.Trim(word, ".,!?;:\"'()[]{}—–-*")
		if utf8.RuneCountInString(word) < 2 || seen[word] {
			continue
		}
		seen[word] = true

		keywords = append(keywords, ai.ExtractedKeyword{
			Term:       word,
			Importance: importance,
		})
		importance--
	}

	return keywords, nil
}

// CallCount returns the number of times ExtractKeywords was called.
func (m *MockKeywordExtractor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockKeywordExtractor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.ExtractKeywordsFunc = nil
}
