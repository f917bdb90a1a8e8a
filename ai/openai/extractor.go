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
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/poiesic/hydrive/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// maxParseAttempts bounds how often a malformed model response is retried.
const maxParseAttempts = 3

// KeywordExtractor implements ai.KeywordExtractor using OpenAI-compatible chat APIs.
type KeywordExtractor struct {
	client        llms.Model
	minImportance int
	maxKeywords   int
	logger        *slog.Logger
}

// keyword matches the structure expected from the LLM.
type keyword struct {
	Term       string `json:"term"`
	Importance int    `json:"importance"`
}

// extraction is the wrapper structure for the LLM's JSON response.
type extraction struct {
	Keywords []keyword `json:"keywords"`
}

// newKeywordExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newKeywordExtractor(config *ai.Config, httpClient *http.Client) (*KeywordExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ExtractorHost),
		openai.WithToken(config.APIToken),
		openai.WithModel(config.ExtractorModel),
		openai.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, err
	}

	return &KeywordExtractor{
		client:        client,
		minImportance: config.MinImportance,
		maxKeywords:   config.MaxKeywords,
		logger:        slog.Default().With("component", "openai-extractor"),
	}, nil
}

// NewKeywordExtractor creates a new keyword extractor using the provided configuration.
//
// Returns ai.KeywordExtractor interface to enforce abstraction.
func NewKeywordExtractor(config *ai.Config) (ai.KeywordExtractor, error) {
	return newKeywordExtractor(config, newHTTPClient(config))
}

// ExtractKeywords asks the model for the key terms of a manual passage.
// Terms below the importance threshold are dropped and the rest are
// returned highest importance first, capped at the configured maximum.
func (e *KeywordExtractor) ExtractKeywords(ctx context.Context, text string) ([]ai.ExtractedKeyword, error) {
	text = scrubString(text)
	if text == "" {
		return []ai.ExtractedKeyword{}, nil
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildSystemPrompt(e.maxKeywords))},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(text)},
		},
	}

	var result extraction
	var lastErr error
	for attempt := 0; attempt < maxParseAttempts; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model")
			return []ai.ExtractedKeyword{}, nil
		}

		responseText := repairJSON(stripCodeFence(response.Choices[0].Content))

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			e.logger.Warn("error parsing extractor response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		e.logger.Error("failed to parse extractor response after retries", "err", lastErr)
		return nil, lastErr
	}

	extracted := filterKeywords(result.Keywords, e.minImportance, e.maxKeywords)

	e.logger.Debug("extracted keywords",
		"total", len(result.Keywords),
		"filtered", len(extracted))

	return extracted, nil
}

// filterKeywords applies the importance threshold, drops blank and duplicate
// terms, sorts by importance descending and truncates to max.
func filterKeywords(raw []keyword, minImportance, max int) []ai.ExtractedKeyword {
	seen := make(map[string]bool, len(raw))
	extracted := make([]ai.ExtractedKeyword, 0, len(raw))
	for _, k := range raw {
		term := strings.TrimSpace(k.Term)
		if term == "" || k.Importance < minImportance {
			continue
		}
		folded := strings.ToLower(term)
		if seen[folded] {
			continue
		}
		seen[folded] = true
		extracted = append(extracted, ai.ExtractedKeyword{Term: term, Importance: k.Importance})
	}

	slices.SortStableFunc(extracted, func(a, b ai.ExtractedKeyword) int {
		return b.Importance - a.Importance
	})

	if max > 0 && len(extracted) > max {
		extracted = extracted[:max]
	}
	return extracted
}
