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

// Package openai implements ai.AIProvider against OpenAI-compatible HTTP
// APIs (OpenAI, Ollama, vLLM) using langchaingo.
//
// Both services share one http.Client bounded by ai.Config.RequestTimeout.
// The embedder truncates very long section text before sending it; the
// keyword extractor asks for JSON output, repairs the common ways small
// models break it, and filters terms by importance.
//
//	provider, err := openai.NewProvider(ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"),
//	    ai.WithEmbeddingModel("bge-m3"),
//	))
//	if err != nil {
//	    return err
//	}
//	defer provider.Close()
//	vector, err := provider.Embedder().EmbedText(ctx, "엔진오일 교체 주기")
package openai
