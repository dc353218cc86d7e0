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

// Package ai provides abstractions for the AI services used in DocQuery.
//
// This package defines the interfaces for text embeddings and text
// generation so that the core domain and business logic depend on
// abstractions rather than on any particular AI vendor.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - Generator: Produces free-text output (answers, conversation titles)
//   - Provider: Aggregates AI services for convenient initialization
//
// # Implementation Packages
//
// The ai package includes two implementation sub-packages:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Backend Selection
//
// Config selects a single backend from the configured API keys with a fixed
// priority: OpenRouter > OpenAI > DeepSeek > local OpenAI-compatible host.
// DeepSeek has no embedding models; a DeepSeek-only configuration produces an
// Embedder that fails every call with ErrNoEmbeddingBackend, while the
// Generator still works. Callers are expected to degrade to keyword search
// when embeddings are unavailable rather than refusing queries outright.
//
// # Constructor Return Type Pattern
//
// Production constructors (openai.NewProvider, openai.NewEmbedder, etc.)
// return interface types so callers cannot couple to the concrete client.
//
//	provider, err := openai.NewProvider(config)  // returns ai.Provider
//
// The mock constructors return concrete types instead, since tests need
// the mock's inspection methods (CallCount, Reset) and function fields.
//
// # Usage Example
//
//	cfg := ai.NewConfig(
//	    ai.WithOpenAIKey(os.Getenv("OPENAI_API_KEY")),
//	)
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "Hello world")
//	answer, err := provider.Generator().Generate(ctx, systemPrompt, userPrompt, 0.3, 1000)
package ai
