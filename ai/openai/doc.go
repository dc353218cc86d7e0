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

// Package openai provides AI service implementations using OpenAI-compatible APIs.
//
// This package implements the ai.Provider interface using the langchaingo
// library. The backend is chosen from the configured API keys with the
// priority OpenRouter > OpenAI > DeepSeek > local OpenAI-compatible server
// (such as Ollama, LocalAI, or vLLM).
//
// DeepSeek offers no embedding models. When a DeepSeek-only configuration is
// resolved, the provider's Embedder fails every call with
// ai.ErrNoEmbeddingBackend while the Generator remains fully functional.
//
// # Usage
//
//	cfg := ai.NewConfig(
//	    ai.WithOpenAIKey(os.Getenv("OPENAI_API_KEY")),
//	)
//
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "sample text")
//	answer, err := provider.Generator().Generate(ctx, systemPrompt, userPrompt, 0.3, 1000)
package openai
