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

package ai

import (
	"errors"
	"strings"
)

// Well-known hosted backend base URLs.
const (
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
	OpenAIBaseURL     = "https://api.openai.com/v1"
	DeepSeekBaseURL   = "https://api.deepseek.com/v1"
)

// Config holds configuration for AI service providers.
//
// Backend selection is key-driven with a fixed priority:
// OpenRouter > OpenAI > DeepSeek > local OpenAI-compatible host.
// DeepSeek offers no embedding models, so a DeepSeek-only configuration
// can generate text but not embeddings.
type Config struct {
	// OpenRouterKey is the API key for openrouter.ai. Highest priority.
	OpenRouterKey string

	// OpenAIKey is the API key for api.openai.com.
	OpenAIKey string

	// DeepSeekKey is the API key for api.deepseek.com.
	// DeepSeek provides chat models only, no embeddings.
	DeepSeekKey string

	// LocalHost is the base URL of a local OpenAI-compatible server,
	// used when no hosted API key is configured.
	// Example: "http://localhost:11434/v1"
	LocalHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "text-embedding-3-small", "embeddinggemma"
	EmbeddingModel string

	// ChatModel is the model identifier to use for answer and title generation.
	// When empty, a per-backend default is chosen (see Resolve).
	ChatModel string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithOpenRouterKey sets the OpenRouter API key.
func WithOpenRouterKey(key string) ConfigOption {
	return func(c *Config) {
		c.OpenRouterKey = key
	}
}

// WithOpenAIKey sets the OpenAI API key.
func WithOpenAIKey(key string) ConfigOption {
	return func(c *Config) {
		c.OpenAIKey = key
	}
}

// WithDeepSeekKey sets the DeepSeek API key.
func WithDeepSeekKey(key string) ConfigOption {
	return func(c *Config) {
		c.DeepSeekKey = key
	}
}

// WithLocalHost sets the local OpenAI-compatible server host URL.
func WithLocalHost(host string) ConfigOption {
	return func(c *Config) {
		c.LocalHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithChatModel sets the chat model identifier.
func WithChatModel(model string) ConfigOption {
	return func(c *Config) {
		c.ChatModel = model
	}
}

// DefaultConfig returns a Config targeting a local OpenAI-compatible server.
func DefaultConfig() *Config {
	return &Config{
		LocalHost:      "http://localhost:11434/v1",
		EmbeddingModel: "text-embedding-3-small",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithOpenAIKey(os.Getenv("OPENAI_API_KEY")),
//	    WithEmbeddingModel("text-embedding-3-small"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Backend describes the concrete API endpoint selected from a Config.
type Backend struct {
	// Name is a human-readable backend identifier, used in logs.
	Name string

	// BaseURL is the OpenAI-compatible API base URL.
	BaseURL string

	// APIKey authenticates requests. Empty for key-less local servers.
	APIKey string

	// ChatModel is the resolved chat model identifier.
	ChatModel string

	// SupportsEmbeddings reports whether the backend offers embedding models.
	SupportsEmbeddings bool
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to LocalHost if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.LocalHost != "" && !strings.HasSuffix(c.LocalHost, "/v1") {
		c.LocalHost = strings.TrimSuffix(c.LocalHost, "/")
		c.LocalHost = c.LocalHost + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.OpenRouterKey == "" && c.OpenAIKey == "" && c.DeepSeekKey == "" && c.LocalHost == "" {
		return errors.New("ai config: at least one API key or LocalHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	return nil
}

// Resolve picks the backend to use according to the key priority and fills
// in the per-backend default chat model when none is configured.
func (c *Config) Resolve() (*Backend, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	b := &Backend{ChatModel: c.ChatModel}
	switch {
	case c.OpenRouterKey != "":
		b.Name = "openrouter"
		b.BaseURL = OpenRouterBaseURL
		b.APIKey = c.OpenRouterKey
		b.SupportsEmbeddings = true
		if b.ChatModel == "" {
			b.ChatModel = "openai/gpt-4o"
		}
	case c.OpenAIKey != "":
		b.Name = "openai"
		b.BaseURL = OpenAIBaseURL
		b.APIKey = c.OpenAIKey
		b.SupportsEmbeddings = true
		if b.ChatModel == "" {
			b.ChatModel = "gpt-4o"
		}
	case c.DeepSeekKey != "":
		b.Name = "deepseek"
		b.BaseURL = DeepSeekBaseURL
		b.APIKey = c.DeepSeekKey
		b.SupportsEmbeddings = false
		if b.ChatModel == "" {
			b.ChatModel = "deepseek-chat"
		}
	default:
		b.Name = "local"
		b.BaseURL = c.LocalHost
		b.SupportsEmbeddings = true
		if b.ChatModel == "" {
			b.ChatModel = "qwen2.5:3b"
		}
	}
	return b, nil
}
