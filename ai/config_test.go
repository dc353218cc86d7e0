package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LocalHost)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Empty(t, cfg.OpenRouterKey)
	assert.Empty(t, cfg.OpenAIKey)
	assert.Empty(t, cfg.DeepSeekKey)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.NotNil(t, cfg)
		// Should have default values
		assert.Equal(t, "http://localhost:11434/v1", cfg.LocalHost)
		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	})

	t.Run("with API keys", func(t *testing.T) {
		cfg := NewConfig(
			WithOpenAIKey("sk-test"),
			WithDeepSeekKey("ds-test"),
		)

		assert.Equal(t, "sk-test", cfg.OpenAIKey)
		assert.Equal(t, "ds-test", cfg.DeepSeekKey)
	})

	t.Run("with custom local host", func(t *testing.T) {
		cfg := NewConfig(WithLocalHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.LocalHost)
	})

	t.Run("with custom models", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingModel("embeddinggemma"),
			WithChatModel("gpt-4o-mini"),
		)

		assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
		assert.Equal(t, "gpt-4o-mini", cfg.ChatModel)
	})
}

func TestConfigNormalize(t *testing.T) {
	t.Run("adds /v1 suffix to local host", func(t *testing.T) {
		cfg := &Config{LocalHost: "http://localhost:11434"}
		cfg.Normalize()

		assert.Equal(t, "http://localhost:11434/v1", cfg.LocalHost)
	})

	t.Run("strips trailing slash before adding suffix", func(t *testing.T) {
		cfg := &Config{LocalHost: "http://localhost:11434/"}
		cfg.Normalize()

		assert.Equal(t, "http://localhost:11434/v1", cfg.LocalHost)
	})

	t.Run("leaves canonical host alone", func(t *testing.T) {
		cfg := &Config{LocalHost: "http://localhost:11434/v1"}
		cfg.Normalize()

		assert.Equal(t, "http://localhost:11434/v1", cfg.LocalHost)
	})

	t.Run("ignores empty host", func(t *testing.T) {
		cfg := &Config{}
		cfg.Normalize()

		assert.Empty(t, cfg.LocalHost)
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid default config", func(t *testing.T) {
		cfg := DefaultConfig()
		require.NoError(t, cfg.Validate())
	})

	t.Run("rejects config with no backend", func(t *testing.T) {
		cfg := &Config{EmbeddingModel: "text-embedding-3-small"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects missing embedding model", func(t *testing.T) {
		cfg := &Config{OpenAIKey: "sk-test"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("key-only config is valid", func(t *testing.T) {
		cfg := &Config{OpenAIKey: "sk-test", EmbeddingModel: "text-embedding-3-small"}
		assert.NoError(t, cfg.Validate())
	})
}

func TestConfigResolve(t *testing.T) {
	t.Run("openrouter wins over everything", func(t *testing.T) {
		cfg := NewConfig(
			WithOpenRouterKey("or-test"),
			WithOpenAIKey("sk-test"),
			WithDeepSeekKey("ds-test"),
		)

		backend, err := cfg.Resolve()
		require.NoError(t, err)
		assert.Equal(t, "openrouter", backend.Name)
		assert.Equal(t, OpenRouterBaseURL, backend.BaseURL)
		assert.Equal(t, "or-test", backend.APIKey)
		assert.Equal(t, "openai/gpt-4o", backend.ChatModel)
		assert.True(t, backend.SupportsEmbeddings)
	})

	t.Run("openai wins over deepseek", func(t *testing.T) {
		cfg := NewConfig(
			WithOpenAIKey("sk-test"),
			WithDeepSeekKey("ds-test"),
		)

		backend, err := cfg.Resolve()
		require.NoError(t, err)
		assert.Equal(t, "openai", backend.Name)
		assert.Equal(t, "gpt-4o", backend.ChatModel)
		assert.True(t, backend.SupportsEmbeddings)
	})

	t.Run("deepseek has no embeddings", func(t *testing.T) {
		cfg := NewConfig(WithDeepSeekKey("ds-test"))

		backend, err := cfg.Resolve()
		require.NoError(t, err)
		assert.Equal(t, "deepseek", backend.Name)
		assert.Equal(t, "deepseek-chat", backend.ChatModel)
		assert.False(t, backend.SupportsEmbeddings)
	})

	t.Run("falls back to local host", func(t *testing.T) {
		cfg := NewConfig()

		backend, err := cfg.Resolve()
		require.NoError(t, err)
		assert.Equal(t, "local", backend.Name)
		assert.Equal(t, "http://localhost:11434/v1", backend.BaseURL)
		assert.Empty(t, backend.APIKey)
		assert.True(t, backend.SupportsEmbeddings)
	})

	t.Run("explicit chat model overrides backend default", func(t *testing.T) {
		cfg := NewConfig(
			WithOpenAIKey("sk-test"),
			WithChatModel("gpt-4o-mini"),
		)

		backend, err := cfg.Resolve()
		require.NoError(t, err)
		assert.Equal(t, "gpt-4o-mini", backend.ChatModel)
	})

	t.Run("invalid config fails", func(t *testing.T) {
		cfg := &Config{}

		backend, err := cfg.Resolve()
		assert.Error(t, err)
		assert.Nil(t, backend)
	})
}
