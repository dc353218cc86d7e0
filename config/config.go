// Package config loads application configuration from a YAML file with
// environment variable overrides for secrets.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/docquery/ai"
)

// DefaultPath is the config file read when no path is given.
const DefaultPath = "docquery.yaml"

// FileConfig represents configuration loaded from YAML.
//
// API keys are usually supplied through the environment (OPENROUTER_API_KEY,
// OPENAI_API_KEY, DEEPSEEK_API_KEY) rather than the file; environment values
// always win over file values.
type FileConfig struct {
	// DataDir is the directory holding the badger database.
	DataDir string `yaml:"dataDir"`

	// UploadDir is the directory uploads are staged in before indexing.
	UploadDir string `yaml:"uploadDir"`

	// LogLevel is the slog level name: debug, info, warn or error.
	LogLevel string `yaml:"logLevel"`

	OpenRouterKey  string `yaml:"openRouterKey"`
	OpenAIKey      string `yaml:"openAIKey"`
	DeepSeekKey    string `yaml:"deepSeekKey"`
	LocalHost      string `yaml:"localHost"`
	EmbeddingModel string `yaml:"embeddingModel"`
	ChatModel      string `yaml:"chatModel"`

	// ChunkWords is the maximum number of words per chunk. 0 uses the default.
	ChunkWords int `yaml:"chunkWords"`
}

// Load reads config from path (defaults to DefaultPath). A missing file is
// not an error: configuration then comes entirely from environment variables
// and defaults.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Environment-only configuration.
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	// Override with environment variables
	if v := os.Getenv("DOCQUERY_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("DOCQUERY_UPLOAD_DIR"); v != "" {
		cfg.UploadDir = v
	}
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		cfg.OpenRouterKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAIKey = v
	}
	if v := os.Getenv("DEEPSEEK_API_KEY"); v != "" {
		cfg.DeepSeekKey = v
	}
	if v := os.Getenv("DOCQUERY_LOCAL_HOST"); v != "" {
		cfg.LocalHost = v
	}
	if v := os.Getenv("DOCQUERY_EMBEDDING_MODEL"); v != "" {
		cfg.EmbeddingModel = v
	}
	if v := os.Getenv("DOCQUERY_CHAT_MODEL"); v != "" {
		cfg.ChatModel = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *FileConfig) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// AIConfig builds the ai.Config selected by this file configuration.
func (c *FileConfig) AIConfig() *ai.Config {
	opts := []ai.ConfigOption{}
	if c.OpenRouterKey != "" {
		opts = append(opts, ai.WithOpenRouterKey(c.OpenRouterKey))
	}
	if c.OpenAIKey != "" {
		opts = append(opts, ai.WithOpenAIKey(c.OpenAIKey))
	}
	if c.DeepSeekKey != "" {
		opts = append(opts, ai.WithDeepSeekKey(c.DeepSeekKey))
	}
	if c.LocalHost != "" {
		opts = append(opts, ai.WithLocalHost(c.LocalHost))
	}
	if c.EmbeddingModel != "" {
		opts = append(opts, ai.WithEmbeddingModel(c.EmbeddingModel))
	}
	if c.ChatModel != "" {
		opts = append(opts, ai.WithChatModel(c.ChatModel))
	}
	return ai.NewConfig(opts...)
}
