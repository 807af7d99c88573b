package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"library-chat/internal/models"
)

// LLMConfig points at one OpenAI-compatible or Ollama endpoint.
type LLMConfig struct {
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
	Provider string `yaml:"provider"` // "openai" (default) or "ollama"
}

// DatabaseConfig configures the optional Postgres registry backend.
type DatabaseConfig struct {
	URL   string `yaml:"url"`
	Key   string `yaml:"key"`
	Debug bool   `yaml:"debug"`
}

// VectorConfig configures the chromem collection.
type VectorConfig struct {
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
	InMemory   bool   `yaml:"in_memory"`
}

// RegistryConfig selects where the document title list is persisted.
type RegistryConfig struct {
	Backend string `yaml:"backend"` // "file" (default) or "postgres"
	Path    string `yaml:"path"`
}

// RAGConfig tunes retrieval and chunking.
type RAGConfig struct {
	ChunkBudget   int    `yaml:"chunk_budget"`
	TopN          int    `yaml:"top_n"`
	EncryptionKey string `yaml:"encryption_key"`
}

type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	EmbedLLM LLMConfig      `yaml:"embed_llm"`
	Database DatabaseConfig `yaml:"database"`
	Vector   VectorConfig   `yaml:"vector"`
	Registry RegistryConfig `yaml:"registry"`
	RAG      RAGConfig      `yaml:"rag"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LLM.Key == "" {
		c.LLM.Key = os.Getenv("OPENAI_API_KEY")
	}
	if c.EmbedLLM.Key == "" {
		c.EmbedLLM.Key = c.LLM.Key
	}
	if c.EmbedLLM.BaseURL == "" {
		c.EmbedLLM.BaseURL = c.LLM.BaseURL
	}
	if c.RAG.ChunkBudget == 0 {
		c.RAG.ChunkBudget = models.DefaultChunkBudget
	}
	if c.RAG.TopN == 0 {
		c.RAG.TopN = models.DefaultTopN
	}
	if c.Vector.Path == "" {
		c.Vector.Path = "./chromemdb"
	}
	if c.Vector.Collection == "" {
		c.Vector.Collection = "library"
	}
	if c.Registry.Backend == "" {
		c.Registry.Backend = "file"
	}
	if c.Registry.Path == "" {
		c.Registry.Path = "./" + c.Vector.Collection + ".json"
	}
}
