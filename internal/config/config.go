package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. RESEARCHER_INDEX_PATH.
const EnvPrefix = "RESEARCHER_"

// HashingEmbedderConfig configures the offline feature-hashing embedder.
type HashingEmbedderConfig struct {
	Dimension int `yaml:"dimension" env:"DIMENSION"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url" env:"BASE_URL"`
	APIKeyEnv   string `yaml:"api_key_env" env:"API_KEY_ENV"`
	Model       string `yaml:"model" env:"MODEL"`
	TimeoutSecs int    `yaml:"timeout_secs" env:"TIMEOUT_SECS"`
	BatchSize   int    `yaml:"batch_size" env:"BATCH_SIZE"`
}

// OllamaEmbedderConfig points at a local Ollama server.
type OllamaEmbedderConfig struct {
	URL   string `yaml:"url" env:"URL"`
	Model string `yaml:"model" env:"MODEL"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type    string                `yaml:"type" env:"TYPE"`
	Hashing HashingEmbedderConfig `yaml:"hashing" envPrefix:"HASHING_"`
	OpenAI  OpenAIEmbedderConfig  `yaml:"openai" envPrefix:"OPENAI_"`
	Ollama  OllamaEmbedderConfig  `yaml:"ollama" envPrefix:"OLLAMA_"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	Type       string   `yaml:"type" env:"TYPE"`
	ChunkSize  int      `yaml:"chunk_size" env:"CHUNK_SIZE"`
	Overlap    int      `yaml:"overlap" env:"OVERLAP"`
	Separators []string `yaml:"separators,omitempty"`
}

// IndexConfig locates the persisted vector index and its metadata.
type IndexConfig struct {
	IndexPath      string `yaml:"index_path" env:"PATH"`
	MetadataPath   string `yaml:"metadata_path" env:"METADATA_PATH"`
	DistanceMetric string `yaml:"distance_metric" env:"DISTANCE_METRIC"`
	PreviewChars   int    `yaml:"preview_chars" env:"PREVIEW_CHARS"`
}

// WikipediaConfig configures the external encyclopedic lookup.
type WikipediaConfig struct {
	Enabled     bool   `yaml:"enabled" env:"ENABLED"`
	BaseURL     string `yaml:"base_url" env:"BASE_URL"`
	Language    string `yaml:"language" env:"LANG"`
	Sentences   int    `yaml:"sentences" env:"SENTENCES"`
	TimeoutSecs int    `yaml:"timeout_secs" env:"TIMEOUT_SECS"`
	UserAgent   string `yaml:"user_agent" env:"USER_AGENT"`
}

// RetrieverConfig configures multi-source retrieval.
type RetrieverConfig struct {
	TopK      int             `yaml:"top_k" env:"TOP_K"`
	Wikipedia WikipediaConfig `yaml:"wikipedia" envPrefix:"WIKIPEDIA_"`
}

// LLMConfig configures the OpenAI-compatible chat model used for reports.
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url" env:"BASE_URL"`
	APIKeyEnv   string  `yaml:"api_key_env" env:"API_KEY_ENV"`
	Model       string  `yaml:"model" env:"MODEL"`
	Temperature float32 `yaml:"temperature" env:"TEMPERATURE"`
	MaxTokens   int     `yaml:"max_tokens" env:"MAX_TOKENS"`
	TimeoutSecs int     `yaml:"timeout_secs" env:"TIMEOUT_SECS"`
}

// ReportConfig configures report generation and export.
type ReportConfig struct {
	LLM        LLMConfig `yaml:"llm" envPrefix:"LLM_"`
	ExportPath string    `yaml:"export_path" env:"EXPORT_PATH"`
}

// LogConfig configures the process log.
type LogConfig struct {
	File string `yaml:"file" env:"FILE"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	DataDir   string          `yaml:"data_dir" env:"DATA_DIR"`
	Embedder  EmbedderConfig  `yaml:"embedder" envPrefix:"EMBEDDER_"`
	Chunker   ChunkerConfig   `yaml:"chunker" envPrefix:"CHUNKER_"`
	Index     IndexConfig     `yaml:"index" envPrefix:"INDEX_"`
	Retriever RetrieverConfig `yaml:"retriever" envPrefix:"RETRIEVER_"`
	Report    ReportConfig    `yaml:"report" envPrefix:"REPORT_"`
	Log       LogConfig       `yaml:"log" envPrefix:"LOG_"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(cfg)
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/researcher/config.yaml.
// If neither exists, it writes defaults to ~/.config/researcher/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	if err := Save(userPath, defaultConfig()); err != nil {
		return nil, "", err
	}
	cfg, err := Load(userPath)
	return cfg, userPath, err
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns a fresh copy of the built-in configuration.
func Default() *AppConfig { return defaultConfig() }

// Validate reports the first setting that would make the pipeline unusable.
func (c *AppConfig) Validate() error {
	switch c.Embedder.Type {
	case "hashing", "openai", "ollama":
	default:
		return fmt.Errorf("unknown embedder: %s", c.Embedder.Type)
	}
	if c.Chunker.Type != "recursive" {
		return fmt.Errorf("unknown chunker: %s", c.Chunker.Type)
	}
	if c.Chunker.ChunkSize <= 0 {
		return fmt.Errorf("chunker.chunk_size must be positive, got %d", c.Chunker.ChunkSize)
	}
	if c.Chunker.Overlap < 0 || c.Chunker.Overlap >= c.Chunker.ChunkSize {
		return fmt.Errorf("chunker.overlap must be in [0, %d), got %d", c.Chunker.ChunkSize, c.Chunker.Overlap)
	}
	switch strings.ToLower(c.Index.DistanceMetric) {
	case "l2", "cosine":
	default:
		return fmt.Errorf("unknown distance metric: %s", c.Index.DistanceMetric)
	}
	if c.Index.IndexPath == "" || c.Index.MetadataPath == "" {
		return errors.New("index.index_path and index.metadata_path are required")
	}
	if c.Index.IndexPath == c.Index.MetadataPath {
		return errors.New("index.index_path and index.metadata_path must differ")
	}
	if c.Retriever.TopK < 1 {
		return fmt.Errorf("retriever.top_k must be at least 1, got %d", c.Retriever.TopK)
	}
	return nil
}

func applyEnv(cfg *AppConfig) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("env overrides: %w", err)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "researcher", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		DataDir: "data",
		Embedder: EmbedderConfig{
			Type:    "hashing",
			Hashing: HashingEmbedderConfig{Dimension: 384},
			OpenAI: OpenAIEmbedderConfig{
				BaseURL:     "https://api.openai.com/v1",
				APIKeyEnv:   "OPENAI_API_KEY",
				Model:       "text-embedding-3-small",
				TimeoutSecs: 30,
				BatchSize:   32,
			},
			Ollama: OllamaEmbedderConfig{URL: "http://localhost:11434", Model: "nomic-embed-text"},
		},
		Chunker: ChunkerConfig{Type: "recursive", ChunkSize: 1000, Overlap: 200},
		Index: IndexConfig{
			IndexPath:      filepath.Join(".researcher", "vectors.index"),
			MetadataPath:   filepath.Join(".researcher", "vectors_meta.json"),
			DistanceMetric: "l2",
			PreviewChars:   200,
		},
		Retriever: RetrieverConfig{
			TopK: 5,
			Wikipedia: WikipediaConfig{
				Enabled:     true,
				Language:    "en",
				Sentences:   3,
				TimeoutSecs: 10,
				UserAgent:   "researcher/1.0 (multi-document research agent)",
			},
		},
		Report: ReportConfig{
			LLM: LLMConfig{
				BaseURL:     "https://api.openai.com/v1",
				APIKeyEnv:   "OPENAI_API_KEY",
				Model:       "gpt-3.5-turbo",
				Temperature: 0.2,
				MaxTokens:   800,
				TimeoutSecs: 60,
			},
			ExportPath: "report.json",
		},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = def.Embedder.Type
	}
	if cfg.Embedder.Hashing.Dimension == 0 {
		cfg.Embedder.Hashing.Dimension = def.Embedder.Hashing.Dimension
	}
	if cfg.Chunker.Type == "" {
		cfg.Chunker.Type = def.Chunker.Type
	}
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = def.Chunker.ChunkSize
	}
	if cfg.Index.DistanceMetric == "" {
		cfg.Index.DistanceMetric = def.Index.DistanceMetric
	}
	if cfg.Index.PreviewChars == 0 {
		cfg.Index.PreviewChars = def.Index.PreviewChars
	}
	if cfg.Retriever.TopK == 0 {
		cfg.Retriever.TopK = def.Retriever.TopK
	}
	if cfg.Retriever.Wikipedia.Sentences == 0 {
		cfg.Retriever.Wikipedia.Sentences = def.Retriever.Wikipedia.Sentences
	}
	if cfg.Retriever.Wikipedia.Language == "" {
		cfg.Retriever.Wikipedia.Language = def.Retriever.Wikipedia.Language
	}
	if cfg.Report.LLM.Model == "" {
		cfg.Report.LLM.Model = def.Report.LLM.Model
	}
	if cfg.Report.LLM.APIKeyEnv == "" {
		cfg.Report.LLM.APIKeyEnv = def.Report.LLM.APIKeyEnv
	}
	if cfg.Report.LLM.MaxTokens == 0 {
		cfg.Report.LLM.MaxTokens = def.Report.LLM.MaxTokens
	}
	if cfg.Report.ExportPath == "" {
		cfg.Report.ExportPath = def.Report.ExportPath
	}
}
