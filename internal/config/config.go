package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// UploadConfig limits what one processing cycle accepts.
type UploadConfig struct {
	MaxFiles int `yaml:"max_files"`
}

// ChunkerConfig configures how extracted text is split into segments.
type ChunkerConfig struct {
	Type         string `yaml:"type"`
	Separator    string `yaml:"separator"`
	ChunkSize    int    `yaml:"chunk_size"`
	// ChunkOverlap is a pointer so an explicit 0 survives defaulting.
	ChunkOverlap *int `yaml:"chunk_overlap,omitempty"`
}

// BedrockEmbedderConfig selects the Bedrock embedding model.
type BedrockEmbedderConfig struct {
	Region  string `yaml:"region"`
	ModelID string `yaml:"model_id"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type    string                 `yaml:"type"`
	Bedrock *BedrockEmbedderConfig `yaml:"bedrock,omitempty"`
	OpenAI  *OpenAIEmbedderConfig  `yaml:"openai,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// PgvectorConfig names the env var holding the Postgres DSN.
type PgvectorConfig struct {
	DSNEnv string `yaml:"dsn_env"`
}

// PineconeConfig locates a Pinecone project. The index name is the collection.
type PineconeConfig struct {
	APIKeyEnv     string `yaml:"api_key_env"`
	ControllerURL string `yaml:"controller_url"`
	Cloud         string `yaml:"cloud"`
	Region        string `yaml:"region"`
	TimeoutSecs   int    `yaml:"timeout_secs"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type       string          `yaml:"type"`
	Collection string          `yaml:"collection"`
	Namespace  string          `yaml:"namespace"`
	Qdrant     *QdrantConfig   `yaml:"qdrant,omitempty"`
	Pgvector   *PgvectorConfig `yaml:"pgvector,omitempty"`
	Pinecone   *PineconeConfig `yaml:"pinecone,omitempty"`
}

// RetrieverConfig controls similarity search.
type RetrieverConfig struct {
	TopK int `yaml:"top_k"`
}

// OpenAILLMConfig holds connection settings for an OpenAI-compatible chat API.
type OpenAILLMConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// LLMConfig selects the answering model and its decoding parameters.
type LLMConfig struct {
	Type        string           `yaml:"type"`
	ModelID     string           `yaml:"model_id"`
	MaxGenLen   int              `yaml:"max_gen_len"`
	Temperature *float64         `yaml:"temperature,omitempty"`
	TopP        float64          `yaml:"top_p"`
	Region      string           `yaml:"region"`
	OpenAI      *OpenAILLMConfig `yaml:"openai,omitempty"`
}

// SummarizerConfig selects and configures the summarizer.
type SummarizerConfig struct {
	Type         string `yaml:"type"`
	MaxSentences int    `yaml:"max_sentences"`
}

// LogConfig controls where logs go and how verbose they are.
type LogConfig struct {
	Dir   string `yaml:"dir"`
	Level string `yaml:"level"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Upload      UploadConfig      `yaml:"upload"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Retriever   RetrieverConfig   `yaml:"retriever"`
	LLM         LLMConfig         `yaml:"llm"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
	Log         LogConfig         `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/pdfchat/config.yaml.
// If neither exists, it writes defaults to ~/.config/pdfchat/config.yaml and returns them.
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
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
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

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "pdfchat", "config.yaml"), nil
}

// DefaultLogDir is used when log.dir is empty.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "logs"
	}
	return filepath.Join(home, ".local", "state", "pdfchat", "logs")
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Upload:      UploadConfig{MaxFiles: 5},
		Chunker:     ChunkerConfig{Type: "character", Separator: "\n", ChunkSize: 1000},
		Embedder:    EmbedderConfig{Type: "bedrock"},
		VectorStore: VectorStoreConfig{Type: "memory", Collection: "testfiles", Namespace: "shared"},
		Retriever:   RetrieverConfig{TopK: 1},
		LLM:         LLMConfig{Type: "bedrock"},
		Summarizer:  SummarizerConfig{Type: "frequency", MaxSentences: 3},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Upload.MaxFiles == 0 {
		cfg.Upload.MaxFiles = 5
	}

	if cfg.Chunker.Type == "" {
		cfg.Chunker.Type = "character"
	}
	if cfg.Chunker.Separator == "" {
		cfg.Chunker.Separator = "\n"
	}
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = 1000
	}
	if cfg.Chunker.ChunkOverlap == nil {
		cfg.Chunker.ChunkOverlap = intPtr(200)
	}

	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "bedrock"
	}
	switch cfg.Embedder.Type {
	case "bedrock":
		if cfg.Embedder.Bedrock == nil {
			cfg.Embedder.Bedrock = &BedrockEmbedderConfig{}
		}
		if cfg.Embedder.Bedrock.Region == "" {
			cfg.Embedder.Bedrock.Region = "us-east-1"
		}
		if cfg.Embedder.Bedrock.ModelID == "" {
			cfg.Embedder.Bedrock.ModelID = "amazon.titan-embed-text-v1"
		}
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}

	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "memory"
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = "testfiles"
	}
	if cfg.VectorStore.Namespace == "" {
		cfg.VectorStore.Namespace = "shared"
	}
	switch cfg.VectorStore.Type {
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			cfg.VectorStore.Qdrant = &QdrantConfig{}
		}
		if cfg.VectorStore.Qdrant.URL == "" {
			cfg.VectorStore.Qdrant.URL = "http://localhost:6333"
		}
		if cfg.VectorStore.Qdrant.TimeoutSecs == 0 {
			cfg.VectorStore.Qdrant.TimeoutSecs = 30
		}
	case "pgvector":
		if cfg.VectorStore.Pgvector == nil {
			cfg.VectorStore.Pgvector = &PgvectorConfig{}
		}
		if cfg.VectorStore.Pgvector.DSNEnv == "" {
			cfg.VectorStore.Pgvector.DSNEnv = "DATABASE_URL"
		}
	case "pinecone":
		if cfg.VectorStore.Pinecone == nil {
			cfg.VectorStore.Pinecone = &PineconeConfig{}
		}
		pc := cfg.VectorStore.Pinecone
		if pc.APIKeyEnv == "" {
			pc.APIKeyEnv = "PINECONE_API_KEY"
		}
		if pc.ControllerURL == "" {
			pc.ControllerURL = "https://api.pinecone.io"
		}
		if pc.Cloud == "" {
			pc.Cloud = "aws"
		}
		if pc.Region == "" {
			pc.Region = "us-east-1"
		}
		if pc.TimeoutSecs == 0 {
			pc.TimeoutSecs = 30
		}
	}

	if cfg.Retriever.TopK == 0 {
		cfg.Retriever.TopK = 1
	}

	if cfg.LLM.Type == "" {
		cfg.LLM.Type = "bedrock"
	}
	if cfg.LLM.ModelID == "" {
		if cfg.LLM.Type == "openai" {
			cfg.LLM.ModelID = "gpt-4o-mini"
		} else {
			cfg.LLM.ModelID = "meta.llama2-70b-chat-v1"
		}
	}
	if cfg.LLM.MaxGenLen == 0 {
		cfg.LLM.MaxGenLen = 512
	}
	if cfg.LLM.Temperature == nil {
		cfg.LLM.Temperature = floatPtr(0.5)
	}
	if cfg.LLM.TopP == 0 {
		cfg.LLM.TopP = 0.9
	}
	if cfg.LLM.Region == "" {
		cfg.LLM.Region = "us-east-1"
	}
	if cfg.LLM.Type == "openai" {
		if cfg.LLM.OpenAI == nil {
			cfg.LLM.OpenAI = &OpenAILLMConfig{}
		}
		if cfg.LLM.OpenAI.BaseURL == "" {
			cfg.LLM.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.LLM.OpenAI.APIKeyEnv == "" {
			cfg.LLM.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.LLM.OpenAI.TimeoutSecs == 0 {
			cfg.LLM.OpenAI.TimeoutSecs = 120
		}
	}

	if cfg.Summarizer.Type == "" {
		cfg.Summarizer.Type = "frequency"
	}
	if cfg.Summarizer.MaxSentences == 0 {
		cfg.Summarizer.MaxSentences = 3
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

// Overlap returns the configured overlap, or 0 when unset.
func (c ChunkerConfig) Overlap() int {
	if c.ChunkOverlap == nil {
		return 0
	}
	return *c.ChunkOverlap
}

// Temp returns the sampling temperature, or 0 when unset.
func (c LLMConfig) Temp() float64 {
	if c.Temperature == nil {
		return 0
	}
	return *c.Temperature
}

// Validate reports the first problem found, wrapped in ErrInvalid.
func (c *AppConfig) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
	}
	if c.Upload.MaxFiles < 1 {
		return invalid("upload.max_files must be at least 1")
	}
	if c.Chunker.Type != "character" {
		return invalid("unknown chunker type %q", c.Chunker.Type)
	}
	if c.Chunker.ChunkSize < 1 {
		return invalid("chunker.chunk_size must be positive")
	}
	if c.Chunker.ChunkOverlap == nil || *c.Chunker.ChunkOverlap < 0 || *c.Chunker.ChunkOverlap >= c.Chunker.ChunkSize {
		return invalid("chunker.chunk_overlap must be in [0, chunk_size)")
	}
	switch c.Embedder.Type {
	case "bedrock", "openai", "tfidf":
	default:
		return invalid("unknown embedder type %q", c.Embedder.Type)
	}
	switch c.VectorStore.Type {
	case "memory", "qdrant", "pgvector", "pinecone":
	default:
		return invalid("unknown vector store type %q", c.VectorStore.Type)
	}
	switch c.VectorStore.Namespace {
	case "shared", "run":
	default:
		return invalid("vector_store.namespace must be shared or run, got %q", c.VectorStore.Namespace)
	}
	if c.Retriever.TopK < 1 {
		return invalid("retriever.top_k must be at least 1")
	}
	switch c.LLM.Type {
	case "bedrock", "openai":
	default:
		return invalid("unknown llm type %q", c.LLM.Type)
	}
	if c.LLM.MaxGenLen < 1 {
		return invalid("llm.max_gen_len must be positive")
	}
	if c.LLM.Temperature == nil || *c.LLM.Temperature < 0 {
		return invalid("llm.temperature must not be negative")
	}
	if c.LLM.TopP <= 0 || c.LLM.TopP > 1 {
		return invalid("llm.top_p must be in (0, 1]")
	}
	if c.Summarizer.Type != "frequency" && c.Summarizer.Type != "none" {
		return invalid("unknown summarizer type %q", c.Summarizer.Type)
	}
	return nil
}
