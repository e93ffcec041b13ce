package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Storage   StorageConfig   `toml:"storage"`
	Subjects  SubjectsConfig  `toml:"subjects"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Synthesis SynthesisConfig `toml:"synthesis"`
	Safety    SafetyConfig    `toml:"safety"`
	Gemini    GeminiConfig    `toml:"gemini"`
	Claude    ClaudeConfig    `toml:"claude"`
	LLM       LLMConfig       `toml:"llm"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Logging   LoggingConfig   `toml:"logging"`
}

// StorageConfig holds the local data layout. Everything lives under DataDir:
// vectors/<namespace>/ per-subject stores, audit/ for the call log, logs/ for
// file log output.
type StorageConfig struct {
	DataDir string `toml:"data_dir" validate:"required"`
}

// SubjectsConfig points at an optional external subject catalog. Empty means
// the embedded default catalog.
type SubjectsConfig struct {
	CatalogPath string `toml:"catalog_path"`
}

// ChunkingConfig controls document splitting.
type ChunkingConfig struct {
	ChunkSize    int `toml:"chunk_size" validate:"min=100"`   // target characters per chunk
	ChunkOverlap int `toml:"chunk_overlap" validate:"min=0"`  // characters shared between neighbors
}

// RetrievalConfig controls multi-query retrieval.
type RetrievalConfig struct {
	VariantCount int `toml:"variant_count" validate:"min=3,max=5"` // paraphrases per query
	KPerVariant  int `toml:"k_per_variant" validate:"min=1"`       // top-k per search
}

// SynthesisConfig controls answer composition.
type SynthesisConfig struct {
	MaxContextChars int `toml:"max_context_chars" validate:"min=1000"` // context budget; lowest-rank chunks dropped first
	PreviewChars    int `toml:"preview_chars" validate:"min=50"`       // citation preview length
}

// SafetyConfig maps each harm category to a block threshold. Valid values:
// block_none, block_low_and_above, block_medium_and_above, block_only_high.
type SafetyConfig struct {
	DangerousContent string `toml:"dangerous_content" validate:"oneof=block_none block_low_and_above block_medium_and_above block_only_high"`
	HateSpeech       string `toml:"hate_speech" validate:"oneof=block_none block_low_and_above block_medium_and_above block_only_high"`
	Harassment       string `toml:"harassment" validate:"oneof=block_none block_low_and_above block_medium_and_above block_only_high"`
	SexuallyExplicit string `toml:"sexually_explicit" validate:"oneof=block_none block_low_and_above block_medium_and_above block_only_high"`
}

// GeminiConfig contains Google Gemini API configuration for generation and
// embeddings.
type GeminiConfig struct {
	APIKey         string  `toml:"api_key"`         // Google Gemini API key (or GEMINI_API_KEY env)
	Model          string  `toml:"model"`           // Generation model (default: "gemini-1.5-flash")
	EmbeddingModel string  `toml:"embedding_model"` // Embedding model (default: "gemini-embedding-001")
	EmbedDimension int     `toml:"embed_dimension"` // Output dimensionality (default: 768)
	Temperature    float32 `toml:"temperature"`     // Generation temperature (default: 0.2)
	Timeout        string  `toml:"timeout"`         // Per-call timeout as duration string (default: "2m")
	RateLimit      string  `toml:"rate_limit"`      // Minimum spacing between requests (default: "4s" for 15 RPM free tier)
}

// ClaudeConfig contains Anthropic Claude API configuration for the
// alternative generation provider. Embeddings always use Gemini.
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key (or ANTHROPIC_API_KEY env)
	Model       string  `toml:"model"`       // Model (default: "claude-3-5-haiku-20241022")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 4096)
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.2)
	Timeout     string  `toml:"timeout"`     // Per-call timeout as duration string (default: "2m")
	RateLimit   string  `toml:"rate_limit"`  // Minimum spacing between requests (default: "1s")
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API for generation
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig selects the generation provider.
type LLMConfig struct {
	Provider LLMProvider `toml:"provider" validate:"oneof=gemini claude"`
}

// SchedulerConfig controls background maintenance for long-lived modes.
type SchedulerConfig struct {
	Enabled            bool   `toml:"enabled"`
	GCSchedule         string `toml:"gc_schedule"`          // cron expression for badger value-log GC
	AuditRetentionDays int    `toml:"audit_retention_days"` // audit records older than this are pruned
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// NewDefaultConfig creates a configuration with default values.
// Only user-facing settings should be exposed in doceo.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			DataDir: "./data",
		},
		Subjects: SubjectsConfig{
			CatalogPath: "", // embedded catalog
		},
		Chunking: ChunkingConfig{
			ChunkSize:    1500,
			ChunkOverlap: 200,
		},
		Retrieval: RetrievalConfig{
			VariantCount: 4,
			KPerVariant:  5,
		},
		Synthesis: SynthesisConfig{
			MaxContextChars: 12000,
			PreviewChars:    500,
		},
		Safety: SafetyConfig{
			// Strict defaults for study material: every category blocks at
			// low severity and above.
			DangerousContent: "block_low_and_above",
			HateSpeech:       "block_low_and_above",
			Harassment:       "block_low_and_above",
			SexuallyExplicit: "block_low_and_above",
		},
		Gemini: GeminiConfig{
			APIKey:         "", // User must provide API key (GEMINI_API_KEY or config)
			Model:          "gemini-1.5-flash",
			EmbeddingModel: "gemini-embedding-001",
			EmbedDimension: 768,
			Temperature:    0.2, // Low temperature for grounded answers
			Timeout:        "2m",
			RateLimit:      "4s", // 15 RPM free tier
		},
		Claude: ClaudeConfig{
			APIKey:      "", // User must provide API key (ANTHROPIC_API_KEY or config)
			Model:       "claude-3-5-haiku-20241022",
			MaxTokens:   4096,
			Temperature: 0.2,
			Timeout:     "2m",
			RateLimit:   "1s",
		},
		LLM: LLMConfig{
			Provider: LLMProviderGemini,
		},
		Scheduler: SchedulerConfig{
			Enabled:            true,
			GCSchedule:         "*/10 * * * *", // every 10 minutes
			AuditRetentionDays: 30,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier ones.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Storage configuration
	if dataDir := os.Getenv("DOCEO_DATA_DIR"); dataDir != "" {
		config.Storage.DataDir = dataDir
	}

	// Subjects configuration
	if catalogPath := os.Getenv("DOCEO_SUBJECTS_CATALOG"); catalogPath != "" {
		config.Subjects.CatalogPath = catalogPath
	}

	// Logging configuration
	if level := os.Getenv("DOCEO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("DOCEO_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Gemini configuration: DOCEO_ prefix takes priority over the standard
	// GEMINI_API_KEY variable.
	if apiKey := os.Getenv("DOCEO_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	} else if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("DOCEO_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if embeddingModel := os.Getenv("DOCEO_GEMINI_EMBEDDING_MODEL"); embeddingModel != "" {
		config.Gemini.EmbeddingModel = embeddingModel
	}
	if dim := os.Getenv("DOCEO_GEMINI_EMBED_DIMENSION"); dim != "" {
		if d, err := strconv.Atoi(dim); err == nil {
			config.Gemini.EmbedDimension = d
		}
	}
	if temperature := os.Getenv("DOCEO_GEMINI_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Gemini.Temperature = float32(t)
		}
	}
	if timeout := os.Getenv("DOCEO_GEMINI_TIMEOUT"); timeout != "" {
		config.Gemini.Timeout = timeout
	}
	if rateLimit := os.Getenv("DOCEO_GEMINI_RATE_LIMIT"); rateLimit != "" {
		config.Gemini.RateLimit = rateLimit
	}

	// Claude configuration
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("DOCEO_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey // DOCEO_ prefix takes priority
	}
	if model := os.Getenv("DOCEO_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if maxTokens := os.Getenv("DOCEO_CLAUDE_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.Claude.MaxTokens = mt
		}
	}
	if timeout := os.Getenv("DOCEO_CLAUDE_TIMEOUT"); timeout != "" {
		config.Claude.Timeout = timeout
	}

	// LLM provider configuration
	if provider := os.Getenv("DOCEO_LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = LLMProvider(provider)
	}

	// Scheduler configuration
	if enabled := os.Getenv("DOCEO_SCHEDULER_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Scheduler.Enabled = e
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, dataDir, logLevel string) {
	// Command-line flags have highest priority
	if dataDir != "" {
		config.Storage.DataDir = dataDir
	}
	if logLevel != "" {
		config.Logging.Level = logLevel
	}
}

// Validate checks the loaded configuration, including the constraints the
// validator tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("invalid configuration: chunk_overlap (%d) must be smaller than chunk_size (%d)",
			c.Chunking.ChunkOverlap, c.Chunking.ChunkSize)
	}

	for name, value := range map[string]string{
		"gemini.timeout":    c.Gemini.Timeout,
		"gemini.rate_limit": c.Gemini.RateLimit,
		"claude.timeout":    c.Claude.Timeout,
		"claude.rate_limit": c.Claude.RateLimit,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid configuration: %s: %w", name, err)
		}
	}

	return nil
}

// GeminiTimeout returns the parsed Gemini call timeout.
func (c *Config) GeminiTimeout() time.Duration {
	return parseDurationOr(c.Gemini.Timeout, 2*time.Minute)
}

// GeminiRateLimit returns the parsed minimum spacing between Gemini requests.
func (c *Config) GeminiRateLimit() time.Duration {
	return parseDurationOr(c.Gemini.RateLimit, 4*time.Second)
}

// ClaudeTimeout returns the parsed Claude call timeout.
func (c *Config) ClaudeTimeout() time.Duration {
	return parseDurationOr(c.Claude.Timeout, 2*time.Minute)
}

// ClaudeRateLimit returns the parsed minimum spacing between Claude requests.
func (c *Config) ClaudeRateLimit() time.Duration {
	return parseDurationOr(c.Claude.RateLimit, time.Second)
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
