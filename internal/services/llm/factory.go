package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/interfaces"
)

// Provider keys reported by ProviderName and stored in audit records.
const (
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
)

// NewServices builds the generation and embedding services for the loaded
// configuration. Embeddings always come from Gemini; the generation provider
// follows llm.provider. When both point at Gemini the same service instance
// backs both interfaces.
func NewServices(config *common.Config, audit interfaces.AuditLogger, logger arbor.ILogger) (interfaces.LLMService, interfaces.EmbeddingService, error) {
	gemini, err := NewGeminiService(config, audit, logger)
	if err != nil {
		return nil, nil, err
	}

	switch config.LLM.Provider {
	case common.LLMProviderClaude:
		claude, err := NewClaudeService(config, audit, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().
			Str("generation_provider", ProviderClaude).
			Str("embedding_provider", ProviderGemini).
			Msg("LLM services ready")
		return claude, gemini, nil

	case common.LLMProviderGemini, "":
		logger.Info().
			Str("generation_provider", ProviderGemini).
			Str("embedding_provider", ProviderGemini).
			Msg("LLM services ready")
		return gemini, gemini, nil

	default:
		return nil, nil, fmt.Errorf("unknown LLM provider %q (expected %q or %q)", config.LLM.Provider, common.LLMProviderGemini, common.LLMProviderClaude)
	}
}
