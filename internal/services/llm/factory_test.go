package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/common"
)

func TestNewServicesGeminiBacksBothInterfaces(t *testing.T) {
	config := common.NewDefaultConfig()
	config.Gemini.APIKey = "test-key"
	config.LLM.Provider = common.LLMProviderGemini

	generation, embedding, err := NewServices(config, NewNullAuditLogger(), arbor.NewLogger())
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, generation.ProviderName())
	assert.Same(t, generation, embedding)
}

func TestNewServicesClaudeGeneration(t *testing.T) {
	config := common.NewDefaultConfig()
	config.Gemini.APIKey = "gemini-key"
	config.Claude.APIKey = "claude-key"
	config.LLM.Provider = common.LLMProviderClaude

	generation, embedding, err := NewServices(config, NewNullAuditLogger(), arbor.NewLogger())
	require.NoError(t, err)

	assert.Equal(t, ProviderClaude, generation.ProviderName())
	assert.Equal(t, config.Claude.Model, generation.ModelName())

	// Embeddings stay on Gemini regardless of the generation provider
	assert.Equal(t, config.Gemini.EmbeddingModel, embedding.EmbeddingModel())
	assert.Equal(t, config.Gemini.EmbedDimension, embedding.Dimension())
}

func TestNewServicesMissingGeminiKey(t *testing.T) {
	config := common.NewDefaultConfig()
	config.Gemini.APIKey = ""
	config.LLM.Provider = common.LLMProviderClaude
	config.Claude.APIKey = "claude-key"

	// Gemini is still required for embeddings
	_, _, err := NewServices(config, NewNullAuditLogger(), arbor.NewLogger())
	require.Error(t, err)
}

func TestNewServicesMissingClaudeKey(t *testing.T) {
	config := common.NewDefaultConfig()
	config.Gemini.APIKey = "gemini-key"
	config.LLM.Provider = common.LLMProviderClaude
	config.Claude.APIKey = ""

	_, _, err := NewServices(config, NewNullAuditLogger(), arbor.NewLogger())
	require.Error(t, err)
}
