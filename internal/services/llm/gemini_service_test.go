package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/models"
)

func TestNewGeminiServiceRequiresAPIKey(t *testing.T) {
	config := common.NewDefaultConfig()
	config.Gemini.APIKey = ""

	_, err := NewGeminiService(config, NewNullAuditLogger(), arbor.NewLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestNewGeminiServiceReportsConfiguredModels(t *testing.T) {
	config := common.NewDefaultConfig()
	config.Gemini.APIKey = "test-key"

	service, err := NewGeminiService(config, NewNullAuditLogger(), arbor.NewLogger())
	require.NoError(t, err)
	defer service.Close()

	assert.Equal(t, config.Gemini.Model, service.ModelName())
	assert.Equal(t, ProviderGemini, service.ProviderName())
	assert.Equal(t, config.Gemini.EmbeddingModel, service.EmbeddingModel())
	assert.Equal(t, config.Gemini.EmbedDimension, service.Dimension())
}

func TestCompletionTextExtractsCandidateText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: "Hello "}, {Text: "world"}}}},
		},
	}

	text, err := completionText(resp)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", text)
}

func TestCompletionTextBlockedPrompt(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		PromptFeedback: &genai.GenerateContentResponsePromptFeedback{
			BlockReason: genai.BlockedReasonSafety,
		},
	}

	_, err := completionText(resp)
	require.Error(t, err)
	require.True(t, models.IsBlocked(err))

	var blocked *models.GenerationBlocked
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, ProviderGemini, blocked.Provider)
	assert.Contains(t, blocked.Reason, "prompt blocked")
}

func TestCompletionTextBlockedResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{FinishReason: genai.FinishReasonSafety},
		},
	}

	_, err := completionText(resp)
	require.Error(t, err)
	assert.True(t, models.IsBlocked(err))
}

func TestCompletionTextEmptyResponse(t *testing.T) {
	_, err := completionText(&genai.GenerateContentResponse{})
	require.Error(t, err)
	assert.False(t, models.IsBlocked(err))

	_, err = completionText(nil)
	require.Error(t, err)
}
