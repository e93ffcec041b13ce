package llm

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/ternarybob/doceo/internal/interfaces"
)

func TestConvertMessagesToGemini(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "You are a tutor."},
		{Role: "user", Content: "What is backpropagation?"},
		{Role: "assistant", Content: "The gradient computation pass."},
		{Role: "user", Content: "And the chain rule?"},
	}

	contents, system, err := convertMessagesToGemini(messages)
	require.NoError(t, err)

	assert.Equal(t, "You are a tutor.", system)
	require.Len(t, contents, 3)
	assert.Equal(t, genai.RoleUser, contents[0].Role)
	assert.Equal(t, genai.RoleModel, contents[1].Role)
	assert.Equal(t, genai.RoleUser, contents[2].Role)
	require.Len(t, contents[0].Parts, 1)
	assert.Equal(t, "What is backpropagation?", contents[0].Parts[0].Text)
}

func TestConvertMessagesToGeminiUnknownRoleDefaultsToUser(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "user", Content: "hello"},
		{Role: "tool", Content: "tool output"},
	}

	contents, _, err := convertMessagesToGemini(messages)
	require.NoError(t, err)
	require.Len(t, contents, 2)
	assert.Equal(t, genai.RoleUser, contents[1].Role)
}

func TestConvertMessagesToGeminiValidation(t *testing.T) {
	_, _, err := convertMessagesToGemini(nil)
	require.Error(t, err)

	_, _, err = convertMessagesToGemini([]interfaces.Message{
		{Role: "system", Content: "only a system prompt"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user")
}

func TestConvertMessagesToClaude(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "You are a tutor."},
		{Role: "user", Content: "Define entropy."},
		{Role: "assistant", Content: "A measure of uncertainty."},
	}

	claudeMessages, system, err := convertMessagesToClaude(messages)
	require.NoError(t, err)

	assert.Equal(t, "You are a tutor.", system)
	require.Len(t, claudeMessages, 2)
	assert.Equal(t, anthropic.MessageParamRoleUser, claudeMessages[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, claudeMessages[1].Role)
}

func TestConvertMessagesToClaudeRequiresUserMessage(t *testing.T) {
	_, _, err := convertMessagesToClaude([]interfaces.Message{
		{Role: "assistant", Content: "orphaned reply"},
	})
	require.Error(t, err)

	_, _, err = convertMessagesToClaude(nil)
	require.Error(t, err)
}

func TestLastUserContent(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "user", Content: "first question"},
		{Role: "assistant", Content: "reply"},
		{Role: "user", Content: "second question"},
	}

	assert.Equal(t, "second question", lastUserContent(messages))
	assert.Equal(t, "", lastUserContent(nil))
	assert.Equal(t, "", lastUserContent([]interfaces.Message{{Role: "system", Content: "s"}}))
}
