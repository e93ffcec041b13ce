package interfaces

import (
	"context"
)

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// LLMService defines the interface for text generation. Implementations
// wrap a cloud provider (Gemini, Claude) and own their rate limiting,
// retries, and audit logging.
//
// A generation suppressed by the provider's content-safety policy returns
// *models.GenerationBlocked; transport and service failures return
// *models.GenerationError. Callers can tell the two apart with
// models.IsBlocked.
type LLMService interface {
	// Chat generates a completion from the conversation history. The
	// messages slice may include one "system" message; implementations map
	// it to the provider's system-instruction mechanism.
	Chat(ctx context.Context, messages []Message) (string, error)

	// ModelName returns the generation model identifier
	ModelName() string

	// ProviderName returns the provider key ("gemini" or "claude")
	ProviderName() string

	// Close releases client resources
	Close() error
}
