package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/models"
)

// ClaudeService wraps the Anthropic API as an alternative generation
// provider. Embeddings remain on Gemini regardless of the selected
// generation provider, so this service implements chat only.
type ClaudeService struct {
	config  *common.Config
	logger  arbor.ILogger
	audit   interfaces.AuditLogger
	client  anthropic.Client
	limiter *rate.Limiter
	retry   *RetryConfig
	timeout time.Duration
}

var _ interfaces.LLMService = (*ClaudeService)(nil)

// NewClaudeService creates a Claude service from the loaded configuration.
// It fails when no API key is configured; connectivity is not probed here.
func NewClaudeService(config *common.Config, audit interfaces.AuditLogger, logger arbor.ILogger) (*ClaudeService, error) {
	if config.Claude.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required (set ANTHROPIC_API_KEY or claude.api_key in config)")
	}

	service := &ClaudeService{
		config:  config,
		logger:  logger,
		audit:   audit,
		client:  anthropic.NewClient(option.WithAPIKey(config.Claude.APIKey)),
		limiter: rate.NewLimiter(rate.Every(config.ClaudeRateLimit()), 1),
		retry:   NewDefaultRetryConfig(),
		timeout: config.ClaudeTimeout(),
	}

	logger.Info().
		Str("model", config.Claude.Model).
		Int("max_tokens", config.Claude.MaxTokens).
		Dur("timeout", service.timeout).
		Msg("Claude service initialized")

	return service, nil
}

// Chat generates a completion from the conversation history using the
// configured Claude model.
func (s *ClaudeService) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	claudeMessages, systemText, err := convertMessagesToClaude(messages)
	if err != nil {
		return "", &models.GenerationError{Provider: ProviderClaude, Err: err}
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(s.config.Claude.Model),
		MaxTokens:   int64(s.config.Claude.MaxTokens),
		Messages:    claudeMessages,
		Temperature: anthropic.Float(float64(s.config.Claude.Temperature)),
	}
	if systemText != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemText},
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", &models.GenerationError{Provider: ProviderClaude, Err: err}
	}

	startTime := time.Now()
	s.logger.Debug().
		Int("message_count", len(messages)).
		Msg("Starting Claude chat completion")

	var response string
	err = callWithRetry(ctx, s.retry, s.logger, "claude generate", func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		resp, err := s.client.Messages.New(attemptCtx, params)
		if err != nil {
			return err
		}
		text, err := claudeText(resp)
		if err != nil {
			return err
		}
		response = text
		return nil
	})

	recordAudit(s.audit, models.AuditOpGenerate, ProviderClaude, s.config.Claude.Model, startTime, lastUserContent(messages), err)
	if err != nil {
		if models.IsBlocked(err) {
			s.logger.Warn().
				Str("reason", err.Error()).
				Msg("Claude generation refused")
			return "", err
		}
		s.logger.Error().
			Err(err).
			Int("message_count", len(messages)).
			Msg("Claude chat completion failed")
		return "", &models.GenerationError{Provider: ProviderClaude, Err: err}
	}

	s.logger.Info().
		Int("message_count", len(messages)).
		Int("response_length", len(response)).
		Dur("duration", time.Since(startTime)).
		Msg("Claude chat completion completed")

	return response, nil
}

// claudeText extracts the text blocks from a message response. A refusal
// stop reason is surfaced as *models.GenerationBlocked.
func claudeText(resp *anthropic.Message) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("empty response from Claude API")
	}

	if string(resp.StopReason) == "refusal" {
		return "", &models.GenerationBlocked{Provider: ProviderClaude, Reason: "refusal"}
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	if text.Len() == 0 {
		return "", fmt.Errorf("empty response from Claude API")
	}

	return text.String(), nil
}

// ModelName returns the configured chat model identifier.
func (s *ClaudeService) ModelName() string {
	return s.config.Claude.Model
}

// ProviderName returns the provider key.
func (s *ClaudeService) ProviderName() string {
	return ProviderClaude
}

// Close releases the client reference.
func (s *ClaudeService) Close() error {
	s.logger.Info().Msg("Closing Claude service")
	s.client = anthropic.Client{}
	return nil
}
