package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/models"
)

// Embedding task types understood by the Gemini embedding API. Corpus chunks
// are embedded for storage, questions for lookup; the model optimizes the
// vector for each side.
const (
	taskTypeDocument = "RETRIEVAL_DOCUMENT"
	taskTypeQuery    = "RETRIEVAL_QUERY"
)

// GeminiService wraps the Gemini API for both embedding and chat completion.
// It is the only embedding provider; as a generation provider it competes
// with ClaudeService behind the same interface.
//
// All outbound calls share one rate limiter, honor the configured per-attempt
// timeout, and retry on transient failures. Every call is written to the
// audit log best-effort.
type GeminiService struct {
	config  *common.Config
	logger  arbor.ILogger
	audit   interfaces.AuditLogger
	client  *genai.Client
	safety  []*genai.SafetySetting
	limiter *rate.Limiter
	retry   *RetryConfig
	timeout time.Duration
}

var (
	_ interfaces.LLMService       = (*GeminiService)(nil)
	_ interfaces.EmbeddingService = (*GeminiService)(nil)
)

// NewGeminiService creates a Gemini service from the loaded configuration.
// It fails when no API key is configured; connectivity is not probed here,
// the first real call surfaces auth problems.
func NewGeminiService(config *common.Config, audit interfaces.AuditLogger, logger arbor.ILogger) (*GeminiService, error) {
	if config.Gemini.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or gemini.api_key in config)")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	service := &GeminiService{
		config:  config,
		logger:  logger,
		audit:   audit,
		client:  client,
		safety:  buildSafetySettings(config.Safety),
		limiter: rate.NewLimiter(rate.Every(config.GeminiRateLimit()), 1),
		retry:   NewDefaultRetryConfig(),
		timeout: config.GeminiTimeout(),
	}

	logger.Info().
		Str("chat_model", config.Gemini.Model).
		Str("embed_model", config.Gemini.EmbeddingModel).
		Int("embed_dimension", config.Gemini.EmbedDimension).
		Dur("timeout", service.timeout).
		Msg("Gemini service initialized")

	return service, nil
}

// EmbedDocuments embeds a batch of corpus chunks in order. The call is all
// or nothing: any failed chunk fails the batch, so an index build never
// persists a partially embedded corpus.
func (s *GeminiService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts provided for embedding")
	}

	startTime := time.Now()
	batchLabel := fmt.Sprintf("[batch of %d texts]", len(texts))
	s.logger.Debug().
		Int("text_count", len(texts)).
		Msg("Starting document embedding batch")

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		embedding, err := s.embed(ctx, text, taskTypeDocument)
		if err != nil {
			recordAudit(s.audit, models.AuditOpEmbed, ProviderGemini, s.config.Gemini.EmbeddingModel, startTime, batchLabel, err)
			s.logger.Error().
				Err(err).
				Int("index", i).
				Int("text_count", len(texts)).
				Msg("Document embedding batch failed")
			return nil, &models.EmbeddingError{Model: s.config.Gemini.EmbeddingModel, Err: err}
		}
		vectors[i] = embedding
	}

	recordAudit(s.audit, models.AuditOpEmbed, ProviderGemini, s.config.Gemini.EmbeddingModel, startTime, batchLabel, nil)
	s.logger.Info().
		Int("text_count", len(texts)).
		Dur("duration", time.Since(startTime)).
		Msg("Document embedding batch completed")

	return vectors, nil
}

// EmbedQuery embeds a single retrieval question.
func (s *GeminiService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	startTime := time.Now()
	embedding, err := s.embed(ctx, text, taskTypeQuery)
	recordAudit(s.audit, models.AuditOpEmbed, ProviderGemini, s.config.Gemini.EmbeddingModel, startTime, text, err)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("Query embedding failed")
		return nil, &models.EmbeddingError{Model: s.config.Gemini.EmbeddingModel, Err: err}
	}
	return embedding, nil
}

// embed performs one embedding call with rate limiting, per-attempt timeout,
// and retries, then validates the returned dimensionality.
func (s *GeminiService) embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty for embedding generation")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	outputDim := int32(s.config.Gemini.EmbedDimension)
	embeddingConfig := &genai.EmbedContentConfig{
		TaskType:             taskType,
		OutputDimensionality: &outputDim,
	}
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}

	var embedding []float32
	err := callWithRetry(ctx, s.retry, s.logger, "gemini embed", func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		result, err := s.client.Models.EmbedContent(attemptCtx, s.config.Gemini.EmbeddingModel, contents, embeddingConfig)
		if err != nil {
			return err
		}
		if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
			return fmt.Errorf("no embedding returned from API")
		}
		embedding = result.Embeddings[0].Values
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(embedding) != s.config.Gemini.EmbedDimension {
		return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", s.config.Gemini.EmbedDimension, len(embedding))
	}

	return embedding, nil
}

// Chat generates a completion from the conversation history using the
// configured Gemini chat model with the configured safety thresholds.
func (s *GeminiService) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	geminiContents, systemText, err := convertMessagesToGemini(messages)
	if err != nil {
		return "", &models.GenerationError{Provider: ProviderGemini, Err: err}
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature:    genai.Ptr(s.config.Gemini.Temperature),
		SafetySettings: s.safety,
	}
	if systemText != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", &models.GenerationError{Provider: ProviderGemini, Err: err}
	}

	startTime := time.Now()
	s.logger.Debug().
		Int("message_count", len(messages)).
		Msg("Starting Gemini chat completion")

	var response string
	err = callWithRetry(ctx, s.retry, s.logger, "gemini generate", func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		resp, err := s.client.Models.GenerateContent(attemptCtx, s.config.Gemini.Model, geminiContents, genConfig)
		if err != nil {
			return err
		}
		text, err := completionText(resp)
		if err != nil {
			return err
		}
		response = text
		return nil
	})

	recordAudit(s.audit, models.AuditOpGenerate, ProviderGemini, s.config.Gemini.Model, startTime, lastUserContent(messages), err)
	if err != nil {
		if models.IsBlocked(err) {
			s.logger.Warn().
				Str("reason", err.Error()).
				Msg("Gemini generation blocked by safety policy")
			return "", err
		}
		s.logger.Error().
			Err(err).
			Int("message_count", len(messages)).
			Msg("Gemini chat completion failed")
		return "", &models.GenerationError{Provider: ProviderGemini, Err: err}
	}

	s.logger.Info().
		Int("message_count", len(messages)).
		Int("response_length", len(response)).
		Dur("duration", time.Since(startTime)).
		Msg("Gemini chat completion completed")

	return response, nil
}

// completionText extracts the generated text from a response, surfacing
// safety blocks as *models.GenerationBlocked so callers and the retry loop
// can tell policy outcomes from failures.
func completionText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("no response generated from chat model")
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", &models.GenerationBlocked{
			Provider: ProviderGemini,
			Reason:   fmt.Sprintf("prompt blocked (%s)", resp.PromptFeedback.BlockReason),
		}
	}

	// Iterate candidates until one yields non-empty text
	var response strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.FinishReason == genai.FinishReasonSafety {
			return "", &models.GenerationBlocked{
				Provider: ProviderGemini,
				Reason:   fmt.Sprintf("response blocked (%s)", candidate.FinishReason),
			}
		}
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				response.WriteString(part.Text)
			}
		}
		if response.Len() > 0 {
			break
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from chat model")
	}

	return response.String(), nil
}

// ModelName returns the configured chat model identifier.
func (s *GeminiService) ModelName() string {
	return s.config.Gemini.Model
}

// ProviderName returns the provider key.
func (s *GeminiService) ProviderName() string {
	return ProviderGemini
}

// EmbeddingModel returns the configured embedding model identifier.
func (s *GeminiService) EmbeddingModel() string {
	return s.config.Gemini.EmbeddingModel
}

// Dimension returns the configured embedding dimensionality.
func (s *GeminiService) Dimension() int {
	return s.config.Gemini.EmbedDimension
}

// Close releases the client reference. The genai client holds no connections
// that need explicit shutdown.
func (s *GeminiService) Close() error {
	s.logger.Info().Msg("Closing Gemini service")
	s.client = nil
	return nil
}
