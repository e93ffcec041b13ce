package retrieval

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/models"
)

// variantPrompt asks for plain newline-separated paraphrases. Wording
// adapted from LangChain's MultiQueryRetriever default prompt.
const variantPrompt = `You are an AI language model assistant. Your task is to generate %d different versions of the given user question to retrieve relevant documents from a vector database. By generating multiple perspectives on the user question, your goal is to help the user overcome some of the limitations of distance-based similarity search. Provide these alternative questions separated by newlines, without numbering.

Original question: %s`

// listMarkerRegex matches the list numbering and bullet prefixes models
// tend to add despite instructions.
var listMarkerRegex = regexp.MustCompile(`^(?:\d+[.)]\s*|[-*•]\s+)`)

// generateVariants asks the generation model for paraphrases of the
// question. Best effort: any failure or unusable output yields nil and the
// caller retrieves with the original question alone.
func (s *Service) generateVariants(ctx context.Context, question string) []string {
	count := s.variantCount()
	start := time.Now()

	prompt := fmt.Sprintf(variantPrompt, count, question)
	response, err := s.llm.Chat(ctx, []interfaces.Message{{Role: "user", Content: prompt}})

	var variants []string
	if err == nil {
		variants = parseVariants(response, question, count)
	}

	if s.audit != nil {
		record := &models.AuditRecord{
			Operation:  models.AuditOpVariants,
			Provider:   s.llm.ProviderName(),
			Model:      s.llm.ModelName(),
			Success:    err == nil && len(variants) > 0,
			DurationMS: time.Since(start).Milliseconds(),
			QueryText:  question,
		}
		if err != nil {
			record.Error = err.Error()
		}
		s.audit.Record(record)
	}

	if err != nil {
		s.logger.Warn().
			Err(err).
			Msg("Variant generation failed, retrieving with original question only")
		return nil
	}
	if len(variants) == 0 {
		s.logger.Warn().
			Msg("Variant generation produced nothing usable, retrieving with original question only")
		return nil
	}

	s.logger.Debug().
		Int("variants", len(variants)).
		Msg("Query variants generated")

	return variants
}

// parseVariants extracts usable paraphrases from the model output: one per
// line, list markers and surrounding quotes stripped, blank lines,
// duplicates, and restatements of the original question dropped.
func parseVariants(response, question string, limit int) []string {
	seen := map[string]struct{}{
		normalizeVariant(question): {},
	}

	var variants []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		line = listMarkerRegex.ReplaceAllString(line, "")
		line = strings.TrimSpace(strings.Trim(line, `"`))
		if line == "" {
			continue
		}

		key := normalizeVariant(line)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		variants = append(variants, line)
		if len(variants) == limit {
			break
		}
	}
	return variants
}

func normalizeVariant(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// variantCount returns how many paraphrases to request, clamped to 3-5.
func (s *Service) variantCount() int {
	count := s.config.Retrieval.VariantCount
	if count < 3 {
		return 3
	}
	if count > 5 {
		return 5
	}
	return count
}
