package answer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/doceo/internal/models"
)

// buildContext assembles the numbered context block sent to the model.
// Chunks go in retrieval order, each prefixed with its document ordinal and
// page locator. The character budget drops the lowest-ranked chunks first:
// a chunk is either fully present and citable, or absent. The first chunk
// is always included so the model never answers from an empty context.
func buildContext(chunks []models.RetrievedChunk, budget int) (string, []models.RetrievedChunk) {
	var sections []string
	var included []models.RetrievedChunk
	total := 0

	for _, chunk := range chunks {
		section := fmt.Sprintf("Document %d (Page %d):\n%s", len(included)+1, chunk.Page, chunk.Text)

		cost := utf8.RuneCountInString(section)
		if len(included) > 0 {
			cost += 2 // separating blank line
			if total+cost > budget {
				break
			}
		}

		sections = append(sections, section)
		included = append(included, chunk)
		total += cost
	}

	return strings.Join(sections, "\n\n"), included
}

// preview returns the first n runes of text, with an ellipsis when cut.
func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
