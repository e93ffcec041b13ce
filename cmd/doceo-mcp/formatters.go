package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/doceo/internal/models"
)

// formatSubjects formats the subject catalog as markdown. statuses is
// parallel to subjects; a nil entry means the subject has no index.
func formatSubjects(subjects []models.Subject, statuses []*models.IndexManifest) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Subjects (%d)\n\n", len(subjects)))

	for i, subject := range subjects {
		sb.WriteString(fmt.Sprintf("### %d. %s\n", i+1, subject.Name))
		if subject.Description != "" {
			sb.WriteString(subject.Description + "\n")
		}
		if manifest := statuses[i]; manifest != nil {
			sb.WriteString(fmt.Sprintf("**Index:** %d chunks from \"%s\", built %s\n",
				manifest.ChunkCount, manifest.DocumentName, manifest.BuiltAt.Format(time.RFC3339)))
		} else {
			sb.WriteString("**Index:** not built\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatManifest formats one subject's index manifest as markdown
func formatManifest(manifest *models.IndexManifest) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Index for %s\n\n", manifest.Subject))
	sb.WriteString(fmt.Sprintf("**Document:** %s\n", manifest.DocumentName))
	sb.WriteString(fmt.Sprintf("**Pages:** %d\n", manifest.PageCount))
	sb.WriteString(fmt.Sprintf("**Chunks:** %d\n", manifest.ChunkCount))
	sb.WriteString(fmt.Sprintf("**Embedding model:** %s (%d dimensions)\n", manifest.EmbeddingModel, manifest.Dimensions))
	sb.WriteString(fmt.Sprintf("**Built:** %s\n", manifest.BuiltAt.Format(time.RFC3339)))
	return sb.String()
}

// formatBuildSummary formats a completed ingest as markdown
func formatBuildSummary(summary *models.BuildSummary) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Ingested \"%s\" into %s\n\n", summary.Document, summary.Subject))
	sb.WriteString(fmt.Sprintf("**Pages:** %d\n", summary.PageCount))
	sb.WriteString(fmt.Sprintf("**Chunks:** %d\n", summary.ChunkCount))
	sb.WriteString(fmt.Sprintf("**Duration:** %s\n", summary.Duration.Round(time.Millisecond)))
	sb.WriteString("\nThe previous index for this subject, if any, was replaced.\n")
	return sb.String()
}

// formatAnswer formats an answer with its citations as markdown
func formatAnswer(result *models.AnswerResult) string {
	var sb strings.Builder
	sb.WriteString(result.Text)
	sb.WriteString("\n")

	if len(result.Citations) > 0 {
		sb.WriteString("\n### Sources\n\n")
		for _, citation := range result.Citations {
			// Collapse runs of whitespace so each citation stays on one line
			preview := strings.Join(strings.Fields(citation.Preview), " ")
			if len(preview) > 200 {
				preview = preview[:200] + "..."
			}
			sb.WriteString(fmt.Sprintf("%d. Page %d: %s\n", citation.Index, citation.Page, preview))
		}
	}

	sb.WriteString(fmt.Sprintf("\nAnswered by %s.\n", result.Model))
	return sb.String()
}
