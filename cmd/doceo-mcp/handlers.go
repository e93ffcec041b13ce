package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/models"
)

// textResult wraps plain text in a tool result
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// handleListSubjects implements the list_subjects tool
func handleListSubjects(session interfaces.SessionService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		subjects := session.Subjects()

		// Parallel to subjects; nil means no index built
		statuses := make([]*models.IndexManifest, len(subjects))
		for i, subject := range subjects {
			manifest, err := session.Status(ctx, subject.Name)
			if err != nil {
				if !errors.Is(err, models.ErrIndexNotBuilt) {
					logger.Error().Err(err).Str("subject", subject.Name).Msg("Status failed")
				}
				continue
			}
			statuses[i] = manifest
		}

		return textResult(formatSubjects(subjects, statuses)), nil
	}
}

// handleIndexStatus implements the index_status tool
func handleIndexStatus(session interfaces.SessionService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		subject, err := request.RequireString("subject")
		if err != nil || subject == "" {
			return textResult("Error: subject parameter is required"), nil
		}

		manifest, err := session.Status(ctx, subject)
		if err != nil {
			if errors.Is(err, models.ErrIndexNotBuilt) {
				return textResult(fmt.Sprintf("No index built for %q yet. Use ingest_document first.", subject)), nil
			}
			logger.Error().Err(err).Str("subject", subject).Msg("Status failed")
			return textResult(fmt.Sprintf("Status error: %v", err)), nil
		}

		return textResult(formatManifest(manifest)), nil
	}
}

// handleIngestDocument implements the ingest_document tool
func handleIngestDocument(session interfaces.SessionService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		subject, err := request.RequireString("subject")
		if err != nil || subject == "" {
			return textResult("Error: subject parameter is required"), nil
		}
		path, err := request.RequireString("path")
		if err != nil || path == "" {
			return textResult("Error: path parameter is required"), nil
		}

		summary, err := session.IngestDocument(ctx, subject, path)
		if err != nil {
			logger.Error().Err(err).Str("subject", subject).Str("path", path).Msg("Ingest failed")
			return textResult(fmt.Sprintf("Ingest error: %v", err)), nil
		}

		return textResult(formatBuildSummary(summary)), nil
	}
}

// handleAskSubject implements the ask_subject tool
func handleAskSubject(session interfaces.SessionService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		subject, err := request.RequireString("subject")
		if err != nil || subject == "" {
			return textResult("Error: subject parameter is required"), nil
		}
		question, err := request.RequireString("question")
		if err != nil || question == "" {
			return textResult("Error: question parameter is required"), nil
		}

		result, err := session.Ask(ctx, subject, question)
		if err != nil {
			switch {
			case models.IsBlocked(err):
				return textResult("The model declined to answer this question (content safety policy)."), nil
			case errors.Is(err, models.ErrIndexNotBuilt):
				return textResult(fmt.Sprintf("No index built for %q yet. Use ingest_document first.", subject)), nil
			}
			logger.Error().Err(err).Str("subject", subject).Msg("Ask failed")
			return textResult(fmt.Sprintf("Ask error: %v", err)), nil
		}

		return textResult(formatAnswer(result)), nil
	}
}
