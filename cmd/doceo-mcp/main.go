// -----------------------------------------------------------------------
// doceo-mcp - MCP stdio server exposing the doceo pipeline as tools
// -----------------------------------------------------------------------

package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"

	"github.com/ternarybob/doceo/internal/app"
	"github.com/ternarybob/doceo/internal/common"
)

func main() {
	defer common.RecoverWithCrashFile()

	// Load configuration
	configPath := os.Getenv("DOCEO_CONFIG")
	if configPath == "" {
		// Auto-load doceo.toml only when it exists; defaults plus env
		// variables are enough to run without one.
		if _, err := os.Stat("doceo.toml"); err == nil {
			configPath = "doceo.toml"
		}
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize minimal logger for MCP server (console only, no file output)
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn") // Minimal logging to avoid cluttering MCP stdio

	// Initialize the full pipeline; ask_subject and ingest_document need it
	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	// This is a long-lived mode, so background maintenance runs here
	if err := application.StartScheduler(); err != nil {
		logger.Warn().Err(err).Msg("Failed to start maintenance scheduler")
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		"doceo",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	// Register tools
	mcpServer.AddTool(createListSubjectsTool(), handleListSubjects(application.SessionService, logger))
	mcpServer.AddTool(createIndexStatusTool(), handleIndexStatus(application.SessionService, logger))
	mcpServer.AddTool(createIngestDocumentTool(), handleIngestDocument(application.SessionService, logger))
	mcpServer.AddTool(createAskSubjectTool(), handleAskSubject(application.SessionService, logger))

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
