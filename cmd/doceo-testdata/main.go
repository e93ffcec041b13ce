// -----------------------------------------------------------------------
// doceo-testdata - generate a small study-note corpus for development
// -----------------------------------------------------------------------

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"

	"github.com/ternarybob/doceo/internal/app"
	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/services/pdf"
	"github.com/ternarybob/doceo/internal/subjects"
)

// note is one generated study note. The markdown uses the same pagebreak
// markers the PDF renderer emits, so both formats ingest identically.
type note struct {
	title    string
	markdown string
}

// generated records one written note pair
type generated struct {
	subject string
	mdPath  string
	pdfPath string
}

// TestDataSetup writes one markdown study note and its rendered PDF per
// catalog subject, and can ingest the results for end-to-end testing.
type TestDataSetup struct {
	outputDir  string
	pdfService interfaces.PDFService
	logger     arbor.ILogger
}

func NewTestDataSetup(outputDir string, logger arbor.ILogger) *TestDataSetup {
	return &TestDataSetup{
		outputDir:  outputDir,
		pdfService: pdf.NewService(logger),
		logger:     logger,
	}
}

// WriteCorpus writes the note pair for every subject that has one.
func (t *TestDataSetup) WriteCorpus(catalog *subjects.Catalog) ([]generated, error) {
	if err := os.MkdirAll(t.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var files []generated
	for _, subject := range catalog.All() {
		n, ok := corpus[subject.Name]
		if !ok {
			t.logger.Warn().Str("subject", subject.Name).Msg("  ⚠ No sample note for subject, skipping")
			continue
		}

		base := filepath.Join(t.outputDir, common.SanitizeNamespace(subject.Name))

		mdPath := base + ".md"
		if err := os.WriteFile(mdPath, []byte(n.markdown), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", mdPath, err)
		}

		pdfData, err := t.pdfService.ConvertMarkdownToPDF(n.markdown, n.title)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", n.title, err)
		}
		pdfPath := base + ".pdf"
		if err := os.WriteFile(pdfPath, pdfData, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", pdfPath, err)
		}

		t.logger.Info().
			Str("subject", subject.Name).
			Str("markdown", mdPath).
			Str("pdf", pdfPath).
			Msg("✓ Wrote study note")

		files = append(files, generated{subject: subject.Name, mdPath: mdPath, pdfPath: pdfPath})
	}

	return files, nil
}

// IngestCorpus indexes every generated PDF into its subject.
func (t *TestDataSetup) IngestCorpus(application *app.App, files []generated) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	for _, file := range files {
		summary, err := application.SessionService.IngestDocument(ctx, file.subject, file.pdfPath)
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", file.pdfPath, err)
		}
		t.logger.Info().
			Str("subject", summary.Subject).
			Int("pages", summary.PageCount).
			Int("chunks", summary.ChunkCount).
			Msg("✓ Ingested study note")
	}
	return nil
}

func main() {
	// Initialize Arbor logger for console output
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		TextOutput:       true,
		DisableTimestamp: false,
	})

	outputDir := os.Getenv("DOCEO_TESTDATA_DIR")
	if outputDir == "" {
		outputDir = "./testdata"
	}

	// Check if ingest flag is set
	ingest := false
	for _, arg := range os.Args[1:] {
		if arg == "--ingest" || arg == "-i" {
			ingest = true
			break
		}
	}

	configPath := os.Getenv("DOCEO_CONFIG")
	if configPath == "" {
		if _, err := os.Stat("doceo.toml"); err == nil {
			configPath = "doceo.toml"
		}
	}
	config, err := common.LoadFromFile(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	catalog, err := subjects.Load(config.Subjects.CatalogPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load subject catalog")
	}

	logger.Info().Str("output_dir", outputDir).Msg("Generating study-note corpus...")
	logger.Info().Msg("====================================================")

	setup := NewTestDataSetup(outputDir, logger)
	files, err := setup.WriteCorpus(catalog)
	if err != nil {
		logger.Fatal().Err(err).Msg("Corpus generation failed")
	}

	if ingest {
		logger.Info().Msg("")
		logger.Info().Msg("Ingesting corpus...")

		application, err := app.New(config, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("❌ Failed to initialize application - Set GEMINI_API_KEY to ingest")
		}
		defer application.Close()

		if err := setup.IngestCorpus(application, files); err != nil {
			logger.Fatal().Err(err).Msg("Ingest failed")
		}
	}

	logger.Info().Msg("")
	logger.Info().Msg("====================================================")
	logger.Info().Msg("✅ Test data setup complete!")
	logger.Info().Msg("")
	logger.Info().Int("notes", len(files)).Msg("Summary:")
	for _, file := range files {
		logger.Info().Str("subject", file.subject).Msg("  • Study note")
	}
	logger.Info().Msg("")
	if !ingest {
		logger.Info().Msg("You can now:")
		logger.Info().Msg("  1. Re-run with --ingest to index every note (needs GEMINI_API_KEY)")
		logger.Info().Msg("  2. Or index one: doceo ingest -subject \"Data Engineering\" testdata/Data_Engineering.pdf")
		logger.Info().Msg("  3. Then ask: doceo ask -subject \"Data Engineering\" \"What does a watermark bound?\"")
		logger.Info().Msg("")
	}
}
