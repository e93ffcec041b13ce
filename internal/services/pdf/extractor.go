// -----------------------------------------------------------------------
// PDF Extractor Service - Extract text content from PDF documents
// Uses pdfcpu for Go-native PDF processing
// -----------------------------------------------------------------------

package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/doceo/internal/interfaces"
)

// Extractor implements the PDFExtractor interface using pdfcpu. pdfcpu has
// no direct text extraction, so pages are extracted as decoded content
// streams and the text-showing operators are parsed out of them.
type Extractor struct {
	logger  arbor.ILogger
	tempDir string
}

// Compile-time interface assertion
var _ interfaces.PDFExtractor = (*Extractor)(nil)

// Matches pdfcpu's extracted content file names ("Content_page_3.txt").
var contentPagePattern = regexp.MustCompile(`(?i)page[_-]?(\d+)`)

// NewExtractor creates a new PDF extractor service
func NewExtractor(logger arbor.ILogger) *Extractor {
	// Create a temp directory for PDF processing
	tempDir := filepath.Join(os.TempDir(), "doceo-pdf")
	os.MkdirAll(tempDir, 0755)

	return &Extractor{
		logger:  logger,
		tempDir: tempDir,
	}
}

// ExtractPages extracts text content by page from a PDF.
func (e *Extractor) ExtractPages(ctx context.Context, data []byte) ([]interfaces.PDFPageContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// pdfcpu works on files, so stage the document in the temp directory
	tempFile, err := e.writeTempPDF(data)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tempFile)

	pdfCtx, err := api.ReadContextFile(tempFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	pageCount := pdfCtx.PageCount

	outDir, err := os.MkdirTemp(e.tempDir, "pages_")
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction directory: %w", err)
	}
	defer os.RemoveAll(outDir)

	pages := make([]interfaces.PDFPageContent, 0, pageCount)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(tempFile, outDir, nil, conf); err != nil {
		e.logger.Warn().Err(err).Msg("Failed to extract PDF content, returning empty pages")
		// Keep page numbers aligned with the source even when extraction
		// fails; the caller decides whether text-free pages are an error.
		for pageNum := 1; pageNum <= pageCount; pageNum++ {
			pages = append(pages, interfaces.PDFPageContent{PageNumber: pageNum, Text: ""})
		}
		return pages, nil
	}

	// Read extracted content streams and decode their text operators
	pageTexts := make(map[int]string)
	files, _ := os.ReadDir(outDir)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		match := contentPagePattern.FindStringSubmatch(file.Name())
		if match == nil {
			continue
		}
		pageNum, err := strconv.Atoi(match[1])
		if err != nil || pageNum < 1 {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			e.logger.Warn().Err(err).Str("file", file.Name()).Msg("Failed to read extracted page content")
			continue
		}
		pageTexts[pageNum] = decodeContentText(content)
	}

	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		pages = append(pages, interfaces.PDFPageContent{
			PageNumber: pageNum,
			Text:       pageTexts[pageNum],
		})
	}

	return pages, nil
}

// GetMetadata retrieves PDF metadata without extracting text content.
func (e *Extractor) GetMetadata(ctx context.Context, data []byte) (*interfaces.PDFMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tempFile, err := e.writeTempPDF(data)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tempFile)

	pdfCtx, err := api.ReadContextFile(tempFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}

	metadata := &interfaces.PDFMetadata{
		PageCount:   pdfCtx.PageCount,
		FileSize:    int64(len(data)),
		IsEncrypted: pdfCtx.Encrypt != nil,
	}

	e.logger.Debug().
		Int("page_count", metadata.PageCount).
		Int64("file_size", metadata.FileSize).
		Bool("encrypted", metadata.IsEncrypted).
		Msg("Extracted PDF metadata")

	return metadata, nil
}

func (e *Extractor) writeTempPDF(data []byte) (string, error) {
	tempFile, err := os.CreateTemp(e.tempDir, "extract_*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp PDF file: %w", err)
	}
	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempFile.Name())
		return "", fmt.Errorf("failed to write temp PDF file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempFile.Name())
		return "", fmt.Errorf("failed to close temp PDF file: %w", err)
	}
	return tempFile.Name(), nil
}
