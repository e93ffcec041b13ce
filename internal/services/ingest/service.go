// -----------------------------------------------------------------------
// Ingest Service - Turn source files into page-structured documents
// Supports PDF, markdown, and HTML sources
// -----------------------------------------------------------------------

package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/models"
)

// Markdown sources use this marker to carry page boundaries; it matches the
// marker the PDF render service understands, so the two formats round-trip.
var pageBreakPattern = regexp.MustCompile(`(?i)<!--\s*pagebreak\s*-->`)

// Service implements interfaces.IngestService
type Service struct {
	extractor interfaces.PDFExtractor
	logger    arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.IngestService = (*Service)(nil)

// NewService creates a new ingest service
func NewService(extractor interfaces.PDFExtractor, logger arbor.ILogger) *Service {
	return &Service{
		extractor: extractor,
		logger:    logger,
	}
}

// IngestFile reads and converts a document from the local filesystem
func (s *Service) IngestFile(ctx context.Context, path string) (*models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &models.IngestionError{Source: path, Reason: "unreadable source", Err: err}
	}
	return s.IngestBytes(ctx, filepath.Base(path), data)
}

// IngestBytes converts an in-memory document
func (s *Service) IngestBytes(ctx context.Context, name string, data []byte) (*models.Document, error) {
	start := time.Now()

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &models.IngestionError{Source: name, Reason: "empty source"}
	}

	format, err := detectFormat(name, data)
	if err != nil {
		return nil, err
	}

	var pages []models.Page
	switch format {
	case models.FormatPDF:
		pages, err = s.pdfPages(ctx, name, data)
	case models.FormatHTML:
		var title string
		pages, title, err = s.htmlPages(name, data)
		if err == nil && title != "" {
			name = title
		}
	case models.FormatMarkdown:
		pages = markdownPages(string(data))
	default:
		err = &models.IngestionError{Source: name, Reason: fmt.Sprintf("unsupported format %q", format)}
	}
	if err != nil {
		return nil, err
	}

	if !hasText(pages) {
		return nil, &models.IngestionError{Source: name, Reason: "no extractable text"}
	}

	doc := &models.Document{
		ID:         common.NewDocumentID(),
		Name:       name,
		Format:     format,
		Pages:      pages,
		IngestedAt: time.Now(),
	}

	s.logger.Info().
		Str("document_id", doc.ID).
		Str("name", doc.Name).
		Str("format", string(format)).
		Int("pages", len(pages)).
		Dur("duration", time.Since(start)).
		Msg("Document ingested")

	return doc, nil
}

// pdfPages extracts page text through the PDF extractor. Empty pages are
// kept so page numbers stay aligned with the source document.
func (s *Service) pdfPages(ctx context.Context, name string, data []byte) ([]models.Page, error) {
	extracted, err := s.extractor.ExtractPages(ctx, data)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &models.IngestionError{Source: name, Reason: "PDF extraction failed", Err: err}
	}

	pages := make([]models.Page, 0, len(extracted))
	for _, page := range extracted {
		pages = append(pages, models.Page{
			Number: page.PageNumber,
			Text:   strings.TrimSpace(page.Text),
		})
	}
	return pages, nil
}

// htmlPages converts HTML to markdown and pages it. The document title, if
// present, replaces the filename as the document name.
func (s *Service) htmlPages(name string, data []byte) ([]models.Page, string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, "", &models.IngestionError{Source: name, Reason: "failed to parse HTML", Err: err}
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	// Chrome elements carry no study content
	doc.Find("script, style, nav, footer, aside").Remove()

	html, err := doc.Html()
	if err != nil {
		return nil, "", &models.IngestionError{Source: name, Reason: "failed to serialize HTML", Err: err}
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return nil, "", &models.IngestionError{Source: name, Reason: "failed to convert HTML to markdown", Err: err}
	}

	return markdownPages(markdown), title, nil
}

// markdownPages splits markdown into pages on the page break marker. Without
// markers the whole document is a single page.
func markdownPages(markdown string) []models.Page {
	parts := pageBreakPattern.Split(markdown, -1)

	pages := make([]models.Page, 0, len(parts))
	for i, part := range parts {
		pages = append(pages, models.Page{
			Number: i + 1,
			Text:   strings.TrimSpace(part),
		})
	}
	return pages
}

// detectFormat decides the ingestion path by extension, falling back to a
// content sniff for extensionless names.
func detectFormat(name string, data []byte) (models.SourceFormat, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return models.FormatPDF, nil
	case ".md", ".markdown", ".txt":
		return models.FormatMarkdown, nil
	case ".html", ".htm":
		return models.FormatHTML, nil
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}

	if bytes.HasPrefix(head, []byte("%PDF-")) {
		return models.FormatPDF, nil
	}

	lower := bytes.ToLower(head)
	if bytes.Contains(lower, []byte("<!doctype html")) || bytes.Contains(lower, []byte("<html")) {
		return models.FormatHTML, nil
	}

	// Other binary content is not ingestible
	if bytes.ContainsRune(head, 0) {
		return "", &models.IngestionError{Source: name, Reason: "unrecognized binary format"}
	}

	return models.FormatMarkdown, nil
}

func hasText(pages []models.Page) bool {
	for _, page := range pages {
		if strings.TrimSpace(page.Text) != "" {
			return true
		}
	}
	return false
}
