package pdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestDecodeContentText(t *testing.T) {
	tests := []struct {
		name     string
		stream   string
		expected string
	}{
		{
			name:     "simple text object",
			stream:   "BT /F1 9.00 Tf 10.00 800.00 Td (Hello world) Tj ET",
			expected: "Hello world",
		},
		{
			name:     "strings outside text objects ignored",
			stream:   "(not shown) BT (shown) Tj ET (also not shown)",
			expected: "shown",
		},
		{
			name:     "multiple shown strings become lines",
			stream:   "BT (line one) Tj 0 -12 Td (line two) Tj ET",
			expected: "line one\nline two",
		},
		{
			name:     "escaped parentheses and backslash",
			stream:   `BT (f\(x\) = y \\ z) Tj ET`,
			expected: `f(x) = y \ z`,
		},
		{
			name:     "balanced nested parentheses",
			stream:   "BT (outer (inner) outer) Tj ET",
			expected: "outer (inner) outer",
		},
		{
			name:     "octal escape",
			stream:   `BT (a\053b) Tj ET`,
			expected: "a+b",
		},
		{
			name:     "hex string",
			stream:   "BT <48656C6C6F> Tj ET",
			expected: "Hello",
		},
		{
			name:     "TJ array",
			stream:   "BT [(Hel) -10 (lo)] TJ ET",
			expected: "Hel\nlo",
		},
		{
			name:     "comment skipped",
			stream:   "% (comment string)\nBT (real) Tj ET",
			expected: "real",
		},
		{
			name:     "empty stream",
			stream:   "",
			expected: "",
		},
		{
			name:     "graphics only",
			stream:   "0.57 w 10.00 10.00 190.00 0.57 re f",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, decodeContentText([]byte(tt.stream)))
		})
	}
}

func TestExtractPagesRoundTrip(t *testing.T) {
	logger := arbor.NewLogger()
	service := NewService(logger)
	extractor := NewExtractor(logger)

	markdown := `# Geography Notes

This introduction sits on the first page of the document.

<!-- pagebreak -->

The capital of Examplestan is Quuxville.
`
	pdfBytes, err := service.ConvertMarkdownToPDF(markdown, "Geography Notes")
	require.NoError(t, err)

	pages, err := extractor.ExtractPages(context.Background(), pdfBytes)
	require.NoError(t, err)
	require.Len(t, pages, 2)

	assert.Equal(t, 1, pages[0].PageNumber)
	assert.Contains(t, pages[0].Text, "first page")
	assert.NotContains(t, pages[0].Text, "Quuxville")

	assert.Equal(t, 2, pages[1].PageNumber)
	assert.Contains(t, pages[1].Text, "Quuxville")
}

func TestExtractPagesInvalidPDF(t *testing.T) {
	logger := arbor.NewLogger()
	extractor := NewExtractor(logger)

	_, err := extractor.ExtractPages(context.Background(), []byte("this is not a pdf"))
	assert.Error(t, err)
}

func TestExtractPagesCancelledContext(t *testing.T) {
	logger := arbor.NewLogger()
	extractor := NewExtractor(logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := extractor.ExtractPages(ctx, []byte("%PDF-1.4"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetMetadata(t *testing.T) {
	logger := arbor.NewLogger()
	service := NewService(logger)
	extractor := NewExtractor(logger)

	pdfBytes, err := service.ConvertMarkdownToPDF("# One\n\ntext\n\n<!-- pagebreak -->\n\nmore\n\n<!-- pagebreak -->\n\nlast", "Three Pages")
	require.NoError(t, err)

	metadata, err := extractor.GetMetadata(context.Background(), pdfBytes)
	require.NoError(t, err)
	assert.Equal(t, 3, metadata.PageCount)
	assert.Equal(t, int64(len(pdfBytes)), metadata.FileSize)
	assert.False(t, metadata.IsEncrypted)
}
