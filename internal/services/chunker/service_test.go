package chunker

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/models"
)

func newTestService(chunkSize, overlap int) *Service {
	config := common.NewDefaultConfig()
	config.Chunking.ChunkSize = chunkSize
	config.Chunking.ChunkOverlap = overlap
	return NewService(config, arbor.NewLogger())
}

func testDocument(pages ...string) *models.Document {
	doc := &models.Document{
		ID:         "doc_test",
		Name:       "test.md",
		Format:     models.FormatMarkdown,
		IngestedAt: time.Now(),
	}
	for i, text := range pages {
		doc.Pages = append(doc.Pages, models.Page{Number: i + 1, Text: text})
	}
	return doc
}

func TestSplitShortPageSingleChunk(t *testing.T) {
	service := newTestService(1500, 200)

	chunks, err := service.Split(testDocument("A short page of notes."))
	require.NoError(t, err)

	require.Len(t, chunks, 1)
	assert.Equal(t, "doc_test", chunks[0].DocumentID)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 0, chunks[0].Ordinal)
	assert.Equal(t, "A short page of notes.", chunks[0].Text)
}

func TestSplitLongPageRespectsChunkSize(t *testing.T) {
	service := newTestService(200, 40)

	var b strings.Builder
	for i := 0; i < 60; i++ {
		fmt.Fprintf(&b, "Sentence number %d talks about gradient descent. ", i)
	}

	chunks, err := service.Split(testDocument(b.String()))
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Text), 200, "chunk %d too long", i)
		assert.NotEmpty(t, strings.TrimSpace(chunk.Text))
		assert.Equal(t, i, chunk.Ordinal)
		assert.Equal(t, 1, chunk.Page)
	}

	// Nothing from the middle of the page may be lost
	joined := strings.Join(chunkTexts(chunks), " ")
	for _, i := range []int{0, 20, 40, 59} {
		assert.Contains(t, joined, fmt.Sprintf("Sentence number %d", i))
	}
}

func TestSplitKeepsPageLocators(t *testing.T) {
	service := newTestService(1500, 200)

	chunks, err := service.Split(testDocument(
		"First page content.",
		"",
		"Third page content.",
	))
	require.NoError(t, err)

	require.Len(t, chunks, 2)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 3, chunks[1].Page)
	// Ordinals restart per page
	assert.Equal(t, 0, chunks[0].Ordinal)
	assert.Equal(t, 0, chunks[1].Ordinal)
}

func TestSplitReadingOrderAndUniqueIDs(t *testing.T) {
	service := newTestService(80, 10)

	longPage := strings.Repeat("Some words fill the page with text. ", 10)
	chunks, err := service.Split(testDocument(longPage, longPage))
	require.NoError(t, err)
	require.Greater(t, len(chunks), 2)

	seen := make(map[string]bool)
	lastPage, lastOrdinal := 0, -1
	for _, chunk := range chunks {
		if chunk.Page == lastPage {
			assert.Equal(t, lastOrdinal+1, chunk.Ordinal)
		} else {
			assert.Greater(t, chunk.Page, lastPage)
			assert.Equal(t, 0, chunk.Ordinal)
		}
		lastPage, lastOrdinal = chunk.Page, chunk.Ordinal

		id := chunk.ID()
		assert.False(t, seen[id], "duplicate chunk id %s", id)
		seen[id] = true
	}
}

func TestSplitEmptyDocument(t *testing.T) {
	service := newTestService(1500, 200)

	_, err := service.Split(testDocument("", "   "))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no chunks")
}

func chunkTexts(chunks []models.Chunk) []string {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	return texts
}
