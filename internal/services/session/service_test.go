package session

import (
	"context"
	"errors"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/models"
	"github.com/ternarybob/doceo/internal/services/answer"
	"github.com/ternarybob/doceo/internal/services/chunker"
	"github.com/ternarybob/doceo/internal/services/ingest"
	"github.com/ternarybob/doceo/internal/services/pdf"
	"github.com/ternarybob/doceo/internal/services/retrieval"
	"github.com/ternarybob/doceo/internal/services/vector"
	"github.com/ternarybob/doceo/internal/storage/badger"
	"github.com/ternarybob/doceo/internal/subjects"
)

const testCatalog = `subjects:
  - name: "Physics"
    description: "Mechanics and thermodynamics"
    template: |-
      Use only the context below to answer the question.

      Context:
      {context}

      Question: {question}
  - name: "World History"
    description: "Modern political history"
    template: |-
      Answer from the context only.

      Context:
      {context}

      Question: {question}
`

const azuriaMarkdown = `# Azuria Study Notes

Azuria is a small coastal nation in the northern sea. Its economy relies on fishing and shipbuilding. The climate stays mild for most of the year.

<!-- pagebreak -->

The capital of Azuria is Portvale. Portvale has served as the capital since 1832 and sits on the River Brell. The capital district also holds the national archives.

<!-- pagebreak -->

Azurian cuisine favors smoked seafood and root vegetables. Coastal towns hold lantern festivals through the summer months. Mountain villages keep the older traditions alive.
`

const meridianMarkdown = `The Treaty of Meridian ended the long border war in 1907. Delegates met in the city of Meridian for the whole winter. The treaty fixed the northern border along the Karst ridge.
`

// scriptedLLM answers variant-generation prompts with a fixed paraphrase
// list and every other prompt with a fixed answer.
type scriptedLLM struct {
	variants string
	answer   string
	prompts  []string
}

func (f *scriptedLLM) Chat(_ context.Context, messages []interfaces.Message) (string, error) {
	prompt := messages[len(messages)-1].Content
	f.prompts = append(f.prompts, prompt)

	if strings.Contains(prompt, "different versions of the given user question") {
		return f.variants, nil
	}
	return f.answer, nil
}

func (f *scriptedLLM) ModelName() string    { return "scripted-model" }
func (f *scriptedLLM) ProviderName() string { return "scripted" }
func (f *scriptedLLM) Close() error         { return nil }

// answerPrompts returns the prompts that were not variant generation.
func (f *scriptedLLM) answerPrompts() []string {
	var prompts []string
	for _, prompt := range f.prompts {
		if !strings.Contains(prompt, "different versions of the given user question") {
			prompts = append(prompts, prompt)
		}
	}
	return prompts
}

// hashEmbedder maps each lowercased word onto a vector slot, so texts
// sharing words score higher cosine similarity. Deterministic and local.
type hashEmbedder struct {
	dim      int
	docCalls int
	failDocs bool
}

func (e *hashEmbedder) embed(text string) []float32 {
	v := make([]float32, e.dim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'()")
		if word == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(word))
		v[int(h.Sum32())%e.dim]++
	}
	return v
}

func (e *hashEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	e.docCalls++
	if e.failDocs {
		return nil, errors.New("embedding backend offline")
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.embed(text)
	}
	return vectors, nil
}

func (e *hashEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return e.embed(text), nil
}

func (e *hashEmbedder) EmbeddingModel() string { return "hash-embedder" }
func (e *hashEmbedder) Dimension() int         { return e.dim }

type fixture struct {
	svc      *Service
	llm      *scriptedLLM
	embedder *hashEmbedder
	storage  *badger.VectorStorage
}

func newFixture(t *testing.T, dataDir string) *fixture {
	t.Helper()

	config := common.NewDefaultConfig()
	config.Storage.DataDir = dataDir
	config.Retrieval.VariantCount = 3
	config.Retrieval.KPerVariant = 5

	logger := arbor.NewLogger()

	catalog, err := subjects.Parse([]byte(testCatalog))
	require.NoError(t, err)

	storage, err := badger.NewVectorStorage(config, logger)
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	llm := &scriptedLLM{
		variants: "Which city is the capital of Azuria?\nName the capital city of Azuria.",
		answer:   "The capital of Azuria is Portvale.",
	}
	embedder := &hashEmbedder{dim: 64}

	index := vector.NewService(embedder, storage, logger)
	retriever := retrieval.NewService(config, llm, embedder, index, nil, logger)
	answerer := answer.NewService(config, llm, logger)
	ingester := ingest.NewService(pdf.NewExtractor(logger), logger)

	svc := NewService(catalog, ingester, chunker.NewService(config, logger), index, retriever, answerer, logger)
	t.Cleanup(func() { svc.Close() })

	return &fixture{svc: svc, llm: llm, embedder: embedder, storage: storage}
}

func TestSubjects(t *testing.T) {
	f := newFixture(t, t.TempDir())

	listed := f.svc.Subjects()
	require.Len(t, listed, 2)
	assert.Equal(t, "Physics", listed[0].Name)
	assert.Equal(t, "World History", listed[1].Name)
}

func TestUnknownSubjectRejectedBeforeAnyWork(t *testing.T) {
	f := newFixture(t, t.TempDir())
	ctx := context.Background()

	_, err := f.svc.Ask(ctx, "Botany", "What is photosynthesis?")
	assert.ErrorIs(t, err, models.ErrUnknownSubject)

	_, err = f.svc.IngestBytes(ctx, "Botany", "notes.md", []byte("leaves"))
	assert.ErrorIs(t, err, models.ErrUnknownSubject)

	_, err = f.svc.Status(ctx, "Botany")
	assert.ErrorIs(t, err, models.ErrUnknownSubject)

	assert.ErrorIs(t, f.svc.Invalidate("Botany"), models.ErrUnknownSubject)
	assert.ErrorIs(t, f.svc.Purge(ctx, "Botany"), models.ErrUnknownSubject)

	// No model call and no storage write happened
	assert.Empty(t, f.llm.prompts)
	assert.Zero(t, f.embedder.docCalls)
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	f := newFixture(t, t.TempDir())

	_, err := f.svc.Ask(context.Background(), "Physics", "   ")
	require.Error(t, err)
	assert.Empty(t, f.llm.prompts)
}

func TestAskBeforeIngest(t *testing.T) {
	f := newFixture(t, t.TempDir())

	_, err := f.svc.Ask(context.Background(), "Physics", "What is the capital of Azuria?")
	assert.ErrorIs(t, err, models.ErrIndexNotBuilt)

	_, err = f.svc.Status(context.Background(), "Physics")
	assert.ErrorIs(t, err, models.ErrIndexNotBuilt)
}

func TestIngestMarkdownThenAsk(t *testing.T) {
	f := newFixture(t, t.TempDir())
	ctx := context.Background()

	summary, err := f.svc.IngestBytes(ctx, "Physics", "azuria.md", []byte(azuriaMarkdown))
	require.NoError(t, err)
	assert.Equal(t, "Physics", summary.Subject)
	assert.Equal(t, "azuria.md", summary.Document)
	assert.Equal(t, 3, summary.PageCount)
	assert.Equal(t, 3, summary.ChunkCount)

	result, err := f.svc.Ask(ctx, "Physics", "What is the capital of Azuria?")
	require.NoError(t, err)

	assert.Equal(t, "Physics", result.Subject)
	assert.Equal(t, "What is the capital of Azuria?", result.Question)
	assert.Contains(t, result.Text, "Portvale")
	assert.Equal(t, "scripted-model", result.Model)

	// The fact lives on page 2, so the top citation must point there
	require.NotEmpty(t, result.Citations)
	assert.Equal(t, 1, result.Citations[0].Index)
	assert.Equal(t, 2, result.Citations[0].Page)
	assert.Contains(t, result.Citations[0].Preview, "Portvale")

	// The synthesis prompt was grounded in the page 2 chunk
	answerPrompts := f.llm.answerPrompts()
	require.Len(t, answerPrompts, 1)
	assert.Contains(t, answerPrompts[0], "Use only the context below")
	assert.Contains(t, answerPrompts[0], "Document 1 (Page 2):")
	assert.Contains(t, answerPrompts[0], "The capital of Azuria is Portvale.")
	assert.Contains(t, answerPrompts[0], "Question: What is the capital of Azuria?")
}

func TestIngestRenderedPDFThenAsk(t *testing.T) {
	f := newFixture(t, t.TempDir())
	ctx := context.Background()

	render := pdf.NewService(arbor.NewLogger())
	pdfBytes, err := render.ConvertMarkdownToPDF(azuriaMarkdown, "Azuria Study Notes")
	require.NoError(t, err)

	summary, err := f.svc.IngestBytes(ctx, "Physics", "azuria.pdf", pdfBytes)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.PageCount)

	result, err := f.svc.Ask(ctx, "Physics", "What is the capital of Azuria?")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Portvale")

	require.NotEmpty(t, result.Citations)
	assert.Equal(t, 2, result.Citations[0].Page)
	assert.Contains(t, result.Citations[0].Preview, "Portvale")
}

func TestIngestDocumentFromFile(t *testing.T) {
	f := newFixture(t, t.TempDir())
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "azuria.md")
	require.NoError(t, os.WriteFile(path, []byte(azuriaMarkdown), 0644))

	summary, err := f.svc.IngestDocument(ctx, "Physics", path)
	require.NoError(t, err)
	assert.Equal(t, "azuria.md", summary.Document)

	result, err := f.svc.Ask(ctx, "Physics", "What is the capital of Azuria?")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Portvale")
}

func TestIngestDocumentMissingFile(t *testing.T) {
	f := newFixture(t, t.TempDir())

	_, err := f.svc.IngestDocument(context.Background(), "Physics", filepath.Join(t.TempDir(), "absent.md"))
	var ingestErr *models.IngestionError
	assert.ErrorAs(t, err, &ingestErr)
}

func TestStatusReportsManifest(t *testing.T) {
	f := newFixture(t, t.TempDir())
	ctx := context.Background()

	_, err := f.svc.IngestBytes(ctx, "Physics", "azuria.md", []byte(azuriaMarkdown))
	require.NoError(t, err)

	manifest, err := f.svc.Status(ctx, "Physics")
	require.NoError(t, err)
	assert.Equal(t, "Physics", manifest.Subject)
	assert.Equal(t, "azuria.md", manifest.DocumentName)
	assert.Equal(t, 3, manifest.ChunkCount)
	assert.Equal(t, "hash-embedder", manifest.EmbeddingModel)
}

func TestIngestReplacesPreviousDocument(t *testing.T) {
	f := newFixture(t, t.TempDir())
	ctx := context.Background()

	_, err := f.svc.IngestBytes(ctx, "Physics", "azuria.md", []byte(azuriaMarkdown))
	require.NoError(t, err)

	summary, err := f.svc.IngestBytes(ctx, "Physics", "magnets.md", []byte("Magnets align iron filings along field lines."))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ChunkCount)

	manifest, err := f.svc.Status(ctx, "Physics")
	require.NoError(t, err)
	assert.Equal(t, "magnets.md", manifest.DocumentName)
	assert.Equal(t, 1, manifest.ChunkCount)

	// The old document's chunks are gone from the store as well
	count, err := f.storage.CountChunks(ctx, common.SanitizeNamespace("Physics"))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPipelineRestoredAfterRestart(t *testing.T) {
	dataDir := t.TempDir()

	f1 := newFixture(t, dataDir)
	_, err := f1.svc.IngestBytes(context.Background(), "Physics", "azuria.md", []byte(azuriaMarkdown))
	require.NoError(t, err)
	require.NoError(t, f1.svc.Close())
	require.NoError(t, f1.storage.Close())

	f2 := newFixture(t, dataDir)
	result, err := f2.svc.Ask(context.Background(), "Physics", "What is the capital of Azuria?")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Portvale")
	require.NotEmpty(t, result.Citations)
	assert.Equal(t, 2, result.Citations[0].Page)

	// Restored from disk, not re-embedded
	assert.Zero(t, f2.embedder.docCalls)
}

func TestInvalidateThenAskRestores(t *testing.T) {
	f := newFixture(t, t.TempDir())
	ctx := context.Background()

	_, err := f.svc.IngestBytes(ctx, "Physics", "azuria.md", []byte(azuriaMarkdown))
	require.NoError(t, err)

	require.NoError(t, f.svc.Invalidate("Physics"))

	docCalls := f.embedder.docCalls
	result, err := f.svc.Ask(ctx, "Physics", "What is the capital of Azuria?")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Portvale")
	assert.Equal(t, docCalls, f.embedder.docCalls)
}

func TestPurgeRemovesSubjectState(t *testing.T) {
	f := newFixture(t, t.TempDir())
	ctx := context.Background()

	_, err := f.svc.IngestBytes(ctx, "Physics", "azuria.md", []byte(azuriaMarkdown))
	require.NoError(t, err)

	require.NoError(t, f.svc.Purge(ctx, "Physics"))

	_, err = f.svc.Ask(ctx, "Physics", "What is the capital of Azuria?")
	assert.ErrorIs(t, err, models.ErrIndexNotBuilt)

	_, err = f.svc.Status(ctx, "Physics")
	assert.ErrorIs(t, err, models.ErrIndexNotBuilt)

	// A purged subject accepts a fresh ingest
	_, err = f.svc.IngestBytes(ctx, "Physics", "azuria.md", []byte(azuriaMarkdown))
	require.NoError(t, err)
}

func TestSubjectIsolation(t *testing.T) {
	f := newFixture(t, t.TempDir())
	ctx := context.Background()

	_, err := f.svc.IngestBytes(ctx, "Physics", "azuria.md", []byte(azuriaMarkdown))
	require.NoError(t, err)
	_, err = f.svc.IngestBytes(ctx, "World History", "meridian.md", []byte(meridianMarkdown))
	require.NoError(t, err)

	f.llm.answer = "The Treaty of Meridian was signed in 1907."
	result, err := f.svc.Ask(ctx, "World History", "When was the Treaty of Meridian signed?")
	require.NoError(t, err)
	assert.Equal(t, "World History", result.Subject)
	assert.Contains(t, result.Text, "1907")

	// The history answer used the history template and corpus only
	answerPrompts := f.llm.answerPrompts()
	require.Len(t, answerPrompts, 1)
	assert.Contains(t, answerPrompts[0], "Answer from the context only.")
	assert.Contains(t, answerPrompts[0], "Treaty of Meridian")
	assert.NotContains(t, answerPrompts[0], "Portvale")

	manifest, err := f.svc.Status(ctx, "Physics")
	require.NoError(t, err)
	assert.Equal(t, "azuria.md", manifest.DocumentName)
}

func TestFailedRebuildKeepsPreviousIndexRecoverable(t *testing.T) {
	f := newFixture(t, t.TempDir())
	ctx := context.Background()

	_, err := f.svc.IngestBytes(ctx, "Physics", "azuria.md", []byte(azuriaMarkdown))
	require.NoError(t, err)

	f.embedder.failDocs = true
	_, err = f.svc.IngestBytes(ctx, "Physics", "broken.md", []byte("Replacement notes that never index."))
	var embedErr *models.EmbeddingError
	require.ErrorAs(t, err, &embedErr)
	f.embedder.failDocs = false

	// The persisted index still holds the previous document
	manifest, err := f.svc.Status(ctx, "Physics")
	require.NoError(t, err)
	assert.Equal(t, "azuria.md", manifest.DocumentName)

	result, err := f.svc.Ask(ctx, "Physics", "What is the capital of Azuria?")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Portvale")
}

func TestIngestEmptySourceLeavesPipelineIntact(t *testing.T) {
	f := newFixture(t, t.TempDir())
	ctx := context.Background()

	_, err := f.svc.IngestBytes(ctx, "Physics", "azuria.md", []byte(azuriaMarkdown))
	require.NoError(t, err)

	_, err = f.svc.IngestBytes(ctx, "Physics", "blank.md", []byte("   \n  "))
	var ingestErr *models.IngestionError
	require.ErrorAs(t, err, &ingestErr)

	result, err := f.svc.Ask(ctx, "Physics", "What is the capital of Azuria?")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Portvale")
}
