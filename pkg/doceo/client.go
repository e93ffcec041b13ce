// -----------------------------------------------------------------------
// Embeddable client - the library surface over the doceo pipeline
// -----------------------------------------------------------------------

package doceo

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/doceo/internal/app"
	"github.com/ternarybob/doceo/internal/common"
	internal "github.com/ternarybob/doceo/internal/models"
	"github.com/ternarybob/doceo/pkg/models"
)

// Client runs the full pipeline in-process: ingest documents per subject,
// then ask questions grounded in them. A Client owns its stores, so only
// one Client per data directory may be open at a time.
type Client struct {
	app *app.App
}

var _ models.RAG = (*Client)(nil)

// Option adjusts client construction.
type Option func(*options)

type options struct {
	dataDir  string
	logLevel string
}

// WithDataDir overrides the configured data directory.
func WithDataDir(dir string) Option {
	return func(o *options) { o.dataDir = dir }
}

// WithLogLevel overrides the configured log level.
func WithLogLevel(level string) Option {
	return func(o *options) { o.logLevel = level }
}

// Open builds a client from a config file. An empty path uses defaults
// plus environment variables (GEMINI_API_KEY and friends).
func Open(configPath string, opts ...Option) (*Client, error) {
	config, err := common.LoadFromFile(configPath)
	if err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	common.ApplyFlagOverrides(config, o.dataDir, o.logLevel)

	logger := common.InitLogger(config)

	application, err := app.New(config, logger)
	if err != nil {
		return nil, err
	}
	return &Client{app: application}, nil
}

// Subjects returns the catalog of subject names.
func (c *Client) Subjects() []string {
	return c.app.Catalog.Names()
}

// Ingest indexes one document for a subject, replacing the subject's
// previous document.
func (c *Client) Ingest(ctx context.Context, subject, path string) (*models.IngestReport, error) {
	summary, err := c.app.SessionService.IngestDocument(ctx, subject, path)
	if err != nil {
		return nil, translateErr(err)
	}
	return toIngestReport(summary), nil
}

// Ask answers a question using only the subject's ingested document.
func (c *Client) Ask(ctx context.Context, subject, question string) (*models.Answer, error) {
	result, err := c.app.SessionService.Ask(ctx, subject, question)
	if err != nil {
		return nil, translateErr(err)
	}
	return toAnswer(result), nil
}

// Status reports the index currently serving a subject.
func (c *Client) Status(ctx context.Context, subject string) (*models.IndexStatus, error) {
	manifest, err := c.app.SessionService.Status(ctx, subject)
	if err != nil {
		return nil, translateErr(err)
	}
	return toIndexStatus(manifest), nil
}

// Close releases all held resources.
func (c *Client) Close() error {
	return c.app.Close()
}

// translateErr maps internal sentinels onto their public counterparts so
// embedders can match with errors.Is against pkg/models.
func translateErr(err error) error {
	var blocked *internal.GenerationBlocked
	switch {
	case err == nil:
		return nil
	case errors.Is(err, internal.ErrUnknownSubject):
		return models.ErrUnknownSubject
	case errors.Is(err, internal.ErrIndexNotBuilt):
		return models.ErrIndexNotBuilt
	case errors.As(err, &blocked):
		return fmt.Errorf("%w: %s", models.ErrAnswerBlocked, blocked.Reason)
	default:
		return err
	}
}

func toAnswer(result *internal.AnswerResult) *models.Answer {
	citations := make([]models.Citation, len(result.Citations))
	for i, citation := range result.Citations {
		citations[i] = models.Citation{
			Index:   citation.Index,
			Page:    citation.Page,
			Preview: citation.Preview,
		}
	}
	return &models.Answer{
		Subject:   result.Subject,
		Question:  result.Question,
		Text:      result.Text,
		Citations: citations,
		Model:     result.Model,
	}
}

func toIngestReport(summary *internal.BuildSummary) *models.IngestReport {
	return &models.IngestReport{
		Subject:  summary.Subject,
		Document: summary.Document,
		Pages:    summary.PageCount,
		Chunks:   summary.ChunkCount,
		Duration: summary.Duration,
	}
}

func toIndexStatus(manifest *internal.IndexManifest) *models.IndexStatus {
	return &models.IndexStatus{
		Subject:        manifest.Subject,
		Document:       manifest.DocumentName,
		Pages:          manifest.PageCount,
		Chunks:         manifest.ChunkCount,
		EmbeddingModel: manifest.EmbeddingModel,
		BuiltAt:        manifest.BuiltAt,
	}
}
