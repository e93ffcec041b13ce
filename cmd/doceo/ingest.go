package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/ternarybob/doceo/internal/app"
)

// runIngest indexes one document for a subject, replacing whatever the
// subject was indexed with before.
func runIngest(args []string) error {
	flags := flag.NewFlagSet("ingest", flag.ExitOnError)
	subjectName := flags.String("subject", "", "Subject to ingest into (required)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *subjectName == "" {
		return fmt.Errorf("-subject is required")
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("expected exactly one document path, got %d arguments", flags.NArg())
	}
	path := flags.Arg(0)

	application, err := app.New(config, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	ctx, cancel := commandContext()
	defer cancel()

	fmt.Printf("Ingesting %s into %q...\n", path, *subjectName)

	summary, err := application.SessionService.IngestDocument(ctx, *subjectName, path)
	if err != nil {
		return err
	}

	fmt.Printf("Indexed %q for %s: %d pages, %d chunks in %s.\n",
		summary.Document, summary.Subject, summary.PageCount, summary.ChunkCount,
		summary.Duration.Round(time.Millisecond))
	return nil
}
