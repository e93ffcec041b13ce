package main

import (
	"flag"
	"fmt"

	"github.com/ternarybob/doceo/internal/storage/badger"
	"github.com/ternarybob/doceo/internal/subjects"
)

// runPurge deletes a subject's persisted index. It works directly on
// storage so no API key is needed; a one-shot process has no cached
// pipeline to evict.
func runPurge(args []string) error {
	flags := flag.NewFlagSet("purge", flag.ExitOnError)
	subjectName := flags.String("subject", "", "Subject to purge (required)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *subjectName == "" {
		return fmt.Errorf("-subject is required")
	}

	catalog, err := subjects.Load(config.Subjects.CatalogPath)
	if err != nil {
		return err
	}
	namespace, err := catalog.Namespace(*subjectName)
	if err != nil {
		return err
	}

	storageManager, err := badger.NewManager(config, logger)
	if err != nil {
		return err
	}
	defer storageManager.Close()

	ctx, cancel := commandContext()
	defer cancel()

	if err := storageManager.VectorStorage().DeleteNamespace(ctx, namespace); err != nil {
		return err
	}

	fmt.Printf("Purged index for %q.\n", *subjectName)
	return nil
}
