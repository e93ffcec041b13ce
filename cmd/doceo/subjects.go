package main

import (
	"flag"
	"fmt"

	"github.com/ternarybob/doceo/internal/storage/badger"
	"github.com/ternarybob/doceo/internal/subjects"
)

// runSubjects lists the catalog and each subject's index status. It reads
// manifests straight from storage so no API key is needed.
func runSubjects(args []string) error {
	flags := flag.NewFlagSet("subjects", flag.ExitOnError)
	if err := flags.Parse(args); err != nil {
		return err
	}

	catalog, err := subjects.Load(config.Subjects.CatalogPath)
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

	fmt.Printf("Subjects (%d):\n\n", catalog.Len())
	for _, subject := range catalog.All() {
		fmt.Printf("  %s\n", subject.Name)
		if subject.Description != "" {
			fmt.Printf("    %s\n", subject.Description)
		}

		namespace, err := catalog.Namespace(subject.Name)
		if err != nil {
			return err
		}
		manifest, err := storageManager.VectorStorage().GetManifest(ctx, namespace)
		switch {
		case err != nil:
			fmt.Printf("    index: unreadable (%v)\n", err)
		case manifest == nil:
			fmt.Printf("    index: not built\n")
		default:
			fmt.Printf("    index: %d chunks from %q, built %s\n",
				manifest.ChunkCount, manifest.DocumentName,
				manifest.BuiltAt.Local().Format("2006-01-02 15:04"))
		}
		fmt.Println()
	}
	return nil
}
