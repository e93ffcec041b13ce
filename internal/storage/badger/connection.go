package badger

import (
	"fmt"
	"os"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// openStore opens a badgerhold store rooted at dir, creating the directory
// when needed.
func openStore(dir string, logger arbor.ILogger) (*badgerhold.Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = dir
	options.ValueDir = dir
	options.Logger = nil // Disable default badger logger, arbor owns output

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store at %s: %w", dir, err)
	}

	logger.Debug().Str("path", dir).Msg("Badger store opened")

	return store, nil
}
