package index

import (
	"errors"
	"fmt"

	"researcher/internal/vectorstore"
)

var (
	// ErrNotInitialized is returned by Query before Build, Load or AddDocuments succeeded.
	ErrNotInitialized = errors.New("index store not initialized: build or load it first")
	// ErrEmptyInput is returned by Build when there is nothing to index.
	ErrEmptyInput = errors.New("no chunks to index")
	// ErrCorrupt marks persisted files that cannot be restored as an aligned pair.
	ErrCorrupt = errors.New("index files are corrupt or out of sync")
)

// DimensionMismatchError is returned when an embedding's width differs
// from the width fixed by the first indexed batch.
type DimensionMismatchError = vectorstore.DimensionMismatchError

// IncompatibleError reports a persisted index built with settings that
// differ from the store's configuration.
type IncompatibleError struct {
	Setting    string
	Stored     string
	Configured string
}

func (e *IncompatibleError) Error() string {
	return fmt.Sprintf("persisted index uses %s %q, configured %q", e.Setting, e.Stored, e.Configured)
}
