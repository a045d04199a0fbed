// Package store persists ordered record collections as flat JSON containers.
//
// Each container is a single human-readable JSON array that is read whole and
// rewritten whole on every save. A missing or unreadable container degrades
// to an empty collection so the application stays usable; save failures are
// returned to the caller.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gitlab.com/campusworks/claimflow/internal/logger"
)

// Store is a JSON container holding records of one kind.
type Store[T any] struct {
	path string
	name string
}

// New creates a store backed by the container file at path. The name is used
// only for log lines.
func New[T any](path, name string) *Store[T] {
	return &Store[T]{path: path, name: name}
}

// Path returns the container file path.
func (s *Store[T]) Path() string {
	return s.path
}

// Load reads the full record collection. A missing container yields an empty
// collection; a read or parse failure is logged and also yields an empty
// collection, never an error.
func (s *Store[T]) Load() []T {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Log.Error().Err(err).Str("container", s.name).Msg("Failed to read container")
		}
		return []T{}
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Log.Error().Err(err).Str("container", s.name).Msg("Failed to parse container")
		return []T{}
	}
	if records == nil {
		records = []T{}
	}
	return records
}

// Save serializes the full collection and replaces the container file.
func (s *Store[T]) Save(records []T) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s container: %w", s.name, err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s container: %w", s.name, err)
	}
	return nil
}
