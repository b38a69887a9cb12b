// Package file persists the ledger as a single JSON snapshot on disk.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gastobot/internal/core"
	"gastobot/internal/ledger"
)

// Store reads and writes the ledger as one JSON document.
type Store struct {
	path string
}

var _ ledger.Store = (*Store)(nil)

// New creates a file store at path, creating the parent directory if needed.
func New(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	return &Store{path: path}, nil
}

// Load reads the snapshot. A missing file yields an empty ledger.
func (s *Store) Load(_ context.Context) (*core.Ledger, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return core.NewLedger(), nil
		}
		return nil, fmt.Errorf("read ledger file: %w", err)
	}

	var l core.Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decode ledger file: %w", err)
	}
	l.Normalize()
	return &l, nil
}

// Save overwrites the snapshot atomically: write to a temp file in the same
// directory, then rename over the target.
func (s *Store) Save(_ context.Context, l *core.Ledger) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("create temp ledger file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp ledger file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp ledger file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}
