// Package backend selects and constructs the ledger store configured for
// the process.
package backend

import (
	"fmt"
	"log/slog"

	"gastobot/internal/config"
	"gastobot/internal/ledger"
	"gastobot/internal/ledger/file"
	"gastobot/internal/ledger/memory"
	"gastobot/internal/storage"
)

// BackendType represents the type of ledger backend
type BackendType string

const (
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case FileBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the store instance and optional cleanup function
type Result struct {
	Store   ledger.Store
	Cleanup CleanupFunc
}

// Factory creates ledger stores based on configuration
type Factory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// CreateStore builds the snapshot store named by cfg.DataBackend.
func (f *Factory) CreateStore(cfg *config.Config) (*Result, error) {
	backendType := BackendType(cfg.DataBackend)
	if !backendType.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch backendType {
	case FileBackend:
		return f.createFileStore(cfg)
	case SQLiteBackend:
		return f.createSQLiteStore(cfg)
	case MemoryBackend:
		return f.createMemoryStore()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", backendType)
	}
}

func (f *Factory) createFileStore(cfg *config.Config) (*Result, error) {
	store, err := file.New(cfg.DataFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file store: %w", err)
	}

	f.logger.Info("Initialized file backend", "data_file", cfg.DataFile)

	return &Result{Store: store, Cleanup: nil}, nil
}

func (f *Factory) createSQLiteStore(cfg *config.Config) (*Result, error) {
	store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)

	return &Result{Store: store, Cleanup: store.Close}, nil
}

func (f *Factory) createMemoryStore() (*Result, error) {
	f.logger.Info("Initialized memory backend")

	return &Result{Store: memory.New(), Cleanup: nil}, nil
}
