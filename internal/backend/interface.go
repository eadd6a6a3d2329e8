package backend

import (
	"context"

	"portfel/internal/storage"
)

// Backend bundles everything a ledger deployment needs from its data
// layer: the transaction store plus the template and limit sources.
type Backend interface {
	storage.Store
	storage.TemplateSource
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result carries the backend instance and its optional cleanup.
type Result struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends from configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds what backend creation needs.
type Config struct {
	Type Type

	// File backend
	LedgerFilePath    string
	TemplatesFilePath string
	LimitsFilePath    string

	// SQLite backend
	SQLiteDBPath string
}

type Type string

const (
	FileBackend   Type = "file"
	SQLiteBackend Type = "sqlite"
	SheetsBackend Type = "sheets"
	MemoryBackend Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case FileBackend, SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
