// Package store defines the storage interface and implementations.
package store

import (
	"context"
	"encoding/json"

	"github.com/xiaot623/agentflow/internal/domain"
)

// Store defines the interface for run records, the event journal and the
// result store.
type Store interface {
	// Run operations
	CreateRun(ctx context.Context, run *domain.Run) error
	GetRun(ctx context.Context, runID string) (*domain.Run, error)
	UpdateRunCompleted(ctx context.Context, runID string, status domain.RunStatus, errData []byte) error

	// Event journal
	CreateEvent(ctx context.Context, entry *domain.JournalEntry) error
	GetEvents(ctx context.Context, runID string, afterSeq int64, limit int) ([]domain.JournalEntry, error)

	// Results are written once per run.
	PutResult(ctx context.Context, runID string, value json.RawMessage) error
	GetResult(ctx context.Context, runID string) (json.RawMessage, bool, error)

	// Lifecycle
	Close() error
}
