package storage

import (
	"context"
	"time"

	"burger/internal/aggregate"
)

// Run is one persisted analysis of an artifact.
type Run struct {
	ID        string
	Artifact  string
	CreatedAt time.Time
	Expected  int               // labels the run could have produced
	Classes   map[string]string // label -> unit
	Order     []string          // labels in write order
}

// RunSummary is a listing row.
type RunSummary struct {
	ID        string
	Artifact  string
	CreatedAt time.Time
	Found     int
	Expected  int
}

// RunStore persists result sets so runs can be listed and reloaded.
type RunStore interface {
	// SaveRun stores run, assigning an ID and timestamp when missing.
	SaveRun(ctx context.Context, run *Run) error

	// LoadRun retrieves a run by ID.
	LoadRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns the newest runs first, at most limit (0 means all).
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)

	Close() error
}

// FromSet captures the current content of a result set.
func FromSet(artifact string, expected int, set *aggregate.Set) *Run {
	return &Run{
		Artifact: artifact,
		Expected: expected,
		Classes:  set.Snapshot(),
		Order:    set.WriteOrder(),
	}
}
