package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

var ErrRunNotFound = errors.New("run not found")

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ RunStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			artifact TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			expected INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS classes (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			label TEXT NOT NULL,
			unit TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (run_id, label)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run) error {
	if run == nil {
		return fmt.Errorf("run is nil")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, artifact, created_at, expected) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			artifact=excluded.artifact,
			created_at=excluded.created_at,
			expected=excluded.expected
	`, run.ID, run.Artifact, run.CreatedAt.UnixNano(), run.Expected); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	// Snapshot semantics: a re-saved run replaces its classes.
	if _, err := tx.ExecContext(ctx, `DELETE FROM classes WHERE run_id = ?`, run.ID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO classes (run_id, label, unit, position) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, label := range orderedLabels(run) {
		if _, err := stmt.ExecContext(ctx, run.ID, label, run.Classes[label], i); err != nil {
			return fmt.Errorf("failed to save class %s: %w", label, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) LoadRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, artifact, created_at, expected FROM runs WHERE id = ?", id)

	var run Run
	var created int64
	if err := row.Scan(&run.ID, &run.Artifact, &created, &run.Expected); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil, err
	}
	run.CreatedAt = time.Unix(0, created).UTC()
	run.Classes = make(map[string]string)

	rows, err := s.db.QueryContext(ctx, "SELECT label, unit FROM classes WHERE run_id = ? ORDER BY position", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query classes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var label, unit string
		if err := rows.Scan(&label, &unit); err != nil {
			return nil, fmt.Errorf("failed to scan class: %w", err)
		}
		run.Classes[label] = unit
		run.Order = append(run.Order, label)
	}
	return &run, rows.Err()
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `
		SELECT r.id, r.artifact, r.created_at, r.expected, COUNT(c.label)
		FROM runs r LEFT JOIN classes c ON c.run_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at DESC, r.id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var sum RunSummary
		var created int64
		if err := rows.Scan(&sum.ID, &sum.Artifact, &created, &sum.Expected, &sum.Found); err != nil {
			return nil, err
		}
		sum.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

// orderedLabels returns run.Order followed by any remaining labels, so a run
// built without an explicit order still saves every class.
func orderedLabels(run *Run) []string {
	seen := make(map[string]struct{}, len(run.Classes))
	out := make([]string, 0, len(run.Classes))
	for _, l := range run.Order {
		if _, ok := run.Classes[l]; !ok {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	var rest []string
	for l := range run.Classes {
		if _, ok := seen[l]; !ok {
			rest = append(rest, l)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
