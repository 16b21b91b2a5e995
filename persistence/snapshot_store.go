package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Snapshot is one archived collector run: the counts plus the structured
// payload handed to downstream consumers.
type Snapshot struct {
	ID         int64           `json:"id"`
	TakenAt    time.Time       `json:"taken_at"`
	TaskCount  int             `json:"task_count"`
	EmailCount int             `json:"email_count"`
	Payload    json.RawMessage `json:"payload"`
}

// SnapshotStore archives collector runs in a SQLite database so past
// dashboard states stay queryable. Orchestration state (message log,
// delegations) is never stored here.
type SnapshotStore struct {
	db *sql.DB
}

// NewSnapshotStore opens/creates the database at dbPath.
func NewSnapshotStore(dbPath string) (*SnapshotStore, error) {
	if dbPath == "" {
		return nil, errors.New("persistence: snapshot store path required")
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	store := &SnapshotStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SnapshotStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		taken_at TIMESTAMP NOT NULL,
		task_count INTEGER NOT NULL,
		email_count INTEGER NOT NULL,
		payload TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_taken_at ON snapshots(taken_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save archives one snapshot and returns its row ID.
func (s *SnapshotStore) Save(ctx context.Context, snap *Snapshot) (int64, error) {
	if snap == nil {
		return 0, errors.New("persistence: snapshot required")
	}
	takenAt := snap.TakenAt
	if takenAt.IsZero() {
		takenAt = time.Now()
	}
	payload := snap.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (taken_at, task_count, email_count, payload) VALUES (?, ?, ?, ?)`,
		takenAt, snap.TaskCount, snap.EmailCount, string(payload))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Recent returns up to n snapshots, newest first.
func (s *SnapshotStore) Recent(ctx context.Context, n int) ([]Snapshot, error) {
	if n < 1 {
		n = 1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, taken_at, task_count, email_count, payload FROM snapshots ORDER BY taken_at DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var snap Snapshot
		var payload string
		if err := rows.Scan(&snap.ID, &snap.TakenAt, &snap.TaskCount, &snap.EmailCount, &payload); err != nil {
			return nil, err
		}
		snap.Payload = json.RawMessage(payload)
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

// Prune deletes everything but the newest keep snapshots.
func (s *SnapshotStore) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE id NOT IN (SELECT id FROM snapshots ORDER BY taken_at DESC, id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close releases the database handle.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}
