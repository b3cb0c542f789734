package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lexibook/api/internal/textdoc"
)

// ErrCorruptSnapshot marks a stored library payload that no longer decodes.
// Callers fall back to an empty library instead of refusing to start.
var ErrCorruptSnapshot = errors.New("corrupt library snapshot")

// libraryKey is the single row the whole document collection lives under.
const libraryKey = "library"

// snapshot is the persisted envelope. The whole library is one JSON
// payload; there is no per-document row.
type snapshot struct {
	Version   int                `json:"version"`
	SavedAt   time.Time          `json:"savedAt"`
	Documents []textdoc.Document `json:"documents"`
}

const snapshotVersion = 1

// PostgresStore persists the library as a single JSON blob in Postgres.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// LoadLibrary reads the library payload. A missing row means a fresh
// install and returns an empty slice; undecodable JSON returns
// ErrCorruptSnapshot.
func (s *PostgresStore) LoadLibrary(ctx context.Context) ([]textdoc.Document, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM library_snapshots WHERE key = $1`, libraryKey,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load library: %w", err)
	}
	return decodeSnapshot(payload)
}

// SaveLibrary replaces the stored library with the given documents.
func (s *PostgresStore) SaveLibrary(ctx context.Context, documents []textdoc.Document) error {
	payload, err := json.Marshal(snapshot{
		Version:   snapshotVersion,
		SavedAt:   time.Now().UTC(),
		Documents: documents,
	})
	if err != nil {
		return fmt.Errorf("encode library: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO library_snapshots (key, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()
	`, libraryKey, payload)
	if err != nil {
		return fmt.Errorf("save library: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func decodeSnapshot(payload []byte) ([]textdoc.Document, error) {
	var snap snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if snap.Version == 0 && snap.Documents == nil {
		return nil, fmt.Errorf("%w: missing envelope", ErrCorruptSnapshot)
	}
	return snap.Documents, nil
}
