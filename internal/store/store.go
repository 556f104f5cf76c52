package store

import (
	"context"
	"database/sql"

	"github.com/cyperf-demos/pan-demo-setup/internal/store/migrations"
)

// Store provides access to all storage repositories.
type Store struct {
	db   *sql.DB
	runs *RunStore
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:   db,
		runs: NewRunStore(db),
	}
}

// Open opens the journal at path and applies pending migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := NewDB(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.Run(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewStore(db), nil
}

func (s *Store) Runs() *RunStore {
	return s.runs
}

func (s *Store) Close() error {
	return s.db.Close()
}
