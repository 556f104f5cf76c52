package store

import (
	"database/sql"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2"
)

// NewDB opens the DuckDB database at path. Use ":memory:" for an in-memory journal.
func NewDB(path string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	// duckdb allows a single writer per process
	db.SetMaxOpenConns(1)
	return db, nil
}
