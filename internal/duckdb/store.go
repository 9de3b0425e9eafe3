// Package duckdb persists filter runs and their accepted variants in DuckDB
// so that results from several thresholds or inputs can be queried together.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding filter runs.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path ("" for in-memory).
func (s *Store) Path() string {
	return s.path
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS filter_runs (
		run_id VARCHAR PRIMARY KEY,
		source VARCHAR,
		source_size BIGINT,
		source_modtime TIMESTAMP,
		config VARCHAR,
		accepted BIGINT,
		created_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS filtered_variants (
		run_id VARCHAR,
		ordinal BIGINT,
		chrom VARCHAR,
		pos BIGINT,
		ref VARCHAR,
		alt VARCHAR,
		depth BIGINT,
		frequency VARCHAR,
		strand_balance VARCHAR,
		freebayes_score DOUBLE,
		annotated BOOLEAN,
		effect_type VARCHAR,
		mutation_type VARCHAR,
		effect_impact VARCHAR,
		gene_name VARCHAR,
		cds_position VARCHAR,
		codon_change VARCHAR,
		prot_effect VARCHAR,
		prot_size VARCHAR,
		PRIMARY KEY (run_id, ordinal)
	)`,
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
