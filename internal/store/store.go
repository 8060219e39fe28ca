// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists fused citations in SQLite and exports them as
// YAML, JSON, or Parquet.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citation-engine/pkg/types"
)

const (
	dbFile            = "citations.db"
	defaultMaxResults = 20
)

// ErrNotFound is returned by Get for an unknown ID.
var ErrNotFound = errors.New("citation not found")

// Store manages the citation database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// NewStore opens or creates the database at cfg.Dir/citations.db and
// applies pending migrations.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("store directory not configured")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	return &Store{db: db, dir: cfg.Dir, maxResults: maxResults}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the directory holding the database and exports.
func (s *Store) Dir() string { return s.dir }

// Save inserts or replaces fc. An empty ID is filled with a new UUID and a
// zero CreatedAt with the current time; both are written back to fc.
func (s *Store) Save(ctx context.Context, fc *types.FusedCitation) error {
	if fc == nil || fc.Description == nil {
		return fmt.Errorf("saving citation: no description")
	}
	if fc.ID == "" {
		fc.ID = uuid.NewString()
	}
	if fc.CreatedAt.IsZero() {
		fc.CreatedAt = time.Now().UTC()
	}
	fc.Score = fc.Description.Score

	desc, err := yaml.Marshal(fc.Description)
	if err != nil {
		return fmt.Errorf("encoding description: %w", err)
	}
	sources, err := json.Marshal(fc.Sources)
	if err != nil {
		return fmt.Errorf("encoding sources: %w", err)
	}
	var pubType string
	if pt, ok := fc.Description.PublicationType(); ok {
		pubType = string(pt)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO citations
			(id, citation_key, text, doi, publication_type, score, candidate_count, sources, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fc.ID, fc.Citation.Key, fc.Citation.Text, fc.Citation.DOI, pubType,
		fc.Score, fc.CandidateCount, string(sources), string(desc),
		fc.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting citation %s: %w", fc.ID, err)
	}
	return nil
}

// Get returns the citation stored under id.
func (s *Store) Get(ctx context.Context, id string) (*types.FusedCitation, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	fc, err := scanCitation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// ListOptions filters List.
type ListOptions struct {
	// Type keeps citations with this stored publication type.
	Type types.PublicationType

	// MinScore keeps citations scoring at least this much.
	MinScore float64

	// Key keeps citations with this reference label.
	Key string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// List returns stored citations, highest score first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]types.FusedCitation, error) {
	var (
		where []string
		args  []any
	)
	if opts.Type != "" {
		where = append(where, "publication_type = ?")
		args = append(args, string(opts.Type))
	}
	if opts.MinScore > 0 {
		where = append(where, "score >= ?")
		args = append(args, opts.MinScore)
	}
	if opts.Key != "" {
		where = append(where, "citation_key = ?")
		args = append(args, opts.Key)
	}

	limit := opts.MaxResults
	if limit <= 0 {
		limit = s.maxResults
	}

	query := selectColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY score DESC, created_at ASC, id ASC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing citations: %w", err)
	}
	defer rows.Close()

	var out []types.FusedCitation
	for rows.Next() {
		fc, err := scanCitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *fc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating citations: %w", err)
	}
	return out, nil
}

// Delete removes the citation stored under id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM citations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting citation %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

const selectColumns = `SELECT id, citation_key, text, doi, score, candidate_count, sources, description, created_at FROM citations`

type scanner interface {
	Scan(dest ...any) error
}

func scanCitation(sc scanner) (*types.FusedCitation, error) {
	var fc types.FusedCitation
	var sources, desc, createdAt string
	err := sc.Scan(&fc.ID, &fc.Citation.Key, &fc.Citation.Text, &fc.Citation.DOI,
		&fc.Score, &fc.CandidateCount, &sources, &desc, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning citation: %w", err)
	}

	if err := json.Unmarshal([]byte(sources), &fc.Sources); err != nil {
		return nil, fmt.Errorf("decoding sources of %s: %w", fc.ID, err)
	}

	d := types.NewDescription()
	if err := yaml.Unmarshal([]byte(desc), d); err != nil {
		return nil, fmt.Errorf("decoding description of %s: %w", fc.ID, err)
	}
	d.Score = fc.Score
	d.State = types.StateParsed
	fc.Description = d

	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		fc.CreatedAt = t
	}
	return &fc, nil
}
